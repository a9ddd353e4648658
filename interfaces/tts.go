package interfaces

import (
	"context"
	"io"
)

// SpeechSynthesizer returns an audio stream for text. The caller closes it.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) (io.ReadCloser, error)
}
