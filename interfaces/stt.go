package interfaces

import "context"

// Audio is a fully received audio payload as uploaded by the client.
type Audio struct {
	Data        []byte
	Filename    string
	ContentType string
}

// SpeechToText turns an audio payload into text.
type SpeechToText interface {
	Transcribe(ctx context.Context, audio Audio, language string) (string, error)
}
