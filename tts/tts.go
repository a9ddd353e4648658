// Package tts synthesizes the interviewer's reply into an MP3 stream.
package tts

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/EasterCompany/dex-interview-service/interfaces"
)

var (
	// ErrEmptyAudio is returned when the backend stream ends before any byte.
	ErrEmptyAudio = errors.New("synthesis returned no audio")
	// ErrFirstByteTimeout is returned when no audio arrives in time.
	ErrFirstByteTimeout = errors.New("timed out waiting for the first audio byte")
)

// SynthesisError wraps every failure of the synthesis stage.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}

type Options struct {
	// Filler is spoken instead of an empty reply. Empty means silence.
	Filler string
	// FirstByteTimeout bounds the wait for the first audio byte. Zero disables it.
	FirstByteTimeout time.Duration
}

// Stage turns reply text into an audio stream that can be forwarded while it
// is still being produced.
type Stage struct {
	backend interfaces.SpeechSynthesizer
	opts    Options
}

func NewStage(backend interfaces.SpeechSynthesizer, opts Options) *Stage {
	return &Stage{backend: backend, opts: opts}
}

// Synthesize never fails for empty text. Otherwise it returns once the first
// audio byte is available so backend failures surface before anything is
// written to the client. The caller must close the stream.
func (s *Stage) Synthesize(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	if strings.TrimSpace(text) == "" {
		if strings.TrimSpace(s.opts.Filler) == "" {
			return Silence(), nil
		}
		text = s.opts.Filler
	}

	ctx, cancel := context.WithCancel(ctx)
	var timedOut atomic.Bool
	var timer *time.Timer
	if s.opts.FirstByteTimeout > 0 {
		timer = time.AfterFunc(s.opts.FirstByteTimeout, func() {
			timedOut.Store(true)
			cancel()
		})
	}
	fail := func(err error) (io.ReadCloser, error) {
		if timer != nil {
			timer.Stop()
		}
		cancel()
		if timedOut.Load() {
			err = fmt.Errorf("%w: %v", ErrFirstByteTimeout, err)
		}
		return nil, &SynthesisError{Err: err}
	}

	body, err := s.backend.Synthesize(ctx, text, voice)
	if err != nil {
		return fail(err)
	}

	br := bufio.NewReader(body)
	if _, err := br.Peek(1); err != nil {
		body.Close()
		if errors.Is(err, io.EOF) {
			err = ErrEmptyAudio
		}
		return fail(err)
	}
	if timer != nil && !timer.Stop() {
		body.Close()
		return fail(context.Canceled)
	}

	return &stream{Reader: br, body: body, cancel: cancel}, nil
}

type stream struct {
	*bufio.Reader
	body   io.Closer
	cancel context.CancelFunc
}

func (s *stream) Close() error {
	defer s.cancel()
	return s.body.Close()
}
