// Package stt turns an uploaded audio payload into a transcript.
package stt

import (
	"context"
	"errors"
	"fmt"

	"github.com/EasterCompany/dex-interview-service/interfaces"
)

// ErrEmptyAudio is returned for a payload without any bytes.
var ErrEmptyAudio = errors.New("audio payload is empty")

// TranscriptionError wraps every failure of the transcription stage.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// Stage forwards the payload as received to a speech-to-text backend.
type Stage struct {
	backend interfaces.SpeechToText
}

func NewStage(backend interfaces.SpeechToText) *Stage {
	return &Stage{backend: backend}
}

// Transcribe returns the best-effort transcript. Silence yields an empty
// transcript and no error.
func (s *Stage) Transcribe(ctx context.Context, audio interfaces.Audio, language string) (string, error) {
	if len(audio.Data) == 0 {
		return "", &TranscriptionError{Err: ErrEmptyAudio}
	}
	if audio.Filename == "" {
		audio.Filename = "audio.webm"
	}

	text, err := s.backend.Transcribe(ctx, audio, language)
	if err != nil {
		return "", &TranscriptionError{Err: err}
	}
	return text, nil
}
