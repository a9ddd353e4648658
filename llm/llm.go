// Package llm generates the interviewer's next question from the
// conversation so far.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/EasterCompany/dex-interview-service/conversation"
	"github.com/EasterCompany/dex-interview-service/interfaces"
)

const (
	DefaultMaxTokens   = 80
	DefaultTemperature = 0.5
)

// ErrNoChoices is returned when the backend answers without any choice.
var ErrNoChoices = errors.New("completion returned no choices")

// ReplyGenerationError wraps every failure of the reply stage.
type ReplyGenerationError struct {
	Err error
}

func (e *ReplyGenerationError) Error() string {
	return fmt.Sprintf("reply generation failed: %v", e.Err)
}

func (e *ReplyGenerationError) Unwrap() error {
	return e.Err
}

// Options control reply length and sampling.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// Stage produces the next interviewer utterance.
type Stage struct {
	backend interfaces.ChatCompleter
	opts    Options
}

func NewStage(backend interfaces.ChatCompleter, opts Options) *Stage {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature < 0 {
		opts.Temperature = DefaultTemperature
	}
	return &Stage{backend: backend, opts: opts}
}

// GenerateReply reads history without modifying it. An empty reply is valid.
func (s *Stage) GenerateReply(ctx context.Context, history []conversation.Message) (string, error) {
	messages := make([]interfaces.ChatMessage, len(history))
	for i, m := range history {
		messages[i] = interfaces.ChatMessage{Role: string(m.Role), Content: m.Content}
	}

	choices, err := s.backend.Complete(ctx, messages, interfaces.CompletionOptions{
		Model:       s.opts.Model,
		MaxTokens:   s.opts.MaxTokens,
		Temperature: s.opts.Temperature,
	})
	if err != nil {
		return "", &ReplyGenerationError{Err: err}
	}
	if len(choices) == 0 {
		return "", &ReplyGenerationError{Err: ErrNoChoices}
	}
	return choices[0], nil
}
