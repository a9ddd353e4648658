package interfaces

import "context"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionOptions bounds a single completion call.
type CompletionOptions struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// ChatCompleter returns the content of every choice the backend produced.
// An empty slice means the backend answered without any choice.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage, opts CompletionOptions) ([]string, error)
}

// Persona parameterises the interviewer system prompt.
type Persona struct {
	Position string `json:"position" mapstructure:"position"`
	Language string `json:"language" mapstructure:"language"`
}
