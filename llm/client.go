package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/EasterCompany/dex-interview-service/interfaces"
	openai "github.com/sashabaranov/go-openai"
)

// Client is the OpenAI chat completion backend.
type Client struct {
	api *openai.Client
}

var _ interfaces.ChatCompleter = (*Client)(nil)

func NewClient(api *openai.Client) *Client {
	return &Client{api: api}
}

// Complete sends the ordered history and returns the content of each choice.
func (c *Client) Complete(ctx context.Context, messages []interfaces.ChatMessage, opts interfaces.CompletionOptions) ([]string, error) {
	request := openai.ChatCompletionRequest{
		Model:       opts.Model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(messages)),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if request.Temperature == 0 {
		// The request field is omitempty; zero would fall back to the API default.
		request.Temperature = math.SmallestNonzeroFloat32
	}
	for _, m := range messages {
		request.Messages = append(request.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to send chat completion request: %w", err)
	}

	choices := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		choices = append(choices, choice.Message.Content)
	}
	return choices, nil
}
