package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/EasterCompany/dex-interview-service/conversation"
	"github.com/EasterCompany/dex-interview-service/interfaces"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	choices  []string
	err      error
	messages []interfaces.ChatMessage
	opts     interfaces.CompletionOptions
}

func (f *fakeCompleter) Complete(_ context.Context, messages []interfaces.ChatMessage, opts interfaces.CompletionOptions) ([]string, error) {
	f.messages = messages
	f.opts = opts
	return f.choices, f.err
}

func history() []conversation.Message {
	store := conversation.New("You are a recruiter.", 6)
	_ = store.Append(conversation.User("Tell me about yourself"))
	return store.Snapshot()
}

func TestGenerateReplyUsesFirstChoice(t *testing.T) {
	backend := &fakeCompleter{choices: []string{"What is your greatest strength?", "ignored"}}
	stage := NewStage(backend, Options{Model: "gpt-4o-mini"})

	reply, err := stage.GenerateReply(context.Background(), history())
	require.NoError(t, err)
	assert.Equal(t, "What is your greatest strength?", reply)

	require.Len(t, backend.messages, 2)
	assert.Equal(t, "system", backend.messages[0].Role)
	assert.Equal(t, "user", backend.messages[1].Role)
	assert.Equal(t, "Tell me about yourself", backend.messages[1].Content)
	assert.Equal(t, DefaultMaxTokens, backend.opts.MaxTokens)
	assert.Equal(t, "gpt-4o-mini", backend.opts.Model)
}

func TestGenerateReplyDoesNotMutateHistory(t *testing.T) {
	h := history()
	before := append([]conversation.Message(nil), h...)

	stage := NewStage(&fakeCompleter{choices: []string{"ok"}}, Options{})
	_, err := stage.GenerateReply(context.Background(), h)
	require.NoError(t, err)
	assert.Equal(t, before, h)
}

func TestGenerateReplyEmptyContentIsValid(t *testing.T) {
	stage := NewStage(&fakeCompleter{choices: []string{""}}, Options{})

	reply, err := stage.GenerateReply(context.Background(), history())
	require.NoError(t, err)
	assert.Empty(t, reply)
}

func TestGenerateReplyNoChoices(t *testing.T) {
	stage := NewStage(&fakeCompleter{}, Options{})

	_, err := stage.GenerateReply(context.Background(), history())
	var replyErr *ReplyGenerationError
	require.ErrorAs(t, err, &replyErr)
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestGenerateReplyBackendFailure(t *testing.T) {
	boom := errors.New("service unavailable")
	stage := NewStage(&fakeCompleter{err: boom}, Options{})

	_, err := stage.GenerateReply(context.Background(), history())
	var replyErr *ReplyGenerationError
	require.ErrorAs(t, err, &replyErr)
	assert.ErrorIs(t, err, boom)
}

func TestClientSendsHistoryAndSampling(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "Why this role?"}},
			},
		})
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	client := NewClient(openai.NewClientWithConfig(cfg))

	choices, err := client.Complete(context.Background(), []interfaces.ChatMessage{
		{Role: "system", Content: "You are a recruiter."},
		{Role: "user", Content: "Hello"},
	}, interfaces.CompletionOptions{Model: "gpt-4o-mini", MaxTokens: 80, Temperature: 0.5})
	require.NoError(t, err)
	assert.Equal(t, []string{"Why this role?"}, choices)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 80, got.MaxTokens)
	assert.InDelta(t, 0.5, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "Hello", got.Messages[1].Content)
}

func TestClientReportsHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	client := NewClient(openai.NewClientWithConfig(cfg))

	_, err := client.Complete(context.Background(), nil, interfaces.CompletionOptions{Model: "gpt-4o-mini"})
	assert.Error(t, err)
}

func TestClientKeepsZeroTemperature(t *testing.T) {
	var raw map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	cfg := openai.DefaultConfig("sk-test")
	cfg.BaseURL = srv.URL + "/v1"
	client := NewClient(openai.NewClientWithConfig(cfg))

	_, err := client.Complete(context.Background(), nil, interfaces.CompletionOptions{Model: "gpt-4o-mini"})
	require.NoError(t, err)
	require.Contains(t, raw, "temperature")
	assert.InDelta(t, 0, raw["temperature"], 1e-6)
}
