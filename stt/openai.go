package stt

import (
	"bytes"
	"context"
	"fmt"

	"github.com/EasterCompany/dex-interview-service/interfaces"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAITranscriber uses the OpenAI audio transcription API.
type OpenAITranscriber struct {
	api   *openai.Client
	model string
}

var _ interfaces.SpeechToText = (*OpenAITranscriber)(nil)

func NewOpenAITranscriber(api *openai.Client, model string) *OpenAITranscriber {
	return &OpenAITranscriber{api: api, model: model}
}

func (o *OpenAITranscriber) Transcribe(ctx context.Context, audio interfaces.Audio, language string) (string, error) {
	resp, err := o.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.model,
		FilePath: audio.Filename,
		Reader:   bytes.NewReader(audio.Data),
		Language: language,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transcription request: %w", err)
	}
	return resp.Text, nil
}
