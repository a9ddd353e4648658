package tts

import (
	"context"
	"fmt"
	"io"

	"github.com/EasterCompany/dex-interview-service/interfaces"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAISynthesizer streams MP3 audio from the OpenAI speech API.
type OpenAISynthesizer struct {
	api   *openai.Client
	model string
}

var _ interfaces.SpeechSynthesizer = (*OpenAISynthesizer)(nil)

func NewOpenAISynthesizer(api *openai.Client, model string) *OpenAISynthesizer {
	return &OpenAISynthesizer{api: api, model: model}
}

func (o *OpenAISynthesizer) Synthesize(ctx context.Context, text, voice string) (io.ReadCloser, error) {
	resp, err := o.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(o.model),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send speech request: %w", err)
	}
	return resp, nil
}
