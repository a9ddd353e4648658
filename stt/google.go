package stt

import (
	"context"
	"fmt"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"github.com/EasterCompany/dex-interview-service/config"
	"github.com/EasterCompany/dex-interview-service/interfaces"
	"google.golang.org/api/option"
)

// GoogleTranscriber uses Google Cloud Speech-to-Text synchronous recognition.
type GoogleTranscriber struct {
	client     *speech.Client
	sampleRate int32
}

var _ interfaces.SpeechToText = (*GoogleTranscriber)(nil)

// NewGoogleTranscriber creates a Google Cloud Speech client. Without a
// credentials file it relies on Application Default Credentials.
func NewGoogleTranscriber(ctx context.Context, cfg config.GoogleConfig) (*GoogleTranscriber, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create speech client: %w", err)
	}
	return &GoogleTranscriber{client: client, sampleRate: cfg.SampleRateHertz}, nil
}

// Close cleans up the speech client connection.
func (g *GoogleTranscriber) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *GoogleTranscriber) Transcribe(ctx context.Context, audio interfaces.Audio, language string) (string, error) {
	resp, err := g.client.Recognize(ctx, recognizeRequest(audio.Data, language, g.sampleRate))
	if err != nil {
		return "", fmt.Errorf("could not recognize speech: %w", err)
	}
	return joinTranscript(resp), nil
}

func recognizeRequest(data []byte, language string, sampleRate int32) *speechpb.RecognizeRequest {
	return &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_WEBM_OPUS,
			SampleRateHertz:            sampleRate,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	}
}

// joinTranscript concatenates the top alternative of each result.
func joinTranscript(resp *speechpb.RecognizeResponse) string {
	var parts []string
	for _, result := range resp.GetResults() {
		alternatives := result.GetAlternatives()
		if len(alternatives) == 0 {
			continue
		}
		if text := strings.TrimSpace(alternatives[0].GetTranscript()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
