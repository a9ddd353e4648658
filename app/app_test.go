package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/EasterCompany/dex-interview-service/config"
	"github.com/alicebob/miniredis/v2"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/audio/transcriptions", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"Tell me about yourself"}`))
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		var req openai.ChatCompletionRequest
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) && assert.NotEmpty(t, req.Messages) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Contains(t, req.Messages[0].Content, "backend engineer")
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Role: "assistant", Content: "What is your greatest strength?"}}},
		})
	})
	mux.HandleFunc("/v1/audio/speech", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	})
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","data":[]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL, redisAddr string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Address: "127.0.0.1:0", ShutdownTimeout: time.Second, MaxUploadBytes: 1 << 20},
		OpenAI: config.OpenAIConfig{APIKey: "sk-test", BaseURL: baseURL},
		Transcription: config.TranscriptionConfig{
			Provider: "openai", Model: "gpt-4o-mini-transcribe", Language: "fr", Timeout: 5 * time.Second,
		},
		Reply:     config.ReplyConfig{Model: "gpt-4o-mini", MaxTokens: 80, Temperature: 0.5, Timeout: 5 * time.Second},
		Synthesis: config.SynthesisConfig{Model: "tts-1", Voice: "alloy", FirstByteTimeout: 5 * time.Second},
		Interview: config.InterviewConfig{SystemPrompt: config.DefaultSystemPrompt, Position: "backend engineer", MaxMessages: 6},
		Session:   config.SessionConfig{DefaultID: "default", TTL: time.Minute, SweepInterval: time.Second, MaxSessions: 10},
		Cache:     config.CacheConfig{Addr: redisAddr, AudioTTL: time.Minute},
		Logging:   config.LoggingConfig{Level: "info", Format: "json"},
		Metrics:   config.MetricsConfig{Enabled: true},
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	cfg := testConfig("", "")
	cfg.OpenAI.APIKey = ""

	_, err := New(context.Background(), cfg, "test")
	assert.Error(t, err)
}

func TestNewRejectsBrokenPromptTemplate(t *testing.T) {
	cfg := testConfig("", "")
	cfg.Interview.SystemPrompt = "{{if .Position}"

	_, err := New(context.Background(), cfg, "test")
	assert.Error(t, err)
}

func TestNewRejectsInvalidDefaultSession(t *testing.T) {
	cfg := testConfig("", "")
	cfg.Session.DefaultID = "not valid"

	_, err := New(context.Background(), cfg, "test")
	assert.Error(t, err)
}

func TestServeEndToEnd(t *testing.T) {
	oa := fakeOpenAI(t)
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("dex-interview-service:audio:stale", "old"))

	a, err := New(context.Background(), testConfig(oa.URL+"/v1", mr.Addr()), "test")
	require.NoError(t, err)
	require.NotNil(t, a.Cache)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()
	base := "http://" + ln.Addr().String()

	require.Eventually(t, func() bool { return !mr.Exists("dex-interview-service:audio:stale") }, time.Second, 10*time.Millisecond)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", "recording.webm")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("opus"))
	require.NoError(t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, base+"/api/interview", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Session-ID", "e2e")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	audio, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "mp3-bytes", string(audio))
	transcript, _ := url.PathUnescape(resp.Header.Get("X-Transcript"))
	reply, _ := url.PathUnescape(resp.Header.Get("X-Response-Text"))
	assert.Equal(t, "Tell me about yourself", transcript)
	assert.Equal(t, "What is your greatest strength?", reply)
	assert.Equal(t, 1, a.Sessions.Len())

	keys, err := a.Cache.AudioKeys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	statusResp, err := http.Get(base + "/status")
	require.NoError(t, err)
	var status map[string]any
	require.NoError(t, json.NewDecoder(statusResp.Body).Decode(&status))
	statusResp.Body.Close()
	assert.Equal(t, "operational", status["status"])

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
