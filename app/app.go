// Package app wires the interview service together and runs it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/EasterCompany/dex-interview-service/cache"
	"github.com/EasterCompany/dex-interview-service/config"
	"github.com/EasterCompany/dex-interview-service/endpoints"
	"github.com/EasterCompany/dex-interview-service/health"
	"github.com/EasterCompany/dex-interview-service/interfaces"
	"github.com/EasterCompany/dex-interview-service/llm"
	logger "github.com/EasterCompany/dex-interview-service/log"
	"github.com/EasterCompany/dex-interview-service/metrics"
	"github.com/EasterCompany/dex-interview-service/pipeline"
	"github.com/EasterCompany/dex-interview-service/session"
	"github.com/EasterCompany/dex-interview-service/stt"
	"github.com/EasterCompany/dex-interview-service/tts"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Cache    *cache.DB
	Metrics  *metrics.Metrics
	Sessions *session.Registry
	Pipeline *pipeline.TurnPipeline
	Server   *endpoints.Server

	closers []io.Closer
}

// New builds every component from cfg. Redis is optional: when it cannot be
// reached the service runs without the audio archive.
func New(ctx context.Context, cfg *config.Config, version string) (*App, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai api key is not set (openai.api_key or OPENAI_API_KEY)")
	}

	if id := cfg.Session.DefaultID; id != "" && !session.ValidID(id) {
		return nil, fmt.Errorf("invalid session.default_id %q", id)
	}

	a := &App{Config: cfg}

	db, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		logger.Error("Failed to initialize cache, audio archive disabled", err)
	}
	if db != nil {
		a.Cache = db
		lw := cache.NewLogWriter(db)
		logger.Attach(lw)
		// The writer drains into db, so it closes first.
		a.closers = append(a.closers, lw, db)
	}
	a.Logger = logger.Component("app")

	oaCfg := openai.DefaultConfig(cfg.OpenAI.APIKey)
	if cfg.OpenAI.BaseURL != "" {
		oaCfg.BaseURL = cfg.OpenAI.BaseURL
	}
	api := openai.NewClientWithConfig(oaCfg)

	transcriber, err := a.newTranscriber(ctx, api)
	if err != nil {
		a.Close()
		return nil, err
	}

	systemPrompt, err := llm.BuildSystemPrompt(cfg.Interview.SystemPrompt, interfaces.Persona{
		Position: cfg.Interview.Position,
		Language: cfg.Transcription.Language,
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to build system prompt: %w", err)
	}

	a.Pipeline = pipeline.New(
		stt.NewStage(transcriber),
		llm.NewStage(llm.NewClient(api), llm.Options{
			Model:       cfg.Reply.Model,
			MaxTokens:   cfg.Reply.MaxTokens,
			Temperature: cfg.Reply.Temperature,
		}),
		tts.NewStage(tts.NewOpenAISynthesizer(api, cfg.Synthesis.Model), tts.Options{
			Filler:           cfg.Synthesis.Filler,
			FirstByteTimeout: cfg.Synthesis.FirstByteTimeout,
		}),
		pipeline.Options{
			Language:          cfg.Transcription.Language,
			Voice:             cfg.Synthesis.Voice,
			TranscribeTimeout: cfg.Transcription.Timeout,
			ReplyTimeout:      cfg.Reply.Timeout,
		},
		logger.Component("pipeline"),
	)

	a.Sessions = session.NewRegistry(session.Options{
		DefaultID:    cfg.Session.DefaultID,
		SystemPrompt: systemPrompt,
		Window:       cfg.Interview.MaxMessages,
		TTL:          cfg.Session.TTL,
		MaxSessions:  cfg.Session.MaxSessions,
	}, logger.Component("session"))

	if cfg.Metrics.Enabled {
		a.Metrics = metrics.NewMetrics()
		a.Pipeline.WithRecorder(a.Metrics)
		a.Sessions.OnChange = a.Metrics.SetActiveSessions
	}

	deps := endpoints.Deps{
		Pipeline:       a.Pipeline,
		Sessions:       a.Sessions,
		Metrics:        a.Metrics,
		Checks:         a.checks(api),
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
		AudioTTL:       cfg.Cache.AudioTTL,
		Version:        version,
		Logger:         logger.Component("http"),
	}
	if a.Cache != nil {
		deps.Archive = a.Cache
	}
	a.Server = endpoints.NewServer(deps)

	return a, nil
}

func (a *App) newTranscriber(ctx context.Context, api *openai.Client) (interfaces.SpeechToText, error) {
	switch a.Config.Transcription.Provider {
	case "google":
		g, err := stt.NewGoogleTranscriber(ctx, a.Config.Transcription.Google)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g)
		return g, nil
	default:
		return stt.NewOpenAITranscriber(api, a.Config.Transcription.Model), nil
	}
}

func (a *App) checks(api *openai.Client) map[string]health.Checker {
	checks := map[string]health.Checker{
		"openai": func(ctx context.Context) error {
			_, err := api.ListModels(ctx)
			return err
		},
		"cache": nil,
	}
	if a.Cache != nil {
		checks["cache"] = a.Cache.Ping
	}
	return checks
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Server.Address)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", a.Config.Server.Address, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	defer a.Close()

	if a.Cache != nil {
		count, err := a.Cache.CleanAllAudio(ctx)
		if err != nil {
			logger.Error("Failed to clean archived audio", err)
		} else {
			a.Logger.Info().Int64("deleted", count).Msg("archived audio cleaned")
		}
	}

	janitorCtx, stopJanitor := context.WithCancel(ctx)
	defer stopJanitor()
	go a.Sessions.Run(janitorCtx, a.Config.Session.SweepInterval)

	srv := &http.Server{
		Handler:           a.Server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("address", ln.Addr().String()).Msg("interview service listening")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info().Msg("shutting down")
	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("could not shut down cleanly: %w", err)
	}
	return nil
}

// Close releases backend clients. It is safe to call more than once.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			logger.Error("Failed to close client", err)
		}
	}
	a.closers = nil
}
