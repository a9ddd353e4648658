// Package endpoints is the HTTP boundary of the interview service.
package endpoints

import (
	"context"
	"net/http"
	"time"

	"github.com/EasterCompany/dex-interview-service/conversation"
	"github.com/EasterCompany/dex-interview-service/health"
	"github.com/EasterCompany/dex-interview-service/interfaces"
	"github.com/EasterCompany/dex-interview-service/metrics"
	"github.com/EasterCompany/dex-interview-service/pipeline"
	"github.com/EasterCompany/dex-interview-service/session"
	"github.com/rs/zerolog"
)

const (
	InterviewPath = "/api/interview"
	SessionPath   = "/api/interview/session"
	AudioPath     = "/api/interview/audio/"
)

// Turner runs one turn against a store held exclusively by the caller.
type Turner interface {
	Run(ctx context.Context, store *conversation.Store, audio interfaces.Audio) (*pipeline.TurnResult, error)
}

// Deps are the collaborators of the HTTP server. Archive and Metrics are
// optional.
type Deps struct {
	Pipeline       Turner
	Sessions       *session.Registry
	Archive        interfaces.AudioArchive
	Metrics        *metrics.Metrics
	Checks         map[string]health.Checker
	MaxUploadBytes int64
	AudioTTL       time.Duration
	Version        string
	Logger         zerolog.Logger
}

// Server serves the interview API plus health, status and metrics.
type Server struct {
	Deps
	startTime time.Time
}

func NewServer(deps Deps) *Server {
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = 10 << 20
	}
	return &Server{Deps: deps, startTime: time.Now()}
}

// Routes returns the handler for every endpoint.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(InterviewPath, s.withMetrics(InterviewPath, s.InterviewHandler))
	mux.HandleFunc(SessionPath, s.withMetrics(SessionPath, s.EndSessionHandler))
	mux.HandleFunc(AudioPath, s.withMetrics(AudioPath, s.AudioHandler))
	mux.HandleFunc("/health", s.HealthHandler)
	mux.HandleFunc("/status", s.withMetrics("/status", s.StatusHandler))
	if s.Metrics != nil {
		// No metrics needed for the metrics endpoint
		mux.Handle("/metrics", s.Metrics.Handler())
	}
	return mux
}
