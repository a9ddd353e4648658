// Package session keeps one conversation per interview session.
package session

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/EasterCompany/dex-interview-service/conversation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const MaxIDLength = 128

var (
	ErrInvalidID       = errors.New("invalid session id")
	ErrTooManySessions = errors.New("too many active sessions")

	validID = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

// Session owns the conversation store of one interview.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex // held for the whole turn
	store    *conversation.Store
	meta     sync.Mutex
	lastSeen time.Time
	turns    int
}

// Exclusive runs fn with sole access to the session's store. Turns of the
// same session are serialized; other sessions proceed in parallel.
func (s *Session) Exclusive(fn func(store *conversation.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.touch(true)
	return fn(s.store)
}

// Turns returns how many turns ran through Exclusive.
func (s *Session) Turns() int {
	s.meta.Lock()
	defer s.meta.Unlock()
	return s.turns
}

func (s *Session) LastSeen() time.Time {
	s.meta.Lock()
	defer s.meta.Unlock()
	return s.lastSeen
}

func (s *Session) touch(turn bool) {
	s.meta.Lock()
	defer s.meta.Unlock()
	s.lastSeen = time.Now()
	if turn {
		s.turns++
	}
}

type Options struct {
	// DefaultID is used for requests without an id. Empty means every such
	// request starts a new session with a generated id.
	DefaultID    string
	SystemPrompt string
	Window       int
	TTL          time.Duration
	MaxSessions  int
}

// ValidID reports whether id is acceptable as a session id.
func ValidID(id string) bool {
	return len(id) <= MaxIDLength && validID.MatchString(id)
}

// Registry maps session ids to sessions.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	opts     Options
	logger   zerolog.Logger
	now      func() time.Time

	// OnChange is called with the session count after it changes.
	OnChange func(active int)
}

func NewRegistry(opts Options, logger zerolog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Acquire returns the session for id, creating it on first use. An empty id
// maps to the default session, or to a new generated id when none is set.
func (r *Registry) Acquire(id string) (*Session, error) {
	if id == "" {
		id = r.opts.DefaultID
	}
	if id == "" {
		id = uuid.NewString()
	} else if !ValidID(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, truncate(id))
	}

	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		s.touch(false)
		return s, nil
	}
	if r.opts.MaxSessions > 0 && len(r.sessions) >= r.opts.MaxSessions {
		r.mu.Unlock()
		return nil, ErrTooManySessions
	}

	now := r.now()
	s := &Session{
		ID:        id,
		CreatedAt: now,
		store:     conversation.New(r.opts.SystemPrompt, r.opts.Window),
		lastSeen:  now,
	}
	r.sessions[id] = s
	active := len(r.sessions)
	r.mu.Unlock()

	r.logger.Info().Str("session", id).Int("active", active).Msg("session started")
	r.changed(active)
	return s, nil
}

// End discards a session. It reports whether the session existed.
func (r *Registry) End(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	active := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.logger.Info().Str("session", id).Int("active", active).Msg("session ended")
		r.changed(active)
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL. Sessions in the middle
// of a turn are skipped. It returns the number of sessions removed.
func (r *Registry) Sweep() int {
	if r.opts.TTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.opts.TTL)

	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		if !s.LastSeen().Before(cutoff) {
			continue
		}
		if !s.mu.TryLock() {
			continue
		}
		delete(r.sessions, id)
		s.mu.Unlock()
		removed++
		r.logger.Info().Str("session", id).Int("turns", s.Turns()).Msg("session expired")
	}
	active := len(r.sessions)
	r.mu.Unlock()

	if removed > 0 {
		r.changed(active)
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) changed(active int) {
	if r.OnChange != nil {
		r.OnChange(active)
	}
}

func truncate(id string) string {
	if len(id) > 32 {
		return id[:32] + "..."
	}
	return id
}
