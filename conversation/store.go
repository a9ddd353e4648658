// Package conversation holds the bounded message history of one interview.
package conversation

import "fmt"

// DefaultWindow is the number of non-system messages kept after a trim.
const DefaultWindow = 6

// Store is the ordered history of a single session. Position 0 is always the
// system message.
//
// A Store is not safe for concurrent use; callers serialize turns per session.
type Store struct {
	history []Message
	window  int
}

// New creates a store holding only the system message.
func New(systemPrompt string, window int) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	history := make([]Message, 1, window+3)
	history[0] = Message{Role: RoleSystem, Content: systemPrompt}
	return &Store{history: history, window: window}
}

// Window returns the maximum number of non-system messages kept by Trim.
func (s *Store) Window() int {
	return s.window
}

// Len returns the number of messages, system message included.
func (s *Store) Len() int {
	return len(s.history)
}

// Append adds a user or assistant message to the end of the history.
func (s *Store) Append(m Message) error {
	if err := s.check(); err != nil {
		return err
	}
	if !m.Role.Valid() || m.Role == RoleSystem {
		return fmt.Errorf("could not append %q message: %w", m.Role, ErrInvalidRole)
	}
	s.history = append(s.history, m)
	return nil
}

// Trim keeps the system message plus the most recent Window() messages.
// Calling it while already within bounds is a no-op.
func (s *Store) Trim() error {
	if err := s.check(); err != nil {
		return err
	}
	if len(s.history) <= s.window+1 {
		return nil
	}
	kept := make([]Message, 0, s.window+3)
	kept = append(kept, s.history[0])
	kept = append(kept, s.history[len(s.history)-s.window:]...)
	s.history = kept
	return nil
}

// Snapshot returns a copy of the history in order.
func (s *Store) Snapshot() []Message {
	out := make([]Message, len(s.history))
	copy(out, s.history)
	return out
}

func (s *Store) check() error {
	if len(s.history) == 0 {
		return &InvariantViolation{Reason: "history is empty"}
	}
	if s.history[0].Role != RoleSystem {
		return &InvariantViolation{Reason: fmt.Sprintf("first message has role %q", s.history[0].Role)}
	}
	return nil
}
