package conversation

import (
	"errors"
	"fmt"
)

// ErrInvalidRole is returned when appending a message whose role is unknown or
// is the system role.
var ErrInvalidRole = errors.New("invalid message role")

// InvariantViolation reports a history that no longer starts with exactly one
// system message. It should never happen with a store built by New.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("conversation invariant violated: %s", e.Reason)
}
