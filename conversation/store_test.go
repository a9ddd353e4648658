package conversation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPrompt = "You are a professional recruiter conducting a job interview."

func TestNewStoreHoldsOnlySystemMessage(t *testing.T) {
	s := New(testPrompt, 0)

	require.Equal(t, 1, s.Len())
	assert.Equal(t, DefaultWindow, s.Window())
	assert.Equal(t, Message{Role: RoleSystem, Content: testPrompt}, s.Snapshot()[0])
}

func TestAppendRejectsSystemAndUnknownRoles(t *testing.T) {
	s := New(testPrompt, 6)

	err := s.Append(Message{Role: RoleSystem, Content: "again"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	err = s.Append(Message{Role: "tool", Content: "x"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	assert.Equal(t, 1, s.Len())
}

func TestZeroStoreReportsInvariantViolation(t *testing.T) {
	var s Store

	var violation *InvariantViolation
	require.True(t, errors.As(s.Append(User("hi")), &violation))
	require.True(t, errors.As(s.Trim(), &violation))
	assert.Contains(t, violation.Error(), "empty")
}

func TestTrimBoundaryDropsFirstPair(t *testing.T) {
	s := New(testPrompt, 6)
	for i := 1; i <= 4; i++ {
		require.NoError(t, s.Append(User(fmt.Sprintf("answer %d", i))))
		require.NoError(t, s.Append(Assistant(fmt.Sprintf("question %d", i))))
	}
	require.Equal(t, 9, s.Len())

	require.NoError(t, s.Trim())

	got := s.Snapshot()
	require.Len(t, got, 7)
	assert.Equal(t, RoleSystem, got[0].Role)
	assert.Equal(t, User("answer 2"), got[1])
	assert.Equal(t, Assistant("question 4"), got[6])
}

func TestTrimIsIdempotent(t *testing.T) {
	s := New(testPrompt, 2)
	require.NoError(t, s.Append(User("a")))
	require.NoError(t, s.Append(Assistant("b")))

	before := s.Snapshot()
	require.NoError(t, s.Trim())
	require.NoError(t, s.Trim())
	assert.Equal(t, before, s.Snapshot())
}

func TestWindowBoundHoldsForManyTurns(t *testing.T) {
	for _, window := range []int{1, 2, 5, 6} {
		s := New(testPrompt, window)
		var all []Message
		for turn := 0; turn < 40; turn++ {
			u, a := User(fmt.Sprintf("u%d", turn)), Assistant(fmt.Sprintf("a%d", turn))
			require.NoError(t, s.Append(u))
			require.NoError(t, s.Append(a))
			require.NoError(t, s.Trim())
			all = append(all, u, a)

			got := s.Snapshot()
			assert.LessOrEqual(t, len(got), window+1)
			assert.Equal(t, RoleSystem, got[0].Role)

			// The suffix is exactly the most recent messages in order.
			expected := all
			if len(expected) > window {
				expected = expected[len(expected)-window:]
			}
			assert.Equal(t, expected, got[1:])
		}
	}
}

func TestSnapshotIsDetached(t *testing.T) {
	s := New(testPrompt, 6)
	require.NoError(t, s.Append(User("Tell me about yourself")))

	snap := s.Snapshot()
	snap[1].Content = "changed"
	_ = append(snap, Assistant("extra"))

	assert.Equal(t, "Tell me about yourself", s.Snapshot()[1].Content)
	assert.Equal(t, 2, s.Len())
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleSystem.Valid())
	assert.False(t, Role("narrator").Valid())
}
