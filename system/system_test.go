package system

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	stats, err := Collect(context.Background())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, stats.CPUPercent, 0.0)
	assert.Greater(t, stats.MemoryPercent, 0.0)
	assert.LessOrEqual(t, stats.MemoryPercent, 100.0)
	assert.Positive(t, stats.Goroutines)
}
