package id

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtSortsBySimulatedTime(t *testing.T) {
	t0 := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	a := At(t0)
	b := At(t0.Add(time.Hour))
	assert.Less(t, a, b)

	parsed, err := ulid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, t0.UnixMilli(), int64(parsed.Time()))
}

func TestAtZeroTimeFallsBackToNow(t *testing.T) {
	assert.NotPanics(t, func() { _ = At(time.Time{}) })
	assert.Len(t, New(), 26)
}
