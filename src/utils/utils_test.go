package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCompletionTime(t *testing.T) {
	parsed, err := ParseCompletionTime("2024-03-15 14:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC), parsed)

	// Date-only exports fall back to midnight.
	parsed, err = ParseCompletionTime("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseCompletionTime("15/03/2024")
	assert.Error(t, err)
	_, err = ParseCompletionTime("")
	assert.Error(t, err)
}

func TestRoundFloat(t *testing.T) {
	assert.InDelta(t, 1.23, RoundFloat(1.2345, 2), 0.0001)
	assert.InDelta(t, 1.24, RoundFloat(1.235, 2), 0.0001)
	assert.InDelta(t, -1.23, RoundFloat(-1.2345, 2), 0.0001)
	assert.InDelta(t, 1000, RoundFloat(999.995, 2), 0.0001)
}

func TestWithinTolerance(t *testing.T) {
	assert.True(t, WithinTolerance(100.00, 100.005, 0.01))
	assert.True(t, WithinTolerance(100.01, 100.00, 0.01))
	assert.False(t, WithinTolerance(100.02, 100.00, 0.01))
	assert.True(t, WithinTolerance(-5, -5, 0))
}

func TestGenerateETag(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Value int    `json:"value"`
	}

	first, err := GenerateETag(payload{Name: "a", Value: 1})
	require.NoError(t, err)
	same, err := GenerateETag(payload{Name: "a", Value: 1})
	require.NoError(t, err)
	different, err := GenerateETag(payload{Name: "a", Value: 2})
	require.NoError(t, err)

	assert.Equal(t, first, same)
	assert.NotEqual(t, first, different)
	assert.Len(t, first, 64)

	_, err = GenerateETag(func() {})
	assert.Error(t, err)
}
