package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	h, err := HashPassword("test123")
	require.NoError(t, err)
	assert.NotEqual(t, "test123", h)
	assert.True(t, CheckPassword("test123", h))
	assert.False(t, CheckPassword("wrong", h))
}

func TestNewIDUnique(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "0m ago"},
		{5 * time.Minute, "5m ago"},
		{59 * time.Minute, "59m ago"},
		{3 * time.Hour, "3h ago"},
		{2 * 24 * time.Hour, "2d ago"},
		{10 * 24 * time.Hour, "May 10, 2024"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatTimestamp(now.Add(-tt.ago), now))
	}
	assert.Equal(t, "0m ago", FormatTimestamp(now.Add(time.Minute), now))
}
