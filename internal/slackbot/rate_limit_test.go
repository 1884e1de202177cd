package slackbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_PerUserBudget(t *testing.T) {
	rl := NewRateLimiter(2, 100, 100)

	assert.True(t, rl.Allow("U1", "C1"))
	assert.True(t, rl.Allow("U1", "C1"))
	assert.False(t, rl.Allow("U1", "C1"), "third question within the minute should be rejected")
	assert.True(t, rl.Allow("U2", "C1"), "other users keep their own budget")
}

func TestRateLimiter_GlobalBudget(t *testing.T) {
	rl := NewRateLimiter(100, 100, 1)

	require.True(t, rl.Allow("U1", "C1"))
	require.False(t, rl.Allow("U2", "C2"))
}
