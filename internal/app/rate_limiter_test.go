package app

import (
	"testing"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiterWindow(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(60, time.Minute)
	rl.now = clock.Now

	const alice domain.UserID = "alice"
	for i := 0; i < 60; i++ {
		require.True(t, rl.Allow(alice), "attempt %d", i+1)
		clock.Advance(500 * time.Millisecond)
	}
	assert.False(t, rl.Allow(alice), "61st attempt in the window")
	assert.True(t, rl.Allow("bob"), "users are limited independently")

	// The first attempt was 30s ago; half a minute later it leaves the window.
	clock.Advance(30*time.Second + time.Millisecond)
	assert.True(t, rl.Allow(alice))
	assert.False(t, rl.Allow(alice))
}

func TestRateLimiterPrune(t *testing.T) {
	clock := newFakeClock()
	rl := NewRateLimiter(2, time.Minute)
	rl.now = clock.Now

	rl.Allow("alice")
	clock.Advance(45 * time.Second)
	rl.Allow("bob")
	require.Equal(t, 2, rl.Tracked())

	clock.Advance(30 * time.Second)
	assert.Equal(t, 1, rl.Prune())
	assert.Equal(t, 1, rl.Tracked())
}

func TestRateLimiterDefaults(t *testing.T) {
	rl := NewRateLimiter(0, 0)
	assert.Equal(t, DefaultRateLimit, rl.limit)
	assert.Equal(t, DefaultRateWindow, rl.interval)
}
