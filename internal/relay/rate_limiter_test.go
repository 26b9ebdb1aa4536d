package relay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := newRateLimiter(3, time.Second)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow(), "frame %d within burst should pass", i+1)
	}
	assert.False(t, rl.allow(), "frame beyond burst should be rejected")
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	rl := newRateLimiter(2, time.Second)

	rl.allow()
	rl.allow()
	assert.False(t, rl.allow())

	// Backdate the last check instead of sleeping.
	rl.mu.Lock()
	rl.lastCheck = time.Now().Add(-time.Second)
	rl.mu.Unlock()

	assert.True(t, rl.allow())
}

func TestRateLimiterNeverExceedsCapacity(t *testing.T) {
	rl := newRateLimiter(2, time.Second)

	rl.mu.Lock()
	rl.lastCheck = time.Now().Add(-time.Minute)
	rl.mu.Unlock()

	assert.True(t, rl.allow())
	assert.True(t, rl.allow())
	assert.False(t, rl.allow(), "a long idle period must not bank extra tokens")
}

func TestRateLimiterSanitizesArguments(t *testing.T) {
	rl := newRateLimiter(0, 0)

	assert.True(t, rl.allow())
	assert.False(t, rl.allow())
}
