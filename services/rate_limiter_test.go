package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(now *time.Time) *OtpRateLimiter {
	rl := NewOtpRateLimiter()
	rl.now = func() time.Time { return *now }
	return rl
}

func TestRateLimiterAllowsUpToMax(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(&now)
	defer rl.Stop()

	for i := 0; i < maxPerWindow; i++ {
		assert.True(t, rl.Allow("9876543210"), "request %d inside budget", i+1)
	}
	assert.False(t, rl.Allow("9876543210"), "request over budget")
}

func TestRateLimiterWindowSlides(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(&now)
	defer rl.Stop()

	for i := 0; i < maxPerWindow; i++ {
		assert.True(t, rl.Allow("9876543210"))
		now = now.Add(10 * time.Minute)
	}
	// 50 minutes in, the first request is still inside the hour
	assert.False(t, rl.Allow("9876543210"))

	// 11 more minutes and the first timestamp ages out
	now = now.Add(11 * time.Minute)
	assert.True(t, rl.Allow("9876543210"))
}

func TestRateLimiterRejectionDoesNotExtendPenalty(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(&now)
	defer rl.Stop()

	for i := 0; i < maxPerWindow; i++ {
		rl.Allow("9876543210")
	}
	// Hammering while rejected must not push the unlock time out
	for i := 0; i < 10; i++ {
		now = now.Add(time.Minute)
		assert.False(t, rl.Allow("9876543210"))
	}
	now = now.Add(51 * time.Minute) // first accept is now >1h old
	assert.True(t, rl.Allow("9876543210"))
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := newTestLimiter(&now)
	defer rl.Stop()

	for i := 0; i < maxPerWindow; i++ {
		rl.Allow("9876543210")
	}
	assert.False(t, rl.Allow("9876543210"))
	assert.True(t, rl.Allow("9123456789"), "other phone unaffected")
}
