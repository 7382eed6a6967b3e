package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShowRoomDetails(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.False(t, ShowRoomDetails(now.Add(31*time.Minute), now), "31 minutes out stays hidden")
	assert.True(t, ShowRoomDetails(now.Add(30*time.Minute), now), "exactly 30 minutes out unlocks")
	assert.True(t, ShowRoomDetails(now.Add(5*time.Minute), now))
	assert.True(t, ShowRoomDetails(now, now), "at start time")
	assert.True(t, ShowRoomDetails(now.Add(-2*time.Hour), now), "long past start stays unlocked")
}

func TestIsActiveForPlayer(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsActiveForPlayer(now.Add(3*time.Hour), now), "future tournaments are active")
	assert.True(t, IsActiveForPlayer(now, now))
	assert.True(t, IsActiveForPlayer(now.Add(-15*time.Minute), now), "exactly 15 minutes past start")
	assert.False(t, IsActiveForPlayer(now.Add(-16*time.Minute), now), "16 minutes past start drops off")
}
