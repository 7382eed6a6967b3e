package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khelarena/khelarena_backend/models"
)

func TestOtpStorePutOverwrites(t *testing.T) {
	s := NewOtpStore()
	defer s.Stop()

	now := time.Now()
	s.Put(&models.OtpRecord{Phone: "9876543210", Code: "111111", ExpiresAt: now.Add(5 * time.Minute)})
	s.Put(&models.OtpRecord{Phone: "9876543210", Code: "222222", ExpiresAt: now.Add(5 * time.Minute)})

	record, ok := s.Get("9876543210")
	require.True(t, ok)
	assert.Equal(t, "222222", record.Code, "old code invalidated")
}

func TestOtpStoreGetReturnsCopy(t *testing.T) {
	s := NewOtpStore()
	defer s.Stop()

	s.Put(&models.OtpRecord{Phone: "9876543210", Code: "111111"})
	record, ok := s.Get("9876543210")
	require.True(t, ok)
	record.Attempts = 99

	again, ok := s.Get("9876543210")
	require.True(t, ok)
	assert.Equal(t, 0, again.Attempts, "caller mutation does not leak into the store")
}

func TestOtpStoreIncrementAttempts(t *testing.T) {
	s := NewOtpStore()
	defer s.Stop()

	s.Put(&models.OtpRecord{Phone: "9876543210", Code: "111111"})

	n, ok := s.IncrementAttempts("9876543210")
	assert.True(t, ok)
	assert.Equal(t, 1, n)

	n, ok = s.IncrementAttempts("9876543210")
	assert.True(t, ok)
	assert.Equal(t, 2, n)

	_, ok = s.IncrementAttempts("9999999999")
	assert.False(t, ok, "unknown phone")
}

func TestOtpStoreDelete(t *testing.T) {
	s := NewOtpStore()
	defer s.Stop()

	s.Put(&models.OtpRecord{Phone: "9876543210", Code: "111111"})
	s.Delete("9876543210")

	_, ok := s.Get("9876543210")
	assert.False(t, ok)
}
