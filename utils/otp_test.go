package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSecureOTP(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		otp, err := GenerateSecureOTP()
		require.NoError(t, err)
		require.Len(t, otp, 6)

		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000, "no leading zero")
		assert.LessOrEqual(t, n, 999999)

		seen[otp] = true
	}
	// 200 draws from 900k values should essentially never all collide
	assert.Greater(t, len(seen), 1, "generator is not constant")
}
