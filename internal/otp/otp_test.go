package otp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	seen := make(map[string]struct{})
	for range 100 {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code %q contains non-digit", code)
		}
		// 6 digits, never zero-padded below 100000
		assert.GreaterOrEqual(t, code, "100000")
		assert.LessOrEqual(t, code, "999999")
		seen[code] = struct{}{}
	}
	// 100 draws from 900k values colliding down to a handful would be a broken RNG
	assert.Greater(t, len(seen), 50)
}

func TestExpiry(t *testing.T) {
	expiry := Expiry()
	assert.WithinDuration(t, time.Now().Add(TTL), expiry, time.Second)
}
