package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsURLSafeAndUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok, err := New(32)
		require.NoError(t, err)

		assert.NotContains(t, tok, "+")
		assert.NotContains(t, tok, "/")
		assert.NotContains(t, tok, "=")
		assert.False(t, seen[tok], "token repeated")
		seen[tok] = true
	}
}

func TestExpiryFromNow(t *testing.T) {
	expiry := ExpiryFromNow(24)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiry, time.Minute)
}

func TestNewJoinCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := NewJoinCode()
		require.NoError(t, err)

		assert.Len(t, code, JoinCodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(joinCodeAlphabet, ch), "unexpected character %q", ch)
		}
		// Ambiguous glyphs must never appear.
		for _, banned := range "0O1IL" {
			assert.NotContains(t, code, string(banned))
		}
	}
}
