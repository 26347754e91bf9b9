// Package token issues the random values used by the verification,
// password-reset and team-join flows. Everything comes from crypto/rand;
// a predictable or time-seeded source would make tokens guessable.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
	"time"
)

// joinCodeAlphabet excludes 0/O and 1/I/L so a code read aloud or typed
// from a printout cannot be mis-transcribed.
const joinCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 6

// New returns a URL-safe token with the given number of random bytes.
// Callers persist the token and its expiry atomically with the record it
// protects; the issuer itself keeps no state.
func New(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ExpiryFromNow returns a timestamp the given number of hours ahead.
func ExpiryFromNow(hours int) time.Time {
	return time.Now().Add(time.Duration(hours) * time.Hour)
}

// NewJoinCode returns a 6-character team join code. Uniqueness is the
// caller's job: insert and retry on conflict.
func NewJoinCode() (string, error) {
	code := make([]byte, JoinCodeLength)
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to draw random index: %w", err)
		}
		code[i] = joinCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
