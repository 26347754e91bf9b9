// Package password hashes and verifies account passwords.
//
// The current on-disk format is "hex(key).hex(salt)" where key is derived
// with scrypt. Hashes written by the old bcrypt scheme are still accepted
// on verify, so existing accounts keep working until their next password
// change re-encodes them.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

const (
	saltLen = 16
	keyLen  = 64

	// scrypt cost parameters
	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

type formatKind int

const (
	formatCurrent formatKind = iota // hex(key).hex(salt)
	formatLegacy                    // bcrypt
)

// hashFormat is the parsed representation of a stored hash. Verification
// dispatches on Kind instead of probing string shapes at the call sites.
type hashFormat struct {
	Kind formatKind
	Key  []byte // current only
	Salt []byte // current only
	Raw  string // legacy only, the full bcrypt string
}

// Hash derives a key from plaintext with a fresh random salt and encodes
// key and salt together, so verification needs no side table.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := scrypt.Key([]byte(plaintext), salt, scryptN, scryptR, scryptP, keyLen)
	if err != nil {
		return "", fmt.Errorf("failed to derive key: %w", err)
	}

	return hex.EncodeToString(key) + "." + hex.EncodeToString(salt), nil
}

// Verify reports whether plaintext matches the stored hash. It fails
// closed: a missing or malformed stored hash yields false, never an error.
// A malformed hash is a data problem, and the caller should see an
// ordinary invalid-credentials outcome rather than a crashed request.
func Verify(plaintext, encoded string) bool {
	format, err := parseHash(encoded)
	if err != nil {
		return false
	}

	switch format.Kind {
	case formatLegacy:
		return bcrypt.CompareHashAndPassword([]byte(format.Raw), []byte(plaintext)) == nil
	case formatCurrent:
		key, err := scrypt.Key([]byte(plaintext), format.Salt, scryptN, scryptR, scryptP, len(format.Key))
		if err != nil {
			return false
		}
		// Constant-time compare: an early-exit equality leaks how many
		// leading bytes matched through response timing.
		return subtle.ConstantTimeCompare(key, format.Key) == 1
	default:
		return false
	}
}

func parseHash(encoded string) (hashFormat, error) {
	if encoded == "" {
		return hashFormat{}, fmt.Errorf("empty hash")
	}

	if strings.HasPrefix(encoded, "$2") {
		return hashFormat{Kind: formatLegacy, Raw: encoded}, nil
	}

	parts := strings.Split(encoded, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return hashFormat{}, fmt.Errorf("malformed hash")
	}

	key, err := hex.DecodeString(parts[0])
	if err != nil {
		return hashFormat{}, fmt.Errorf("malformed key: %w", err)
	}
	salt, err := hex.DecodeString(parts[1])
	if err != nil {
		return hashFormat{}, fmt.Errorf("malformed salt: %w", err)
	}

	return hashFormat{Kind: formatCurrent, Key: key, Salt: salt}, nil
}
