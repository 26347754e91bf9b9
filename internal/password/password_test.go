package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("secret123")
	require.NoError(t, err)

	parts := strings.Split(encoded, ".")
	require.Len(t, parts, 2)
	assert.NotEmpty(t, parts[0])
	assert.NotEmpty(t, parts[1])

	assert.True(t, Verify("secret123", encoded))
	assert.False(t, Verify("secret124", encoded))
	assert.False(t, Verify("", encoded))
}

func TestHashUsesFreshSalt(t *testing.T) {
	first, err := Hash("same-password")
	require.NoError(t, err)
	second, err := Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, Verify("same-password", first))
	assert.True(t, Verify("same-password", second))
}

func TestVerifyFailsClosedOnMalformedInput(t *testing.T) {
	cases := []string{
		"",
		"nodot",
		"..two.dots",
		".",
		"abc.",
		".def",
		"zzzz.ffff",  // not hex
		"ffff.zzzz",  // not hex
		"f00d.ba4.1", // too many parts
	}
	for _, encoded := range cases {
		assert.False(t, Verify("anything", encoded), "input %q", encoded)
	}
}

func TestVerifyLegacyBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("old-password"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, Verify("old-password", string(legacy)))
	assert.False(t, Verify("wrong-password", string(legacy)))
}
