package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipherRoundTrip(t *testing.T) {
	c := NewCipher("a-very-secret-key")

	enc, err := c.Encrypt("EAABsbCS1iHgBO...")
	require.NoError(t, err)
	assert.NotEqual(t, "EAABsbCS1iHgBO...", enc)
	assert.Contains(t, enc, ":")

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, "EAABsbCS1iHgBO...", dec)
}

func TestCipherUniqueIV(t *testing.T) {
	c := NewCipher("a-very-secret-key")

	enc1, err := c.Encrypt("token")
	require.NoError(t, err)
	enc2, err := c.Encrypt("token")
	require.NoError(t, err)
	assert.NotEqual(t, enc1, enc2)

	iv1 := strings.SplitN(enc1, ":", 2)[0]
	iv2 := strings.SplitN(enc2, ":", 2)[0]
	assert.NotEqual(t, iv1, iv2)
}

func TestCipherPassthroughWithoutKey(t *testing.T) {
	c := NewCipher("")
	assert.False(t, c.Enabled())

	enc, err := c.Encrypt("plain-token")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", enc)

	dec, err := c.Decrypt("plain-token")
	require.NoError(t, err)
	assert.Equal(t, "plain-token", dec)
}

func TestCipherDecryptLegacyPlaintext(t *testing.T) {
	c := NewCipher("a-very-secret-key")

	// Tokens stored before encryption was enabled have no iv prefix.
	dec, err := c.Decrypt("legacy-plain-token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-plain-token", dec)
}

func TestCipherWrongKey(t *testing.T) {
	c1 := NewCipher("key-one")
	c2 := NewCipher("key-two")

	enc, err := c1.Encrypt("token")
	require.NoError(t, err)

	_, err = c2.Decrypt(enc)
	assert.Error(t, err)
}
