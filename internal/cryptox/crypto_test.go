package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Deterministic(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)
	require.Len(t, salt, SaltSize)

	a := HashPassword("secret", salt)
	b := HashPassword("secret", salt)
	assert.Equal(t, a, b)
	assert.Len(t, a, hashSize)
}

func TestHashPassword_SaltMatters(t *testing.T) {
	s1, err := NewSalt()
	require.NoError(t, err)
	s2, err := NewSalt()
	require.NoError(t, err)

	assert.NotEqual(t, HashPassword("secret", s1), HashPassword("secret", s2))
}

func TestHashPassword_PasswordMatters(t *testing.T) {
	salt, err := NewSalt()
	require.NoError(t, err)

	assert.NotEqual(t, HashPassword("secret", salt), HashPassword("Secret", salt))
}

func TestSessionKey_RoundTrip(t *testing.T) {
	key, err := NewSessionKey()
	require.NoError(t, err)

	encoded, err := key.PublicBase64()
	require.NoError(t, err)

	pub, err := ParsePublicKey(encoded)
	require.NoError(t, err)

	ct, err := EncryptLine(pub, "posts 0 10")
	require.NoError(t, err)

	pt, err := key.DecryptLine(ct)
	require.NoError(t, err)
	assert.Equal(t, "posts 0 10", pt)
}

func TestSessionKey_DecryptGarbage(t *testing.T) {
	key, err := NewSessionKey()
	require.NoError(t, err)

	_, err = key.DecryptLine("not base64 at all!!!")
	assert.Error(t, err)

	// Valid Base64 but not a ciphertext for this key.
	_, err = key.DecryptLine("aGVsbG8gd29ybGQ=")
	assert.Error(t, err)
}

func TestParsePublicKey_Invalid(t *testing.T) {
	_, err := ParsePublicKey("%%%")
	assert.Error(t, err)

	_, err = ParsePublicKey("aGVsbG8=")
	assert.Error(t, err)
}
