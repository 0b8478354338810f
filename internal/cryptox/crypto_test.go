package cryptox

import (
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps the tests fast.
var cheap = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestDeriveKey_Deterministic(t *testing.T) {
	k1 := DeriveKey([]byte("secret-password"), []byte("fixed-salt"), DefaultParams)
	k2 := DeriveKey([]byte("secret-password"), []byte("fixed-salt"), DefaultParams)

	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 32)
	// Known answer for DefaultParams.
	assert.Equal(t, "34f7a1c64df63ab1ad5b5ee06e64db5713b35f81839823304db63e8e5e6a6a39", hex.EncodeToString(k1))
}

func TestHashPassword_RoundTrip(t *testing.T) {
	encoded, err := HashPassword([]byte("correct horse"), cheap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := VerifyPassword([]byte("correct horse"), encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword([]byte("battery staple"), encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPassword([]byte("pw"), cheap)
	require.NoError(t, err)
	b, err := HashPassword([]byte("pw"), cheap)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plain-sha256-hex",
		"$bcrypt$v=19$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	} {
		_, err := VerifyPassword([]byte("pw"), encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}
}
