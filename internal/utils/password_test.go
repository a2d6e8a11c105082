package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Roundtrip(t *testing.T) {
	passwords := []string{
		"motdepasse",
		"p@ssw0rd!très-long-avec-caractères-spéciaux",
		"パスワード12345",
	}

	for _, password := range passwords {
		t.Run(password, func(t *testing.T) {
			hash, err := HashPassword(password)
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

			ok, err := VerifyPassword(password, hash)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestVerifyPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("bonmotdepasse")
	require.NoError(t, err)

	ok, err := VerifyPassword("mauvaismotdepasse", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, hash := range []string{"", "pasunhash", "$argon2id$v=19$tronqué"} {
		_, err := VerifyPassword("motdepasse", hash)
		assert.Error(t, err, hash)
	}
}

func TestHashPassword_UniqueSalt(t *testing.T) {
	hash1, err := HashPassword("motdepasse")
	require.NoError(t, err)
	hash2, err := HashPassword("motdepasse")
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2)
}
