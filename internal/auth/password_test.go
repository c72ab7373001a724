package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamdk/auth-service/internal/auth"
)

func TestPassword_HashAndVerify(t *testing.T) {
	hash, err := auth.HashPassword("secret", 4)
	require.NoError(t, err)
	require.NotEqual(t, "secret", hash)

	assert.True(t, auth.VerifyPassword(hash, "secret"))
	assert.False(t, auth.VerifyPassword(hash, "Secret"))
	assert.False(t, auth.VerifyPassword(hash, ""))
}

func TestPassword_VerifyAgainstEmptyHash(t *testing.T) {
	// Delegated-only accounts store no hash; verification must simply
	// report false instead of erroring.
	assert.False(t, auth.VerifyPassword("", "secret"))
}

func TestPassword_HashesAreSalted(t *testing.T) {
	h1, err := auth.HashPassword("secret", 4)
	require.NoError(t, err)
	h2, err := auth.HashPassword("secret", 4)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
