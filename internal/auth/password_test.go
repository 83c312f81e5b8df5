package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("longenough")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "longenough", hash)

	assert.True(t, CheckPassword("longenough", hash))
	assert.False(t, CheckPassword("wrongpassword", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestPasswordHashSalted(t *testing.T) {
	first, err := HashPassword("longenough")
	require.NoError(t, err)
	second, err := HashPassword("longenough")
	require.NoError(t, err)

	// fresh salt per call
	assert.NotEqual(t, first, second)
	assert.True(t, CheckPassword("longenough", first))
	assert.True(t, CheckPassword("longenough", second))
}

func TestCheckPasswordGarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("longenough", "not-a-bcrypt-hash"))
}
