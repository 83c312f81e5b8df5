package auth

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
)

func TestIssueAndVerifyAccessToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	signed, expiresAt, err := issuer.IssueAccessToken("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	assert.WithinDuration(t, time.Now().Add(time.Minute), expiresAt, 5*time.Second)

	userID, err := issuer.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestVerifyAccessTokenWrongSecret(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)
	other := NewIssuer("different-secret", time.Minute)

	signed, _, err := issuer.IssueAccessToken("user-123")
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyAccessTokenExpired(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Millisecond)

	signed, _, err := issuer.IssueAccessToken("user-123")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = issuer.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyAccessTokenGarbage(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := issuer.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	}
}

func TestNewIssuerDefaultTTL(t *testing.T) {
	issuer := NewIssuer("test-secret", 0)

	_, expiresAt, err := issuer.IssueAccessToken("user-123")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultAccessTokenTTL), expiresAt, 5*time.Second)
}

func TestNewRefreshToken(t *testing.T) {
	first, err := NewRefreshToken()
	require.NoError(t, err)
	second, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, first, 128)
	assert.NotEqual(t, first, second)

	_, err = hex.DecodeString(first)
	assert.NoError(t, err)
}
