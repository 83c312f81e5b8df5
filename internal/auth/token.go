package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
)

// DefaultAccessTokenTTL is the validity window of a signed access token.
const DefaultAccessTokenTTL = 15 * time.Minute

// refreshTokenBytes of entropy, hex-encoded to 128 characters.
const refreshTokenBytes = 64

// Issuer mints and verifies access tokens with a symmetric secret that is
// injected at construction; there is no process-global signing key.
type Issuer struct {
	secret    []byte
	accessTTL time.Duration
}

func NewIssuer(secret string, accessTTL time.Duration) *Issuer {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	return &Issuer{
		secret:    []byte(secret),
		accessTTL: accessTTL,
	}
}

// IssueAccessToken signs a short-lived token whose subject is the user id.
func (i *Issuer) IssueAccessToken(userID string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyAccessToken returns the user id carried by a valid token. A bad
// signature and a past expiry are indistinguishable to the caller; both
// reject the request.
func (i *Issuer) VerifyAccessToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return i.secret, nil
	})
	if err != nil {
		return "", domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

// NewRefreshToken draws an opaque token from a cryptographically secure
// source. Collisions are not checked.
func NewRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
