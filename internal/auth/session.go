package auth

import (
	"time"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
)

// DefaultRefreshTokenTTL is how long a refresh session stays valid.
const DefaultRefreshTokenTTL = 10 * 24 * time.Hour

// SessionExpiry computes a session expiry instant as fractional unix seconds.
func SessionExpiry(now time.Time, ttl time.Duration) float64 {
	return unixSeconds(now.Add(ttl))
}

// SessionValid reports whether the session expires strictly after now.
// A session at exactly its expiry instant is treated as expired.
func SessionValid(s domain.Session, now time.Time) bool {
	return s.ExpiresAt > unixSeconds(now)
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
