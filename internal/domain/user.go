package domain

import "time"

// User represents a teacher account that owns students and classrooms.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Sessions     []Session
}

// Session is a persisted refresh-token record scoped to one user.
// ExpiresAt is unix seconds with the fractional part preserved.
type Session struct {
	ID        int64
	Token     string
	ExpiresAt float64
}
