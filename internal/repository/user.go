package repository

import (
	"context"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
)

// UserRepository defines persistence operations for User entities and their
// refresh sessions.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIDAndToken loads a user together with all of its sessions, but
	// only when a session carrying the given token exists.
	GetByIDAndToken(ctx context.Context, id, token string) (*domain.User, error)
	// AppendSession inserts a session row; the append is atomic, no session
	// list is read back and rewritten.
	AppendSession(ctx context.Context, userID string, session domain.Session) error
	DeleteExpiredSessions(ctx context.Context, userID string, now float64) error
	UpdatePasswordHash(ctx context.Context, userID, hash string) error
}
