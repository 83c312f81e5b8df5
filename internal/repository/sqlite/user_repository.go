package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository"
)

const createUsersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL,
	token TEXT NOT NULL,
	expires_at REAL NOT NULL,
	FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createUsersSchema); err != nil {
		return fmt.Errorf("create users schema: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (id, email, password_hash, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at, updated_at
FROM users
WHERE email = ?`,
		email,
	)
	return scanUser(row)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at, updated_at
FROM users
WHERE id = ?`,
		id,
	)
	return scanUser(row)
}

// GetByIDAndToken performs the single read behind the refresh-session guard:
// one query joining the user row with its sessions. A user without a session
// carrying the token is reported as not found, never as a storage failure.
func (r *UserRepository) GetByIDAndToken(ctx context.Context, id, token string) (*domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT u.id, u.email, u.password_hash, u.created_at, u.updated_at,
       s.id, s.token, s.expires_at
FROM users u
JOIN sessions s ON s.user_id = u.id
WHERE u.id = ?
ORDER BY s.id`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query user sessions: %w", err)
	}
	defer rows.Close()

	var user *domain.User
	tokenFound := false
	for rows.Next() {
		var u domain.User
		var s domain.Session
		if err := rows.Scan(
			&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
			&s.ID, &s.Token, &s.ExpiresAt,
		); err != nil {
			return nil, fmt.Errorf("scan user session: %w", err)
		}
		if user == nil {
			user = &u
		}
		user.Sessions = append(user.Sessions, s)
		if s.Token == token {
			tokenFound = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user sessions: %w", err)
	}
	if user == nil || !tokenFound {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *UserRepository) AppendSession(ctx context.Context, userID string, session domain.Session) error {
	if _, err := r.db.ExecContext(ctx, `
INSERT INTO sessions (user_id, token, expires_at)
VALUES (?, ?, ?)`,
		userID,
		session.Token,
		session.ExpiresAt,
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *UserRepository) DeleteExpiredSessions(ctx context.Context, userID string, now float64) error {
	if _, err := r.db.ExecContext(ctx, `
DELETE FROM sessions
WHERE user_id = ? AND expires_at <= ?`,
		userID,
		now,
	); err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

func (r *UserRepository) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE users SET password_hash = ?, updated_at = ?
WHERE id = ?`,
		hash,
		time.Now().UTC(),
		userID,
	)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
