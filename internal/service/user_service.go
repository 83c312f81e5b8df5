package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/saverio87/ng-classroom-manager-backend/internal/auth"
	"github.com/saverio87/ng-classroom-manager-backend/internal/domain"
	"github.com/saverio87/ng-classroom-manager-backend/internal/repository"
)

// UserService covers the account and session lifecycle: signup, credential
// checks, refresh-session creation and lookup, password changes.
type UserService interface {
	Signup(ctx context.Context, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	CreateSession(ctx context.Context, userID string) (string, error)
	FindUserBySessionToken(ctx context.Context, userID, token string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

type userService struct {
	users      repository.UserRepository
	refreshTTL time.Duration
}

func NewUserService(users repository.UserRepository, refreshTTL time.Duration) UserService {
	if refreshTTL <= 0 {
		refreshTTL = auth.DefaultRefreshTokenTTL
	}
	return &userService{
		users:      users,
		refreshTTL: refreshTTL,
	}
}

func (s *userService) Signup(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ErrEmailRequired
	}
	if len(password) < auth.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// CreateSession mints a refresh token and appends the session atomically.
// When the append fails, no session exists anywhere and the caller's whole
// signup/login fails with it.
func (s *userService) CreateSession(ctx context.Context, userID string) (string, error) {
	token, err := auth.NewRefreshToken()
	if err != nil {
		return "", err
	}

	now := time.Now()
	session := domain.Session{
		Token:     token,
		ExpiresAt: auth.SessionExpiry(now, s.refreshTTL),
	}
	if err := s.users.AppendSession(ctx, userID, session); err != nil {
		return "", err
	}

	// opportunistic cleanup; the guards fail closed on expiry regardless
	_ = s.users.DeleteExpiredSessions(ctx, userID, auth.SessionExpiry(now, 0))

	return token, nil
}

// FindUserBySessionToken resolves the user for a refresh-session lookup.
// domain.ErrUserNotFound is the normal "pair absent" outcome; anything else
// is a storage failure.
func (s *userService) FindUserBySessionToken(ctx context.Context, userID, token string) (*domain.User, error) {
	return s.users.GetByIDAndToken(ctx, userID, token)
}

// UpdatePassword always re-hashes; there is no implicit hashing on other
// user updates.
func (s *userService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return domain.ErrPasswordTooShort
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, userID, hash)
}
