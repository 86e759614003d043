package domain

import (
	"context"
	"errors"
	"time"
)

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type LoginResult struct {
	Account   Account
	RawToken  string
	ExpiresAt time.Time
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
	Logout(ctx context.Context, rawToken string) error
	Authenticate(ctx context.Context, rawToken string) (*Account, error)
	ChangePassword(ctx context.Context, accountID string, currentPassword, newPassword string) error
	// VerifyPassword is the step-up check used before sensitive operations.
	VerifyPassword(ctx context.Context, accountID string, password string) error
	SetPassword(ctx context.Context, email string, newPassword string) error
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidSession     = errors.New("invalid_session")
	ErrSessionExpired     = errors.New("session_expired")
	ErrSessionRevoked     = errors.New("session_revoked")
	ErrWeakPassword       = errors.New("weak_password")
	ErrUserExists         = errors.New("user_exists")
	ErrNotFound           = errors.New("not_found")
)
