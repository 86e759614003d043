package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/opengov-ph/barangay/internal/auth/domain"
	"github.com/opengov-ph/barangay/internal/auth/password"
	"github.com/opengov-ph/barangay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	cfg   config.Config
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		cfg:   p.Cfg,
		db:    p.DB,
		log:   p.Log.Named("auth.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindAccountByEmail(ctx, s.db, email)
	if err != nil {
		return nil, err
	}
	if account == nil || !password.Verify(req.Password, account.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	rawToken := uuid.NewString()
	now := time.Now().UTC()
	expiresAt := now.Add(time.Duration(s.cfg.SessionTTLHours) * time.Hour)

	session := domain.Session{
		ID:        s.genID.Generate(),
		AccountID: account.ID,
		TokenHash: hashToken(rawToken),
		UserAgent: strings.TrimSpace(req.UserAgent),
		IPAddress: strings.TrimSpace(req.IPAddress),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
	if err := s.repo.InsertSession(ctx, s.db, &session); err != nil {
		return nil, err
	}

	return &domain.LoginResult{
		Account:   *account,
		RawToken:  rawToken,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return nil
	}
	return s.repo.RevokeSession(ctx, s.db, hashToken(rawToken))
}

func (s *Service) Authenticate(ctx context.Context, rawToken string) (*domain.Account, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, domain.ErrInvalidSession
	}

	session, err := s.repo.FindSessionByTokenHash(ctx, s.db, hashToken(rawToken))
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrInvalidSession
	}
	if session.RevokedAt != nil {
		return nil, domain.ErrSessionRevoked
	}
	if time.Now().UTC().After(session.ExpiresAt) {
		return nil, domain.ErrSessionExpired
	}

	account, err := s.repo.FindAccountByID(ctx, s.db, session.AccountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrInvalidSession
	}
	return account, nil
}

func (s *Service) ChangePassword(ctx context.Context, accountID string, currentPassword, newPassword string) error {
	id, err := snowflake.ParseString(accountID)
	if err != nil {
		return domain.ErrNotFound
	}

	if len(strings.TrimSpace(newPassword)) < 8 {
		return domain.ErrWeakPassword
	}

	account, err := s.repo.FindAccountByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrNotFound
	}
	if !password.Verify(currentPassword, account.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, s.db, id, hash)
}

func (s *Service) VerifyPassword(ctx context.Context, accountID string, plaintext string) error {
	id, err := snowflake.ParseString(accountID)
	if err != nil {
		return domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindAccountByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if account == nil || !password.Verify(plaintext, account.PasswordHash) {
		return domain.ErrInvalidCredentials
	}
	return nil
}

func (s *Service) SetPassword(ctx context.Context, email string, newPassword string) error {
	if len(strings.TrimSpace(newPassword)) < 8 {
		return domain.ErrWeakPassword
	}

	account, err := s.repo.FindAccountByEmail(ctx, s.db, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return err
	}
	if account == nil {
		return domain.ErrNotFound
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePasswordHash(ctx, s.db, account.ID, hash)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.repo.FindAccountByEmail(ctx, s.db, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.ErrNotFound
	}
	return account, nil
}

func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
