// Package resetcode issues and verifies password reset codes. Codes are
// persisted with an expiry so the flow survives process restarts and works
// across instances.
package resetcode

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidCode = errors.New("invalid_code")
	ErrExpiredCode = errors.New("expired_code")
)

// ResetCode is one pending password reset. Only a SHA-256 of the code is
// stored; issuing a new code for an email invalidates earlier ones.
type ResetCode struct {
	ID        snowflake.ID `gorm:"column:id;primaryKey"`
	Email     string       `gorm:"column:email;not null;index"`
	CodeHash  string       `gorm:"column:code_hash;not null"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null"`
	CreatedAt time.Time    `gorm:"column:created_at;not null"`
}

func (ResetCode) TableName() string {
	return "password_reset_codes"
}

type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	ttl   time.Duration
}

func New(p Params) *Service {
	ttl := time.Duration(p.Cfg.ResetCodeTTLMin) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("resetcode.service"),
		genID: p.GenID,
		ttl:   ttl,
	}
}

// Issue creates a fresh six digit code for the email, replacing any codes
// issued earlier, and returns the plaintext code for delivery.
func (s *Service) Issue(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	code, err := generateCode()
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	entry := ResetCode{
		ID:        s.genID.Generate(),
		Email:     email,
		CodeHash:  hashCode(code),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM password_reset_codes WHERE email = ?`, email).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return "", err
	}

	return code, nil
}

// Consume verifies the code for the email and removes it. A code can be used
// once; expired codes are rejected and cleaned up.
func (s *Service) Consume(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return ErrInvalidCode
	}

	var entry ResetCode
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, email, code_hash, expires_at, created_at
		 FROM password_reset_codes WHERE email = ? AND code_hash = ?`,
		email,
		hashCode(code),
	).Scan(&entry).Error
	if err != nil {
		return err
	}
	if entry.ID == 0 {
		return ErrInvalidCode
	}

	// Delete before judging expiry so the code is spent either way. The row
	// count guards against two concurrent attempts both succeeding.
	res := s.db.WithContext(ctx).Exec(`DELETE FROM password_reset_codes WHERE id = ?`, entry.ID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidCode
	}

	if time.Now().UTC().After(entry.ExpiresAt) {
		return ErrExpiredCode
	}
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

var Module = fx.Module("resetcode.service",
	fx.Provide(New),
)
