// Package seed bootstraps the default admin account so a fresh install can
// log in without manual database work.
package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/opengov-ph/barangay/internal/auth/domain"
	"github.com/opengov-ph/barangay/internal/auth/password"
	"github.com/opengov-ph/barangay/internal/config"
	"gorm.io/gorm"
)

// EnsureAdminAccount creates the bootstrap admin if no account exists for the
// configured email. Existing accounts are never touched.
func EnsureAdminAccount(db *gorm.DB, cfg config.Config, node *snowflake.Node) error {
	if db == nil || node == nil {
		return errors.New("seed requires a database handle and id generator")
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return nil
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account authdomain.Account
		err := tx.Where("email = ?", email).First(&account).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(cfg.AdminPassword)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		account = authdomain.Account{
			ID:           node.Generate(),
			Email:        email,
			Name:         cfg.AdminName,
			Role:         authdomain.RoleAdmin,
			PasswordHash: hashed,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.Create(&account).Error
	})
}
