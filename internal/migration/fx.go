package migration

import (
	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/opengov-ph/barangay/internal/audit/domain"
	authdomain "github.com/opengov-ph/barangay/internal/auth/domain"
	"github.com/opengov-ph/barangay/internal/config"
	eventdomain "github.com/opengov-ph/barangay/internal/event/domain"
	householddomain "github.com/opengov-ph/barangay/internal/household/domain"
	requestdomain "github.com/opengov-ph/barangay/internal/request/domain"
	"github.com/opengov-ph/barangay/internal/resetcode"
	"github.com/opengov-ph/barangay/internal/seed"
	"github.com/opengov-ph/barangay/internal/shadow"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, genID *snowflake.Node) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql setups lean on gorm's schema sync instead of
			// the embedded postgres migrations.
			if err := conn.AutoMigrate(
				&requestdomain.Request{},
				&shadow.Entry[requestdomain.RequestFields]{},
				&eventdomain.Event{},
				&shadow.Entry[eventdomain.EventFields]{},
				&householddomain.Household{},
				&shadow.Entry[householddomain.HouseholdFields]{},
				&authdomain.Account{},
				&authdomain.Session{},
				&resetcode.ResetCode{},
				&auditdomain.AuditLog{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureAdminAccount(conn, cfg, genID)
	}),
)
