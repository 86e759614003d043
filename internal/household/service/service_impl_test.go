package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/opengov-ph/barangay/internal/household/domain"
	"github.com/opengov-ph/barangay/internal/household/repository"
	"github.com/opengov-ph/barangay/internal/shadow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T, name string) (*gorm.DB, domain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Household{}, &shadow.Entry[domain.HouseholdFields]{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
	})
	return db, svc
}

func validRegister() domain.RegisterRequest {
	return domain.RegisterRequest{
		HeadLastName:  "Santos",
		HeadFirstName: "Jose",
		Address:       "45 Sitio Malinis",
		Purok:         "3",
		ContactNumber: "09180000000",
		Members: []domain.Member{
			{LastName: "Santos", FirstName: "Maria", Relation: "spouse", Birthday: "1992-02-02"},
			{LastName: "Santos", FirstName: "Juan", Relation: "son", Birthday: "2015-08-20"},
		},
	}
}

func TestRegisterWritesCreateSnapshot(t *testing.T) {
	_, svc := setupService(t, "hhsvc_register")
	ctx := context.Background()

	created, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)

	backups, err := svc.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, shadow.BackupCreate, backups[0].BackupType)
	assert.Equal(t, created.ID, backups[0].OriginalID)
}

func TestRegisterValidation(t *testing.T) {
	_, svc := setupService(t, "hhsvc_validate")
	ctx := context.Background()

	bad := validRegister()
	bad.HeadLastName = ""
	_, err := svc.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidHead)

	bad = validRegister()
	bad.Address = "  "
	_, err = svc.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidAddress)

	bad = validRegister()
	bad.Members[0].Relation = ""
	_, err = svc.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidMember)

	bad = validRegister()
	bad.Members[1].Birthday = "20-08-2015"
	_, err = svc.Register(ctx, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidMember)
}

// The member roster is a JSON document on the household row, so it must
// survive delete and restore byte for byte.
func TestRosterSurvivesDeleteRestore(t *testing.T) {
	_, svc := setupService(t, "hhsvc_roster")
	ctx := context.Background()

	created, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, created.ID.String(), domain.StatusApproved)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))

	backups, err := svc.ListBackups(ctx)
	require.NoError(t, err)

	var deleteEntry *shadow.Entry[domain.HouseholdFields]
	for i := range backups {
		if backups[i].BackupType == shadow.BackupDelete {
			deleteEntry = &backups[i]
		}
	}
	require.NotNil(t, deleteEntry)

	result, err := svc.Restore(ctx, []string{deleteEntry.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)

	listed, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, listed.Households, 1)

	restored := listed.Households[0]
	assert.Equal(t, domain.StatusPending, restored.Status)
	assert.True(t, restored.CreatedAt.Equal(created.CreatedAt))

	var members []domain.Member
	require.NoError(t, json.Unmarshal(restored.Members, &members))
	require.Len(t, members, 2)
	assert.Equal(t, "Maria", members[0].FirstName)
	assert.Equal(t, "son", members[1].Relation)
}

func TestDeleteRollsBackWhenSnapshotFails(t *testing.T) {
	db, svc := setupService(t, "hhsvc_rollback")
	ctx := context.Background()

	created, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	require.NoError(t, db.Exec("DROP TABLE backup_households").Error)

	err = svc.Delete(ctx, created.ID.String())
	require.Error(t, err)

	// The live row must survive the failed delete.
	var count int64
	require.NoError(t, db.Model(&domain.Household{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListFiltersByPurok(t *testing.T) {
	_, svc := setupService(t, "hhsvc_list")
	ctx := context.Background()

	first, err := svc.Register(ctx, validRegister())
	require.NoError(t, err)

	other := validRegister()
	other.Purok = "7"
	_, err = svc.Register(ctx, other)
	require.NoError(t, err)

	listed, err := svc.List(ctx, domain.ListRequest{Purok: "3"})
	require.NoError(t, err)
	require.Len(t, listed.Households, 1)
	assert.Equal(t, first.ID, listed.Households[0].ID)
}
