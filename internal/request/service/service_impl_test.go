package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/opengov-ph/barangay/internal/request/domain"
	"github.com/opengov-ph/barangay/internal/request/repository"
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
	require.NoError(t, db.AutoMigrate(&domain.Request{}, &shadow.Entry[domain.RequestFields]{}))

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

func validSubmit() domain.SubmitRequest {
	return domain.SubmitRequest{
		LastName:        "Reyes",
		FirstName:       "Ana",
		Address:         "123 Purok 4",
		Birthday:        "1990-05-14",
		ContactNumber:   "09170000000",
		CertificateType: domain.CertificateClearance,
		Purpose:         "employment",
	}
}

func TestSubmitWritesCreateSnapshot(t *testing.T) {
	_, svc := setupService(t, "reqsvc_submit")
	ctx := context.Background()

	created, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, 1, created.Copies)

	backups, err := svc.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.Equal(t, shadow.BackupCreate, backups[0].BackupType)
	assert.Equal(t, created.ID, backups[0].OriginalID)
	assert.Equal(t, "Reyes", backups[0].Record.LastName)
}

func TestSubmitValidation(t *testing.T) {
	_, svc := setupService(t, "reqsvc_validate")
	ctx := context.Background()

	tests := []struct {
		name    string
		mutate  func(*domain.SubmitRequest)
		wantErr error
	}{
		{"missing name", func(r *domain.SubmitRequest) { r.LastName = " " }, domain.ErrInvalidName},
		{"missing address", func(r *domain.SubmitRequest) { r.Address = "" }, domain.ErrInvalidAddress},
		{"bad birthday", func(r *domain.SubmitRequest) { r.Birthday = "14-05-1990" }, domain.ErrInvalidBirthday},
		{"bad certificate type", func(r *domain.SubmitRequest) { r.CertificateType = "barangay_id" }, domain.ErrInvalidCertificateType},
		{"too many copies", func(r *domain.SubmitRequest) { r.Copies = 11 }, domain.ErrInvalidCopies},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validSubmit()
			tc.mutate(&req)
			_, err := svc.Submit(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSubmitRollsBackWhenSnapshotFails(t *testing.T) {
	db, svc := setupService(t, "reqsvc_rollback")
	ctx := context.Background()

	// Without the backup table the snapshot insert fails, and the live row
	// must roll back with it.
	require.NoError(t, db.Exec("DROP TABLE backup_requests").Error)

	_, err := svc.Submit(ctx, validSubmit())
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Request{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdateAccumulatesSnapshots(t *testing.T) {
	_, svc := setupService(t, "reqsvc_update")
	ctx := context.Background()

	created, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	edit := validSubmit()
	edit.Purpose = "scholarship"
	updated, err := svc.Update(ctx, domain.UpdateRequest{ID: created.ID.String(), SubmitRequest: edit})
	require.NoError(t, err)
	assert.Equal(t, "scholarship", updated.Purpose)
	assert.Equal(t, domain.StatusPending, updated.Status)

	edit.Purpose = "travel"
	_, err = svc.Update(ctx, domain.UpdateRequest{ID: created.ID.String(), SubmitRequest: edit})
	require.NoError(t, err)

	backups, err := svc.ListBackups(ctx)
	require.NoError(t, err)
	// One create snapshot plus one per update.
	require.Len(t, backups, 3)
}

func TestDeleteThenRestoreRoundTrip(t *testing.T) {
	_, svc := setupService(t, "reqsvc_restore")
	ctx := context.Background()

	created, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	approved, err := svc.SetStatus(ctx, created.ID.String(), domain.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status)

	require.NoError(t, svc.Delete(ctx, created.ID.String()))

	_, err = svc.GetByID(ctx, created.ID.String())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	backups, err := svc.ListBackups(ctx)
	require.NoError(t, err)

	var deleteEntry *shadow.Entry[domain.RequestFields]
	for i := range backups {
		if backups[i].BackupType == shadow.BackupDelete {
			deleteEntry = &backups[i]
		}
	}
	require.NotNil(t, deleteEntry)
	// Delete snapshots carry the record's original creation time.
	assert.True(t, deleteEntry.CreatedAt.Equal(created.CreatedAt))
	assert.Equal(t, domain.StatusApproved, deleteEntry.Record.Status)

	result, err := svc.Restore(ctx, []string{deleteEntry.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	assert.Empty(t, result.Failures)

	listed, err := svc.List(ctx, domain.ListRequest{})
	require.NoError(t, err)
	require.Len(t, listed.Requests, 1)

	restored := listed.Requests[0]
	assert.NotEqual(t, created.ID, restored.ID)
	assert.Equal(t, "Reyes", restored.LastName)
	// The restored request goes back through review and keeps its original
	// creation time.
	assert.Equal(t, domain.StatusPending, restored.Status)
	assert.True(t, restored.CreatedAt.Equal(created.CreatedAt))

	// Only the delete snapshot was consumed; the create and update snapshots
	// for the original id stay behind.
	remaining, err := svc.ListBackups(ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	for _, entry := range remaining {
		assert.NotEqual(t, shadow.BackupDelete, entry.BackupType)
		assert.Equal(t, created.ID, entry.OriginalID)
	}

	// The consumed snapshot cannot be restored twice.
	again, err := svc.Restore(ctx, []string{deleteEntry.ID.String()})
	require.NoError(t, err)
	assert.Equal(t, 0, again.Restored)
	require.Len(t, again.Failures, 1)
	assert.Equal(t, "not_found", again.Failures[0].Reason)
}

func TestRestoreRejectsBadIDs(t *testing.T) {
	_, svc := setupService(t, "reqsvc_badids")

	_, err := svc.Restore(context.Background(), []string{"not-a-number"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.Restore(context.Background(), nil)
	assert.ErrorIs(t, err, shadow.ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	_, svc := setupService(t, "reqsvc_list")
	ctx := context.Background()

	first, err := svc.Submit(ctx, validSubmit())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, validSubmit())
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, first.ID.String(), domain.StatusApproved)
	require.NoError(t, err)

	approved, err := svc.List(ctx, domain.ListRequest{Status: "approved"})
	require.NoError(t, err)
	require.Len(t, approved.Requests, 1)
	assert.Equal(t, first.ID, approved.Requests[0].ID)

	_, err = svc.List(ctx, domain.ListRequest{Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
