package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/opengov-ph/barangay/internal/audit/domain"
	"github.com/opengov-ph/barangay/internal/audit/repository"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T, name string) (*gorm.DB, auditdomain.Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

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

func strptr(s string) *string {
	return &s
}

func TestAuditLogNormalizesInput(t *testing.T) {
	db, svc := setupService(t, "auditsvc_write")
	ctx := context.Background()

	err := svc.AuditLog(ctx, strptr("  "), "request.submit", "", strptr("42"), map[string]any{
		"":       "dropped",
		"status": "pending",
	})
	require.NoError(t, err)

	var entry auditdomain.AuditLog
	require.NoError(t, db.First(&entry).Error)
	assert.Nil(t, entry.ActorID)
	assert.Equal(t, "request.submit", entry.Action)
	assert.Equal(t, "unknown", entry.TargetType)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, "42", *entry.TargetID)
	assert.Equal(t, "pending", entry.Metadata["status"])
	_, hasEmpty := entry.Metadata[""]
	assert.False(t, hasEmpty)
}

func TestAuditLogRequiresAction(t *testing.T) {
	_, svc := setupService(t, "auditsvc_action")

	err := svc.AuditLog(context.Background(), nil, "  ", "request", nil, nil)
	assert.ErrorIs(t, err, auditdomain.ErrInvalidAction)
}

func TestListFiltersByAction(t *testing.T) {
	_, svc := setupService(t, "auditsvc_filter")
	ctx := context.Background()

	require.NoError(t, svc.AuditLog(ctx, nil, "request.submit", "request", strptr("1"), nil))
	require.NoError(t, svc.AuditLog(ctx, nil, "request.delete", "request", strptr("1"), nil))
	require.NoError(t, svc.AuditLog(ctx, nil, "event.create", "event", strptr("2"), nil))

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{Action: "request.delete"})
	require.NoError(t, err)
	require.Len(t, resp.AuditLogs, 1)
	assert.Equal(t, "request.delete", resp.AuditLogs[0].Action)

	resp, err = svc.List(ctx, auditdomain.ListAuditLogRequest{TargetType: "request"})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 2)
}

func TestListPagination(t *testing.T) {
	_, svc := setupService(t, "auditsvc_page")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.AuditLog(ctx, nil, "auth.login", "account", nil, nil))
	}

	resp, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageSize: 2},
	})
	require.NoError(t, err)
	assert.Len(t, resp.AuditLogs, 2)
	assert.True(t, resp.HasMore)
	assert.NotEmpty(t, resp.NextPageToken)
}

func TestListRejectsBadInput(t *testing.T) {
	_, svc := setupService(t, "auditsvc_badinput")
	ctx := context.Background()

	_, err := svc.List(ctx, auditdomain.ListAuditLogRequest{
		Pagination: pagination.Pagination{PageToken: "%%%not-base64%%%"},
	})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidPageToken)

	start := time.Now().UTC()
	end := start.Add(-time.Hour)
	_, err = svc.List(ctx, auditdomain.ListAuditLogRequest{StartAt: &start, EndAt: &end})
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTimeRange)
}
