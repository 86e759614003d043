package shadow

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type NoteFields struct {
	Title string `gorm:"column:title"`
	Body  string `gorm:"column:body"`
}

func (NoteFields) ShadowTable() string {
	return "backup_notes"
}

type Note struct {
	ID         snowflake.ID `gorm:"column:id;primaryKey"`
	NoteFields `gorm:"embedded"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (Note) TableName() string {
	return "notes"
}

func setupArchive(t *testing.T, dsn string) (*gorm.DB, *Archive[NoteFields], *snowflake.Node) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Note{}, &Entry[NoteFields]{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return db, NewArchive[NoteFields](db, zap.NewNop(), node), node
}

func TestCaptureAndListOrdering(t *testing.T) {
	db, archive, node := setupArchive(t, "file:shadow_capture?mode=memory&cache=shared")
	ctx := context.Background()

	first := node.Generate()
	second := node.Generate()

	base := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, archive.Capture(ctx, db, BackupCreate, first, base.Add(-time.Hour), NoteFields{Title: "old"}))
	require.NoError(t, archive.Capture(ctx, db, BackupUpdate, second, base, NoteFields{Title: "new"}))

	entries, err := archive.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "new", entries[0].Record.Title)
	assert.Equal(t, BackupUpdate, entries[0].BackupType)
	assert.Equal(t, "old", entries[1].Record.Title)
	assert.Equal(t, first, entries[1].OriginalID)
}

func TestRestoreConsumesEntry(t *testing.T) {
	db, archive, node := setupArchive(t, "file:shadow_restore?mode=memory&cache=shared")
	ctx := context.Background()

	originalID := node.Generate()
	createdAt := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)
	require.NoError(t, archive.Capture(ctx, db, BackupDelete, originalID, createdAt, NoteFields{Title: "keep", Body: "body"}))

	entries, err := archive.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entryID := entries[0].ID

	insert := func(tx *gorm.DB, entry Entry[NoteFields]) error {
		restored := Note{
			ID:         node.Generate(),
			NoteFields: entry.Record,
			CreatedAt:  entry.CreatedAt,
		}
		return tx.Create(&restored).Error
	}

	result, err := archive.Restore(ctx, []snowflake.ID{entryID}, insert)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	assert.Empty(t, result.Failures)

	var restored []Note
	require.NoError(t, db.Find(&restored).Error)
	require.Len(t, restored, 1)
	assert.Equal(t, "keep", restored[0].Title)
	assert.True(t, restored[0].CreatedAt.Equal(createdAt))

	// The snapshot is gone, so restoring it again fails per item.
	result, err = archive.Restore(ctx, []snowflake.ID{entryID}, insert)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Restored)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "not_found", result.Failures[0].Reason)
}

func TestRestoreEmptySelection(t *testing.T) {
	_, archive, _ := setupArchive(t, "file:shadow_empty?mode=memory&cache=shared")

	_, err := archive.Restore(context.Background(), nil, func(tx *gorm.DB, entry Entry[NoteFields]) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreMixedBatchContinues(t *testing.T) {
	db, archive, node := setupArchive(t, "file:shadow_mixed?mode=memory&cache=shared")
	ctx := context.Background()

	require.NoError(t, archive.Capture(ctx, db, BackupDelete, node.Generate(), time.Now().UTC(), NoteFields{Title: "a"}))

	entries, err := archive.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	missing := node.Generate()
	result, err := archive.Restore(ctx, []snowflake.ID{missing, entries[0].ID}, func(tx *gorm.DB, entry Entry[NoteFields]) error {
		restored := Note{ID: node.Generate(), NoteFields: entry.Record, CreatedAt: entry.CreatedAt}
		return tx.Create(&restored).Error
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Restored)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, missing.String(), result.Failures[0].ID)
	assert.Equal(t, "not_found", result.Failures[0].Reason)
}
