package impex

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T, name string) (*gorm.DB, *Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	for _, table := range tables {
		require.NoError(t, db.Exec(fmt.Sprintf(
			`CREATE TABLE %s (id INTEGER PRIMARY KEY, payload TEXT)`, table,
		)).Error)
	}

	svc := New(Params{DB: db, Log: zap.NewNop()})
	return db, svc
}

func TestExportImportRoundTrip(t *testing.T) {
	source, svc := setupService(t, "impex_source")
	ctx := context.Background()

	require.NoError(t, source.Exec(`INSERT INTO requests (id, payload) VALUES (1, 'a'), (2, 'b')`).Error)
	require.NoError(t, source.Exec(`INSERT INTO backup_requests (id, payload) VALUES (10, 'x')`).Error)
	require.NoError(t, source.Exec(`INSERT INTO audit_logs (id, payload) VALUES (100, 'log')`).Error)

	exported, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Contains(t, exported.Filename, "barangay-export-")
	assert.NotEmpty(t, exported.Data)

	target, targetSvc := setupService(t, "impex_target")
	// Pre-existing rows must be replaced, not merged.
	require.NoError(t, target.Exec(`INSERT INTO requests (id, payload) VALUES (99, 'stale')`).Error)

	result, err := targetSvc.Import(ctx, exported.Data)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Tables["requests"])
	assert.Equal(t, 1, result.Tables["backup_requests"])
	assert.Equal(t, 1, result.Tables["audit_logs"])
	assert.Equal(t, 0, result.Tables["events"])

	var payloads []string
	require.NoError(t, target.Raw(`SELECT payload FROM requests ORDER BY id`).Scan(&payloads).Error)
	assert.Equal(t, []string{"a", "b"}, payloads)
}

func TestImportRejectsGarbage(t *testing.T) {
	_, svc := setupService(t, "impex_garbage")

	_, err := svc.Import(context.Background(), []byte("definitely not a zip"))
	assert.ErrorIs(t, err, ErrInvalidArchive)
}

func TestImportRejectsArchiveWithoutKnownTables(t *testing.T) {
	_, svc := setupService(t, "impex_unknown")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("secrets.json")
	require.NoError(t, err)
	_, err = w.Write([]byte(`[]`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.Import(context.Background(), buf.Bytes())
	assert.ErrorIs(t, err, ErrEmptyArchive)
}

func TestImportRollsBackOnBadRow(t *testing.T) {
	db, svc := setupService(t, "impex_badrow")
	ctx := context.Background()

	require.NoError(t, db.Exec(`INSERT INTO events (id, payload) VALUES (1, 'keep')`).Error)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("events.json")
	require.NoError(t, err)
	// Duplicate primary keys make the second insert fail mid-import.
	_, err = w.Write([]byte(`[{"id": 5, "payload": "ok"}, {"id": 5, "payload": "dup"}]`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = svc.Import(ctx, buf.Bytes())
	require.Error(t, err)

	// The failed import must leave the original contents untouched.
	var payloads []string
	require.NoError(t, db.Raw(`SELECT payload FROM events ORDER BY id`).Scan(&payloads).Error)
	assert.Equal(t, []string{"keep"}, payloads)
}
