// Package impex exports the portal's tables as a zip archive of JSON dumps
// and imports such an archive back, replacing the current contents.
package impex

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrEmptyArchive   = errors.New("empty_archive")
	ErrInvalidArchive = errors.New("invalid_archive")
)

// tables lists what travels through export and import. Accounts, sessions and
// reset codes are deliberately excluded so credentials never leave the host.
var tables = []string{
	"requests",
	"backup_requests",
	"events",
	"backup_events",
	"households",
	"backup_households",
	"audit_logs",
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) *Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("impex.service"),
	}
}

// ExportResult carries the archive bytes and a suggested filename.
type ExportResult struct {
	Filename string
	Data     []byte
}

// ImportResult reports per-table row counts after a successful import.
type ImportResult struct {
	Tables map[string]int `json:"tables"`
}

// Export dumps every known table into a zip archive, one JSON file per table.
func (s *Service) Export(ctx context.Context) (ExportResult, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, table := range tables {
		var rows []map[string]interface{}
		if err := s.db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
			return ExportResult{}, fmt.Errorf("dump %s: %w", table, err)
		}

		w, err := zw.Create(table + ".json")
		if err != nil {
			return ExportResult{}, err
		}
		enc := json.NewEncoder(w)
		if err := enc.Encode(rows); err != nil {
			return ExportResult{}, fmt.Errorf("encode %s: %w", table, err)
		}
	}

	if err := zw.Close(); err != nil {
		return ExportResult{}, err
	}

	name := fmt.Sprintf("barangay-export-%s.zip", time.Now().UTC().Format("20060102-150405"))
	s.log.Info("exported tables", zap.Int("tables", len(tables)), zap.Int("bytes", buf.Len()))

	return ExportResult{Filename: name, Data: buf.Bytes()}, nil
}

// Import replaces the contents of every table found in the archive. The whole
// import runs in a single transaction so a malformed archive changes nothing.
func (s *Service) Import(ctx context.Context, archive []byte) (ImportResult, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return ImportResult{}, ErrInvalidArchive
	}

	dumps := map[string][]map[string]interface{}{}
	for _, file := range zr.File {
		table := strings.TrimSuffix(file.Name, ".json")
		if !strings.HasSuffix(file.Name, ".json") || !knownTable(table) {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return ImportResult{}, ErrInvalidArchive
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ImportResult{}, ErrInvalidArchive
		}

		var rows []map[string]interface{}
		if err := json.Unmarshal(data, &rows); err != nil {
			return ImportResult{}, ErrInvalidArchive
		}
		dumps[table] = rows
	}

	if len(dumps) == 0 {
		return ImportResult{}, ErrEmptyArchive
	}

	result := ImportResult{Tables: map[string]int{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for table, rows := range dumps {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
			for _, row := range rows {
				if len(row) == 0 {
					continue
				}
				if err := tx.Table(table).Create(row).Error; err != nil {
					return fmt.Errorf("insert into %s: %w", table, err)
				}
			}
			result.Tables[table] = len(rows)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	s.log.Info("imported tables", zap.Int("tables", len(result.Tables)))
	return result, nil
}

func knownTable(name string) bool {
	for _, table := range tables {
		if table == name {
			return true
		}
	}
	return false
}

var Module = fx.Module("impex.service",
	fx.Provide(New),
)
