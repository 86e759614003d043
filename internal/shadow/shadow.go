// Package shadow implements the backup tables kept alongside every mutable
// record table. Each create, update and delete of a live record writes an
// immutable snapshot row into the record's shadow table; snapshots can later
// be restored back into the live table, which consumes them.
package shadow

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// BackupType tags which mutation produced a snapshot.
type BackupType string

const (
	BackupCreate BackupType = "create"
	BackupUpdate BackupType = "update"
	BackupDelete BackupType = "delete"
)

// Descriptor is implemented by the domain field set of a shadowed record.
type Descriptor interface {
	ShadowTable() string
}

// Entry is one row in a shadow table: the mirrored domain columns plus the
// bookkeeping columns. For delete snapshots CreatedAt carries the original
// record's creation time so provenance survives a restore round trip.
type Entry[T Descriptor] struct {
	ID         snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	OriginalID snowflake.ID `gorm:"column:original_id;index" json:"original_id"`
	BackupType BackupType   `gorm:"column:backup_type" json:"backup_type"`
	CreatedAt  time.Time    `gorm:"column:created_at" json:"created_at"`
	Record     T            `gorm:"embedded" json:"record"`
}

// TableName routes the entry to its record kind's shadow table.
func (e *Entry[T]) TableName() string {
	return e.Record.ShadowTable()
}

// Policy controls how a restored record differs from its snapshot.
type Policy struct {
	// PreserveCreatedAt keeps the snapshot's created_at on the restored row
	// instead of stamping the restore time.
	PreserveCreatedAt bool
	// ResetStatus forces the restored row back to the kind's default status
	// regardless of the status captured in the snapshot.
	ResetStatus bool
}

// RestoreFailure reports one snapshot that could not be restored.
type RestoreFailure struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// RestoreResult summarizes a restore batch.
type RestoreResult struct {
	Restored int              `json:"restored"`
	Failures []RestoreFailure `json:"failures"`
}
