package shadow

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not_found")

// Archive is the shadow store for one record kind.
type Archive[T Descriptor] struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewArchive[T Descriptor](conn *gorm.DB, log *zap.Logger, genID *snowflake.Node) *Archive[T] {
	var zero T
	return &Archive[T]{
		db:    conn,
		log:   log.Named("shadow." + zero.ShadowTable()),
		genID: genID,
	}
}

// Capture writes one snapshot row through tx so it commits or rolls back with
// the primary mutation. createdAt is the snapshot timestamp; delete captures
// pass the original record's creation time.
func (a *Archive[T]) Capture(ctx context.Context, tx *gorm.DB, backupType BackupType, originalID snowflake.ID, createdAt time.Time, record T) error {
	entry := Entry[T]{
		ID:         a.genID.Generate(),
		OriginalID: originalID,
		BackupType: backupType,
		CreatedAt:  createdAt,
		Record:     record,
	}
	return tx.WithContext(ctx).Create(&entry).Error
}

// List returns all snapshots, newest first.
func (a *Archive[T]) List(ctx context.Context) ([]Entry[T], error) {
	var entries []Entry[T]
	err := a.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Restore moves the selected snapshots back into the live table. Each id is
// processed in its own transaction: look up the entry, hand it to insert to
// re-create the live row, then consume the entry. A missing id fails that
// item with not_found and the batch continues; consuming the entry inside the
// transaction makes a second restore of the same id report not_found instead
// of duplicating the record.
func (a *Archive[T]) Restore(ctx context.Context, ids []snowflake.ID, insert func(tx *gorm.DB, entry Entry[T]) error) (RestoreResult, error) {
	result := RestoreResult{Failures: []RestoreFailure{}}
	if len(ids) == 0 {
		return result, ErrNotFound
	}

	for _, id := range ids {
		err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var entry Entry[T]
			if err := tx.First(&entry, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrNotFound
				}
				return err
			}

			if err := insert(tx, entry); err != nil {
				return err
			}

			return tx.Delete(&Entry[T]{}, "id = ?", id).Error
		})
		if err != nil {
			a.log.Warn("restore item failed", zap.String("id", id.String()), zap.Error(err))
			result.Failures = append(result.Failures, RestoreFailure{
				ID:     id.String(),
				Reason: failureReason(err),
			})
			continue
		}
		result.Restored++
	}

	return result, nil
}

func failureReason(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return "store_error"
}
