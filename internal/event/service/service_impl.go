package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/internal/event/domain"
	"github.com/opengov-ph/barangay/internal/providers/storage"
	"github.com/opengov-ph/barangay/internal/shadow"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// restorePolicy for events: keep the snapshot's creation time; events carry
// no status to reset.
var restorePolicy = shadow.Policy{
	PreserveCreatedAt: true,
	ResetStatus:       false,
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Repo    domain.Repository
	Storage storage.Provider
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	storage storage.Provider
	archive *shadow.Archive[domain.EventFields]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("event.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		storage: p.Storage,
		archive: shadow.NewArchive[domain.EventFields](p.DB, p.Log, p.GenID),
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEventRequest) (domain.Event, error) {
	fields, err := normalizeFields(req)
	if err != nil {
		return domain.Event{}, err
	}

	now := time.Now().UTC()
	event := domain.Event{
		ID:          s.genID.Generate(),
		EventFields: fields,
		CreatedAt:   now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &event); err != nil {
			return err
		}
		return s.archive.Capture(ctx, tx, shadow.BackupCreate, event.ID, now, event.EventFields)
	})
	if err != nil {
		return domain.Event{}, err
	}

	return event, nil
}

func (s *Service) List(ctx context.Context, req domain.ListEventRequest) (domain.ListEventResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var cursor *pagination.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListEventResponse{}, domain.ErrInvalidPageToken
		}
		cursor = decoded
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Cursor: cursor,
		Limit:  pageSize,
	})
	if err != nil {
		return domain.ListEventResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(event *domain.Event) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        event.ID.String(),
			CreatedAt: event.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	events := make([]domain.Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, *item)
	}

	return domain.ListEventResponse{PageInfo: *pageInfo, Events: events}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Event, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Event{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Event{}, err
	}
	if item == nil {
		return domain.Event{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateEventRequest) (domain.Event, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Event{}, err
	}

	fields, err := normalizeFields(req.CreateEventRequest)
	if err != nil {
		return domain.Event{}, err
	}

	var updated domain.Event
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		updated = *existing
		updated.EventFields = fields

		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}
		return s.archive.Capture(ctx, tx, shadow.BackupUpdate, updated.ID, time.Now().UTC(), updated.EventFields)
	})
	if err != nil {
		return domain.Event{}, err
	}

	return updated, nil
}

// Delete backs up the event and removes it in one transaction, then deletes
// the event image from storage asynchronously. A failed image deletion is
// logged and never fails the record deletion.
func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := s.parseID(id)
	if err != nil {
		return err
	}

	var imageURL string
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		imageURL = existing.ImageURL

		if err := s.archive.Capture(ctx, tx, shadow.BackupDelete, existing.ID, existing.CreatedAt, existing.EventFields); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, parsed)
	})
	if err != nil {
		return err
	}

	if key, ok := storageKey(imageURL); ok {
		go func() {
			if err := s.storage.Delete(context.Background(), key); err != nil {
				s.log.Warn("event image deletion failed", zap.String("key", key), zap.Error(err))
			}
		}()
	}

	return nil
}

func (s *Service) ListBackups(ctx context.Context) ([]shadow.Entry[domain.EventFields], error) {
	return s.archive.List(ctx)
}

func (s *Service) Restore(ctx context.Context, ids []string) (shadow.RestoreResult, error) {
	parsed, err := s.parseIDs(ids)
	if err != nil {
		return shadow.RestoreResult{}, err
	}

	return s.archive.Restore(ctx, parsed, func(tx *gorm.DB, entry shadow.Entry[domain.EventFields]) error {
		createdAt := time.Now().UTC()
		if restorePolicy.PreserveCreatedAt {
			createdAt = entry.CreatedAt
		}

		// Delete removed the stored image, so the snapshot's image_url would
		// point at nothing. The restored event starts without one.
		fields := entry.Record
		fields.ImageURL = ""

		restored := domain.Event{
			ID:          s.genID.Generate(),
			EventFields: fields,
			CreatedAt:   createdAt,
		}
		return s.repo.Insert(ctx, tx, &restored)
	})
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}

func (s *Service) parseIDs(values []string) ([]snowflake.ID, error) {
	ids := make([]snowflake.ID, 0, len(values))
	for _, value := range values {
		id, err := s.parseID(value)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// storageKey extracts the provider key from URLs minted by the storage layer.
func storageKey(imageURL string) (string, bool) {
	trimmed := strings.TrimSpace(imageURL)
	if trimmed == "" {
		return "", false
	}
	key, ok := strings.CutPrefix(trimmed, "/storage/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

func normalizeFields(req domain.CreateEventRequest) (domain.EventFields, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return domain.EventFields{}, domain.ErrInvalidTitle
	}

	if req.StartsAt.IsZero() {
		return domain.EventFields{}, domain.ErrInvalidSchedule
	}
	if !req.EndsAt.IsZero() && req.EndsAt.Before(req.StartsAt) {
		return domain.EventFields{}, domain.ErrInvalidSchedule
	}

	return domain.EventFields{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Venue:       strings.TrimSpace(req.Venue),
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt.UTC(),
		ImageURL:    strings.TrimSpace(req.ImageURL),
	}, nil
}
