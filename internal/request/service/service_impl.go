package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/internal/request/domain"
	"github.com/opengov-ph/barangay/internal/shadow"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// restorePolicy for requests: keep the snapshot's creation time, force the
// restored request back through review.
var restorePolicy = shadow.Policy{
	PreserveCreatedAt: true,
	ResetStatus:       true,
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	repo    domain.Repository
	archive *shadow.Archive[domain.RequestFields]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("request.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		archive: shadow.NewArchive[domain.RequestFields](p.DB, p.Log, p.GenID),
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitRequest) (domain.Request, error) {
	fields, err := normalizeFields(req)
	if err != nil {
		return domain.Request{}, err
	}
	fields.Status = domain.StatusPending

	now := time.Now().UTC()
	request := domain.Request{
		ID:            s.genID.Generate(),
		RequestFields: fields,
		CreatedAt:     now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &request); err != nil {
			return err
		}
		return s.archive.Capture(ctx, tx, shadow.BackupCreate, request.ID, now, request.RequestFields)
	})
	if err != nil {
		return domain.Request{}, err
	}

	return request, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) (domain.ListResponse, error) {
	status := domain.Status(strings.TrimSpace(req.Status))
	if status != "" && !status.Valid() {
		return domain.ListResponse{}, domain.ErrInvalidStatus
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	var cursor *pagination.Cursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return domain.ListResponse{}, domain.ErrInvalidPageToken
		}
		cursor = decoded
	}

	items, err := s.repo.List(ctx, s.db, domain.ListFilter{
		Status:          status,
		CertificateType: strings.TrimSpace(req.CertificateType),
		Cursor:          cursor,
		Limit:           pageSize,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(request *domain.Request) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        request.ID.String(),
			CreatedAt: request.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	requests := make([]domain.Request, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		requests = append(requests, *item)
	}

	return domain.ListResponse{PageInfo: *pageInfo, Requests: requests}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Request, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Request{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Request{}, err
	}
	if item == nil {
		return domain.Request{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Request, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Request{}, err
	}

	fields, err := normalizeFields(req.SubmitRequest)
	if err != nil {
		return domain.Request{}, err
	}

	var updated domain.Request
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		fields.Status = existing.Status
		updated = *existing
		updated.RequestFields = fields

		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}
		// Every update appends a fresh snapshot; history accumulates.
		return s.archive.Capture(ctx, tx, shadow.BackupUpdate, updated.ID, time.Now().UTC(), updated.RequestFields)
	})
	if err != nil {
		return domain.Request{}, err
	}

	return updated, nil
}

func (s *Service) SetStatus(ctx context.Context, id string, status domain.Status) (domain.Request, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Request{}, err
	}
	if !status.Valid() {
		return domain.Request{}, domain.ErrInvalidStatus
	}

	var updated domain.Request
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		updated = *existing
		updated.Status = status

		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}
		return s.archive.Capture(ctx, tx, shadow.BackupUpdate, updated.ID, time.Now().UTC(), updated.RequestFields)
	})
	if err != nil {
		return domain.Request{}, err
	}

	return updated, nil
}

// Delete backs up the current row and removes it in one transaction. The
// delete snapshot keeps the record's original created_at so provenance
// survives a later restore.
func (s *Service) Delete(ctx context.Context, id string) error {
	parsed, err := s.parseID(id)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindByID(ctx, tx, parsed)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}

		if err := s.archive.Capture(ctx, tx, shadow.BackupDelete, existing.ID, existing.CreatedAt, existing.RequestFields); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, parsed)
	})
}

func (s *Service) ListBackups(ctx context.Context) ([]shadow.Entry[domain.RequestFields], error) {
	return s.archive.List(ctx)
}

func (s *Service) Restore(ctx context.Context, ids []string) (shadow.RestoreResult, error) {
	parsed, err := s.parseIDs(ids)
	if err != nil {
		return shadow.RestoreResult{}, err
	}

	return s.archive.Restore(ctx, parsed, func(tx *gorm.DB, entry shadow.Entry[domain.RequestFields]) error {
		fields := entry.Record
		if restorePolicy.ResetStatus {
			fields.Status = domain.StatusPending
		}

		createdAt := time.Now().UTC()
		if restorePolicy.PreserveCreatedAt {
			createdAt = entry.CreatedAt
		}

		restored := domain.Request{
			ID:            s.genID.Generate(),
			RequestFields: fields,
			CreatedAt:     createdAt,
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

func normalizeFields(req domain.SubmitRequest) (domain.RequestFields, error) {
	lastName := strings.TrimSpace(req.LastName)
	firstName := strings.TrimSpace(req.FirstName)
	if lastName == "" || firstName == "" {
		return domain.RequestFields{}, domain.ErrInvalidName
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.RequestFields{}, domain.ErrInvalidAddress
	}

	birthday := strings.TrimSpace(req.Birthday)
	if birthday != "" {
		if _, err := time.Parse("2006-01-02", birthday); err != nil {
			return domain.RequestFields{}, domain.ErrInvalidBirthday
		}
	}

	certType := strings.TrimSpace(req.CertificateType)
	if !domain.ValidCertificateType(certType) {
		return domain.RequestFields{}, domain.ErrInvalidCertificateType
	}

	copies := req.Copies
	if copies == 0 {
		copies = 1
	}
	if copies < 1 || copies > 10 {
		return domain.RequestFields{}, domain.ErrInvalidCopies
	}

	return domain.RequestFields{
		LastName:        lastName,
		FirstName:       firstName,
		MiddleName:      strings.TrimSpace(req.MiddleName),
		Suffix:          strings.TrimSpace(req.Suffix),
		Address:         address,
		Birthday:        birthday,
		ContactNumber:   strings.TrimSpace(req.ContactNumber),
		Email:           strings.TrimSpace(req.Email),
		CertificateType: certType,
		Purpose:         strings.TrimSpace(req.Purpose),
		Copies:          copies,
	}, nil
}
