package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/internal/household/domain"
	"github.com/opengov-ph/barangay/internal/shadow"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// restorePolicy for households: keep the snapshot's creation time, force the
// restored registration back through review.
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
	archive *shadow.Archive[domain.HouseholdFields]
}

func New(p Params) domain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("household.service"),
		genID:   p.GenID,
		repo:    p.Repo,
		archive: shadow.NewArchive[domain.HouseholdFields](p.DB, p.Log, p.GenID),
	}
}

func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (domain.Household, error) {
	fields, err := normalizeFields(req)
	if err != nil {
		return domain.Household{}, err
	}
	fields.Status = domain.StatusPending

	now := time.Now().UTC()
	household := domain.Household{
		ID:              s.genID.Generate(),
		HouseholdFields: fields,
		CreatedAt:       now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &household); err != nil {
			return err
		}
		return s.archive.Capture(ctx, tx, shadow.BackupCreate, household.ID, now, household.HouseholdFields)
	})
	if err != nil {
		return domain.Household{}, err
	}

	return household, nil
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
		Status: status,
		Purok:  strings.TrimSpace(req.Purok),
		Cursor: cursor,
		Limit:  pageSize,
	})
	if err != nil {
		return domain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(household *domain.Household) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        household.ID.String(),
			CreatedAt: household.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	households := make([]domain.Household, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		households = append(households, *item)
	}

	return domain.ListResponse{PageInfo: *pageInfo, Households: households}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Household, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Household{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return domain.Household{}, err
	}
	if item == nil {
		return domain.Household{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateRequest) (domain.Household, error) {
	id, err := s.parseID(req.ID)
	if err != nil {
		return domain.Household{}, err
	}

	fields, err := normalizeFields(req.RegisterRequest)
	if err != nil {
		return domain.Household{}, err
	}

	var updated domain.Household
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
		updated.HouseholdFields = fields

		if err := s.repo.Update(ctx, tx, &updated); err != nil {
			return err
		}
		return s.archive.Capture(ctx, tx, shadow.BackupUpdate, updated.ID, time.Now().UTC(), updated.HouseholdFields)
	})
	if err != nil {
		return domain.Household{}, err
	}

	return updated, nil
}

func (s *Service) SetStatus(ctx context.Context, id string, status domain.Status) (domain.Household, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return domain.Household{}, err
	}
	if !status.Valid() {
		return domain.Household{}, domain.ErrInvalidStatus
	}

	var updated domain.Household
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
		return s.archive.Capture(ctx, tx, shadow.BackupUpdate, updated.ID, time.Now().UTC(), updated.HouseholdFields)
	})
	if err != nil {
		return domain.Household{}, err
	}

	return updated, nil
}

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

		if err := s.archive.Capture(ctx, tx, shadow.BackupDelete, existing.ID, existing.CreatedAt, existing.HouseholdFields); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, parsed)
	})
}

func (s *Service) ListBackups(ctx context.Context) ([]shadow.Entry[domain.HouseholdFields], error) {
	return s.archive.List(ctx)
}

func (s *Service) Restore(ctx context.Context, ids []string) (shadow.RestoreResult, error) {
	parsed, err := s.parseIDs(ids)
	if err != nil {
		return shadow.RestoreResult{}, err
	}

	return s.archive.Restore(ctx, parsed, func(tx *gorm.DB, entry shadow.Entry[domain.HouseholdFields]) error {
		fields := entry.Record
		if restorePolicy.ResetStatus {
			fields.Status = domain.StatusPending
		}

		createdAt := time.Now().UTC()
		if restorePolicy.PreserveCreatedAt {
			createdAt = entry.CreatedAt
		}

		restored := domain.Household{
			ID:              s.genID.Generate(),
			HouseholdFields: fields,
			CreatedAt:       createdAt,
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

func normalizeFields(req domain.RegisterRequest) (domain.HouseholdFields, error) {
	headLast := strings.TrimSpace(req.HeadLastName)
	headFirst := strings.TrimSpace(req.HeadFirstName)
	if headLast == "" || headFirst == "" {
		return domain.HouseholdFields{}, domain.ErrInvalidHead
	}

	address := strings.TrimSpace(req.Address)
	if address == "" {
		return domain.HouseholdFields{}, domain.ErrInvalidAddress
	}

	members := make([]domain.Member, 0, len(req.Members))
	for _, member := range req.Members {
		member.LastName = strings.TrimSpace(member.LastName)
		member.FirstName = strings.TrimSpace(member.FirstName)
		member.Relation = strings.TrimSpace(member.Relation)
		if member.LastName == "" || member.FirstName == "" || member.Relation == "" {
			return domain.HouseholdFields{}, domain.ErrInvalidMember
		}
		if member.Birthday != "" {
			if _, err := time.Parse("2006-01-02", member.Birthday); err != nil {
				return domain.HouseholdFields{}, domain.ErrInvalidMember
			}
		}
		members = append(members, member)
	}

	encoded, err := json.Marshal(members)
	if err != nil {
		return domain.HouseholdFields{}, domain.ErrInvalidMember
	}

	return domain.HouseholdFields{
		HeadLastName:   headLast,
		HeadFirstName:  headFirst,
		HeadMiddleName: strings.TrimSpace(req.HeadMiddleName),
		Address:        address,
		Purok:          strings.TrimSpace(req.Purok),
		ContactNumber:  strings.TrimSpace(req.ContactNumber),
		Members:        datatypes.JSON(encoded),
	}, nil
}
