package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/internal/household/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, household *domain.Household) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO households (
			id, head_last_name, head_first_name, head_middle_name, address, purok,
			contact_number, members, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		household.ID,
		household.HeadLastName,
		household.HeadFirstName,
		household.HeadMiddleName,
		household.Address,
		household.Purok,
		household.ContactNumber,
		household.Members,
		household.Status,
		household.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Household, error) {
	var household domain.Household
	err := db.WithContext(ctx).Raw(
		`SELECT id, head_last_name, head_first_name, head_middle_name, address, purok,
			contact_number, members, status, created_at
		 FROM households WHERE id = ?`,
		id,
	).Scan(&household).Error
	if err != nil {
		return nil, err
	}
	if household.ID == 0 {
		return nil, nil
	}
	return &household, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Household, error) {
	var households []*domain.Household
	stmt := db.WithContext(ctx).Model(&domain.Household{})

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Purok != "" {
		stmt = stmt.Where("purok = ?", filter.Purok)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&households).Error; err != nil {
		return nil, err
	}
	return households, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, household *domain.Household) error {
	return db.WithContext(ctx).Exec(
		`UPDATE households SET
			head_last_name = ?, head_first_name = ?, head_middle_name = ?, address = ?,
			purok = ?, contact_number = ?, members = ?, status = ?
		 WHERE id = ?`,
		household.HeadLastName,
		household.HeadFirstName,
		household.HeadMiddleName,
		household.Address,
		household.Purok,
		household.ContactNumber,
		household.Members,
		household.Status,
		household.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM households WHERE id = ?`, id).Error
}
