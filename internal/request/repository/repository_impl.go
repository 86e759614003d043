package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/internal/request/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *domain.Request) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO requests (
			id, last_name, first_name, middle_name, suffix, address, birthday,
			contact_number, email, certificate_type, purpose, copies, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.LastName,
		request.FirstName,
		request.MiddleName,
		request.Suffix,
		request.Address,
		request.Birthday,
		request.ContactNumber,
		request.Email,
		request.CertificateType,
		request.Purpose,
		request.Copies,
		request.Status,
		request.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Request, error) {
	var request domain.Request
	err := db.WithContext(ctx).Raw(
		`SELECT id, last_name, first_name, middle_name, suffix, address, birthday,
			contact_number, email, certificate_type, purpose, copies, status, created_at
		 FROM requests WHERE id = ?`,
		id,
	).Scan(&request).Error
	if err != nil {
		return nil, err
	}
	if request.ID == 0 {
		return nil, nil
	}
	return &request, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Request, error) {
	var requests []*domain.Request
	stmt := db.WithContext(ctx).Model(&domain.Request{})

	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.CertificateType != "" {
		stmt = stmt.Where("certificate_type = ?", filter.CertificateType)
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

	if err := stmt.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, request *domain.Request) error {
	return db.WithContext(ctx).Exec(
		`UPDATE requests SET
			last_name = ?, first_name = ?, middle_name = ?, suffix = ?, address = ?,
			birthday = ?, contact_number = ?, email = ?, certificate_type = ?,
			purpose = ?, copies = ?, status = ?
		 WHERE id = ?`,
		request.LastName,
		request.FirstName,
		request.MiddleName,
		request.Suffix,
		request.Address,
		request.Birthday,
		request.ContactNumber,
		request.Email,
		request.CertificateType,
		request.Purpose,
		request.Copies,
		request.Status,
		request.ID,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM requests WHERE id = ?`, id).Error
}
