package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status          Status
	CertificateType string
	Cursor          *pagination.Cursor
	Limit           int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, request *Request) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Request, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Request, error)
	Update(ctx context.Context, db *gorm.DB, request *Request) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
