package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	From   *string
	Cursor *pagination.Cursor
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Event, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Event, error)
	Update(ctx context.Context, db *gorm.DB, event *Event) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
