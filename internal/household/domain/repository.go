package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	Status Status
	Purok  string
	Cursor *pagination.Cursor
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, household *Household) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Household, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Household, error)
	Update(ctx context.Context, db *gorm.DB, household *Household) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
