package domain

import (
	"context"
	"errors"
	"time"

	"github.com/opengov-ph/barangay/internal/shadow"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
)

type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	ImageURL    string    `json:"image_url"`
}

type UpdateEventRequest struct {
	ID string
	CreateEventRequest
}

type ListEventRequest struct {
	pagination.Pagination
}

type ListEventResponse struct {
	pagination.PageInfo
	Events []Event `json:"events"`
}

type Service interface {
	Create(ctx context.Context, req CreateEventRequest) (Event, error)
	List(ctx context.Context, req ListEventRequest) (ListEventResponse, error)
	GetByID(ctx context.Context, id string) (Event, error)
	Update(ctx context.Context, req UpdateEventRequest) (Event, error)
	Delete(ctx context.Context, id string) error

	ListBackups(ctx context.Context) ([]shadow.Entry[EventFields], error)
	Restore(ctx context.Context, ids []string) (shadow.RestoreResult, error)
}

var (
	ErrInvalidTitle     = errors.New("invalid_title")
	ErrInvalidSchedule  = errors.New("invalid_schedule")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
)
