package domain

import (
	"context"
	"errors"

	"github.com/opengov-ph/barangay/internal/shadow"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
)

type RegisterRequest struct {
	HeadLastName   string   `json:"head_last_name"`
	HeadFirstName  string   `json:"head_first_name"`
	HeadMiddleName string   `json:"head_middle_name"`
	Address        string   `json:"address"`
	Purok          string   `json:"purok"`
	ContactNumber  string   `json:"contact_number"`
	Members        []Member `json:"members"`
}

type UpdateRequest struct {
	ID string
	RegisterRequest
}

type ListRequest struct {
	pagination.Pagination
	Status string
	Purok  string
}

type ListResponse struct {
	pagination.PageInfo
	Households []Household `json:"households"`
}

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (Household, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByID(ctx context.Context, id string) (Household, error)
	Update(ctx context.Context, req UpdateRequest) (Household, error)
	SetStatus(ctx context.Context, id string, status Status) (Household, error)
	Delete(ctx context.Context, id string) error

	ListBackups(ctx context.Context) ([]shadow.Entry[HouseholdFields], error)
	Restore(ctx context.Context, ids []string) (shadow.RestoreResult, error)
}

var (
	ErrInvalidHead      = errors.New("invalid_head")
	ErrInvalidAddress   = errors.New("invalid_address")
	ErrInvalidMember    = errors.New("invalid_member")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrInvalidPageToken = errors.New("invalid_page_token")
	ErrInvalidID        = errors.New("invalid_id")
	ErrNotFound         = errors.New("not_found")
)
