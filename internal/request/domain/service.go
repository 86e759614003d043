package domain

import (
	"context"
	"errors"

	"github.com/opengov-ph/barangay/internal/shadow"
	"github.com/opengov-ph/barangay/pkg/db/pagination"
)

type SubmitRequest struct {
	LastName        string `json:"last_name"`
	FirstName       string `json:"first_name"`
	MiddleName      string `json:"middle_name"`
	Suffix          string `json:"suffix"`
	Address         string `json:"address"`
	Birthday        string `json:"birthday"`
	ContactNumber   string `json:"contact_number"`
	Email           string `json:"email"`
	CertificateType string `json:"certificate_type"`
	Purpose         string `json:"purpose"`
	Copies          int    `json:"copies"`
}

type UpdateRequest struct {
	ID string
	SubmitRequest
}

type ListRequest struct {
	pagination.Pagination
	Status          string
	CertificateType string
}

type ListResponse struct {
	pagination.PageInfo
	Requests []Request `json:"requests"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (Request, error)
	List(ctx context.Context, req ListRequest) (ListResponse, error)
	GetByID(ctx context.Context, id string) (Request, error)
	Update(ctx context.Context, req UpdateRequest) (Request, error)
	SetStatus(ctx context.Context, id string, status Status) (Request, error)
	Delete(ctx context.Context, id string) error

	ListBackups(ctx context.Context) ([]shadow.Entry[RequestFields], error)
	Restore(ctx context.Context, ids []string) (shadow.RestoreResult, error)
}

var (
	ErrInvalidName            = errors.New("invalid_name")
	ErrInvalidAddress         = errors.New("invalid_address")
	ErrInvalidBirthday        = errors.New("invalid_birthday")
	ErrInvalidCertificateType = errors.New("invalid_certificate_type")
	ErrInvalidCopies          = errors.New("invalid_copies")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrInvalidPageToken       = errors.New("invalid_page_token")
	ErrInvalidID              = errors.New("invalid_id")
	ErrNotFound               = errors.New("not_found")
)
