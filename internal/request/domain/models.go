package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusForPickup Status = "for_pickup"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusForPickup:
		return true
	default:
		return false
	}
}

const (
	CertificateClearance = "clearance"
	CertificateResidency = "residency"
	CertificateIndigency = "indigency"
)

func ValidCertificateType(value string) bool {
	switch value {
	case CertificateClearance, CertificateResidency, CertificateIndigency:
		return true
	default:
		return false
	}
}

// RequestFields is the domain column set mirrored between the live requests
// table and its shadow table.
type RequestFields struct {
	LastName        string `gorm:"column:last_name;not null" json:"last_name"`
	FirstName       string `gorm:"column:first_name;not null" json:"first_name"`
	MiddleName      string `gorm:"column:middle_name" json:"middle_name,omitempty"`
	Suffix          string `gorm:"column:suffix" json:"suffix,omitempty"`
	Address         string `gorm:"column:address;not null" json:"address"`
	Birthday        string `gorm:"column:birthday" json:"birthday"`
	ContactNumber   string `gorm:"column:contact_number" json:"contact_number"`
	Email           string `gorm:"column:email" json:"email,omitempty"`
	CertificateType string `gorm:"column:certificate_type;not null" json:"certificate_type"`
	Purpose         string `gorm:"column:purpose" json:"purpose"`
	Copies          int    `gorm:"column:copies;not null;default:1" json:"copies"`
	Status          Status `gorm:"column:status;not null;default:pending" json:"status"`
}

func (RequestFields) ShadowTable() string {
	return "backup_requests"
}

// Request is one live certificate request.
type Request struct {
	ID            snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	RequestFields `gorm:"embedded"`
	CreatedAt     time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Request) TableName() string {
	return "requests"
}
