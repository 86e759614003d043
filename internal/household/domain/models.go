package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusForInterview Status = "for_interview"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusForInterview:
		return true
	default:
		return false
	}
}

// Member is one person on the household roster. The roster is stored as a
// JSON document on the household row so it travels with the record through
// backup and restore as a unit.
type Member struct {
	LastName   string `json:"last_name"`
	FirstName  string `json:"first_name"`
	MiddleName string `json:"middle_name,omitempty"`
	Birthday   string `json:"birthday,omitempty"`
	Relation   string `json:"relation"`
}

// HouseholdFields is the domain column set mirrored between the live
// households table and its shadow table.
type HouseholdFields struct {
	HeadLastName   string         `gorm:"column:head_last_name;not null" json:"head_last_name"`
	HeadFirstName  string         `gorm:"column:head_first_name;not null" json:"head_first_name"`
	HeadMiddleName string         `gorm:"column:head_middle_name" json:"head_middle_name,omitempty"`
	Address        string         `gorm:"column:address;not null" json:"address"`
	Purok          string         `gorm:"column:purok" json:"purok,omitempty"`
	ContactNumber  string         `gorm:"column:contact_number" json:"contact_number"`
	Members        datatypes.JSON `gorm:"column:members" json:"members"`
	Status         Status         `gorm:"column:status;not null;default:pending" json:"status"`
}

func (HouseholdFields) ShadowTable() string {
	return "backup_households"
}

// Household is one live RBI household registration.
type Household struct {
	ID              snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	HouseholdFields `gorm:"embedded"`
	CreatedAt       time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Household) TableName() string {
	return "households"
}
