package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// EventFields is the domain column set mirrored between the live events table
// and its shadow table.
type EventFields struct {
	Title       string    `gorm:"column:title;not null" json:"title"`
	Description string    `gorm:"column:description" json:"description"`
	Venue       string    `gorm:"column:venue" json:"venue"`
	StartsAt    time.Time `gorm:"column:starts_at;not null" json:"starts_at"`
	EndsAt      time.Time `gorm:"column:ends_at" json:"ends_at"`
	ImageURL    string    `gorm:"column:image_url" json:"image_url,omitempty"`
}

func (EventFields) ShadowTable() string {
	return "backup_events"
}

// Event is one live barangay event or announcement.
type Event struct {
	ID          snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	EventFields `gorm:"embedded"`
	CreatedAt   time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Event) TableName() string {
	return "events"
}
