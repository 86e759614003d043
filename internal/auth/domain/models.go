package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Account is a barangay staff login.
type Account struct {
	ID           snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	Email        string       `gorm:"column:email;not null;uniqueIndex" json:"email"`
	Name         string       `gorm:"column:name;not null" json:"name"`
	Role         Role         `gorm:"column:role;not null;default:staff" json:"role"`
	PasswordHash string       `gorm:"column:password_hash;not null" json:"-"`
	CreatedAt    time.Time    `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}

// Session is a server-side login session. Only a SHA-256 of the raw cookie
// token is stored.
type Session struct {
	ID        snowflake.ID `gorm:"column:id;primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"column:account_id;not null;index" json:"account_id"`
	TokenHash string       `gorm:"column:token_hash;not null;uniqueIndex" json:"-"`
	UserAgent string       `gorm:"column:user_agent" json:"user_agent,omitempty"`
	IPAddress string       `gorm:"column:ip_address" json:"ip_address,omitempty"`
	ExpiresAt time.Time    `gorm:"column:expires_at;not null" json:"expires_at"`
	RevokedAt *time.Time   `gorm:"column:revoked_at" json:"revoked_at,omitempty"`
	CreatedAt time.Time    `gorm:"column:created_at;not null" json:"created_at"`
}

func (Session) TableName() string {
	return "sessions"
}
