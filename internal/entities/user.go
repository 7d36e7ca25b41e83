package entities

import (
	"time"

	"gorm.io/gorm"
)

// User is an account that can sign in to manage the catalog.
// Only IsAdmin gates access; there are no finer-grained roles.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Username     string         `gorm:"uniqueIndex;size:100" json:"username"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	TokenHash    string         `gorm:"index;size:64" json:"-"` // SHA-256 of the API token
	IsAdmin      bool           `gorm:"default:false" json:"is_admin"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
