package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles, lowest to highest privilege.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

type User struct {
	ID          string    `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string    `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email       string    `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password    string    `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	FirstName   string    `gorm:"size:150" json:"first_name,omitempty"`
	LastName    string    `gorm:"size:150" json:"last_name,omitempty"`
	Bio         string    `gorm:"type:text" json:"bio,omitempty"`
	Role        string    `gorm:"default:'user';not null" json:"role"` // "user", "moderator" or "admin"
	IsSuperuser bool      `gorm:"default:false" json:"-"`              // elevated access flag, independent of Role
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	// If the ID is not already set, generate a new one.
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	return
}

// IsModerator reports whether the user holds the moderator role.
// Evaluated against current state on every call, never cached.
func (user *User) IsModerator() bool {
	return user.Role == RoleModerator
}

// IsAdmin reports whether the user has admin-level access, either through
// the admin role or the superuser flag.
func (user *User) IsAdmin() bool {
	return user.Role == RoleAdmin || user.IsSuperuser
}

func (User) TableName() string {
	return "users"
}
