// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole is the global role cached on a user account. It is a
// denormalized projection of the membership table: club_president means
// the user holds at least one approved presidency somewhere. Handlers
// must never set it independently of a membership mutation.
type UserRole string

const (
	// UserRoleStudent is the default role for a registered user.
	UserRoleStudent UserRole = "student"
	// UserRoleClubPresident marks a user presiding over at least one club.
	UserRoleClubPresident UserRole = "club_president"
	// UserRoleAdmin marks a platform administrator.
	UserRoleAdmin UserRole = "admin"
)

// User represents a registered account.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      UserRole       `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	Bio       string         `json:"bio"`
	Avatar    string         `json:"avatar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the platform admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
