package models

import "time"

// Built-in role names seeded at startup.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleCashier = "cashier"
	RoleChef    = "chef"
)

type User struct {
	ID           uint              `gorm:"primaryKey" json:"id"`
	Name         string            `gorm:"size:100;not null" json:"name"`
	Email        string            `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string            `gorm:"size:255;not null" json:"-"`
	RoleID       uint              `gorm:"index;not null" json:"role_id"`
	Role         *Role             `json:"role,omitempty"`
	LocationID   *uint             `gorm:"index" json:"location_id"`
	Location     *BusinessLocation `json:"location,omitempty"`
	IsActive     bool              `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}
