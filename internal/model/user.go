package model

import (
	"time"

	"github.com/google/uuid"
)

// Role defines what a user is allowed to do
type Role string

const (
	RoleResident Role = "resident"
	RoleAdmin    Role = "admin"
	RoleSecurity Role = "security"
)

// User represents a registered account (resident, admin or security guard)
type User struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string     `json:"name" gorm:"size:100;not null"`
	Phone       string     `json:"phone" gorm:"uniqueIndex;not null;size:20"`
	Password    string     `json:"-" gorm:"size:255;not null"`
	Role        Role       `json:"role" gorm:"type:user_role;not null"`
	ApartmentID *uuid.UUID `json:"apartment_id" gorm:"type:uuid;index"`
	FlatID      *uuid.UUID `json:"flat_id" gorm:"type:uuid;index"`
	// Residents start unapproved and must be approved by an admin before login
	IsApproved bool      `json:"is_approved" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Phone       string     `json:"phone"`
	Role        Role       `json:"role"`
	ApartmentID *uuid.UUID `json:"apartment_id"`
	FlatID      *uuid.UUID `json:"flat_id"`
	IsApproved  bool       `json:"is_approved"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToResponse converts User to safe UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:          u.ID,
		Name:        u.Name,
		Phone:       u.Phone,
		Role:        u.Role,
		ApartmentID: u.ApartmentID,
		FlatID:      u.FlatID,
		IsApproved:  u.IsApproved,
		CreatedAt:   u.CreatedAt,
	}
}
