package model

import (
	"time"

	"github.com/google/uuid"
)

// PushToken is a durable push endpoint for one physical device. The token
// value is globally unique: reassigning it to a new user deactivates it under
// the prior owner. Tokens are deactivated, never deleted, when unregistered
// or when the push gateway reports them permanently dead.
type PushToken struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Token      string    `json:"token" gorm:"uniqueIndex;not null;size:512"`
	DeviceType string    `json:"device_type" gorm:"size:20;default:'web'"` // android, ios, web
	IsActive   bool      `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
