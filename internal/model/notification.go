package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification types dispatched by the notifier
const (
	NotificationNewVisitor    = "new_visitor"
	NotificationVisitApproved = "visit_approved"
	NotificationVisitRejected = "visit_rejected"
	NotificationNewUser       = "new_user"
	NotificationUserApproved  = "user_approved"
	NotificationTest          = "test"
)

// Notification is the durable in-app record created for every dispatch,
// regardless of whether real-time or push delivery succeeded.
type Notification struct {
	ID        uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index"`
	Type      string            `json:"type" gorm:"size:50;not null"`
	Message   string            `json:"message" gorm:"not null"`
	Metadata  datatypes.JSONMap `json:"metadata" gorm:"type:jsonb"`
	IsRead    bool              `json:"is_read" gorm:"default:false"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}
