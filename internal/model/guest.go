package model

import (
	"time"

	"github.com/google/uuid"
)

// VisitStatus is the lifecycle state of a visit.
// pending is initial; checked_in and rejected are terminal.
type VisitStatus string

const (
	VisitStatusPending   VisitStatus = "pending"
	VisitStatusCheckedIn VisitStatus = "checked_in"
	VisitStatusRejected  VisitStatus = "rejected"
)

// VisitOrigin tags how a visit was created: a resident invite (QR flow) or
// a manual sign-in at the gate (resident-approval flow).
type VisitOrigin string

const (
	VisitOriginInvited VisitOrigin = "invited"
	VisitOriginManual  VisitOrigin = "manual"
)

// Guest is a visitor record. InvitedBy is nil for gate-desk manual sign-ins.
type Guest struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name          string     `json:"name" gorm:"size:100;not null"`
	Phone         string     `json:"phone" gorm:"size:20"`
	VehicleNumber string     `json:"vehicle_number" gorm:"size:20"`
	InvitedBy     *uuid.UUID `json:"invited_by" gorm:"type:uuid;index"`
	IsDailyPass   bool       `json:"is_daily_pass" gorm:"default:false"`
	ValidFrom     *time.Time `json:"valid_from"`
	ValidUntil    *time.Time `json:"valid_until"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Visit records one pass of a guest through the gate. The latest visit per
// guest (by created_at) is the authoritative one.
type Visit struct {
	ID              uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GuestID         uuid.UUID   `json:"guest_id" gorm:"type:uuid;not null;index"`
	FlatID          uuid.UUID   `json:"flat_id" gorm:"type:uuid;not null;index"`
	CheckedBy       *uuid.UUID  `json:"checked_by" gorm:"type:uuid"`
	Status          VisitStatus `json:"status" gorm:"type:visit_status;default:'pending';not null"`
	Origin          VisitOrigin `json:"origin" gorm:"type:visit_origin;not null"`
	QRToken         *string     `json:"qr_token" gorm:"uniqueIndex;size:512"`
	IsQRUsed        bool        `json:"is_qr_used" gorm:"default:false"`
	Purpose         *string     `json:"purpose"`
	ExpectedArrival *time.Time  `json:"expected_arrival"`
	CheckedInAt     *time.Time  `json:"checked_in_at"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
