package model

import (
	"time"

	"github.com/google/uuid"
)

// ========== Auth DTOs ==========

type RegisterRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=100"`
	Phone       string     `json:"phone" binding:"required,min=6,max=20"`
	Password    string     `json:"password" binding:"required,min=6"`
	Role        Role       `json:"role" binding:"required,oneof=resident admin security"`
	ApartmentID *uuid.UUID `json:"apartment_id"`
	FlatID      *uuid.UUID `json:"flat_id"`
	BlockID     *uuid.UUID `json:"block_id"`
}

type RegisterResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Phone string `json:"phone" binding:"required,min=6,max=20"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

// ProfileResponse embeds the user's housing assignment
type ProfileResponse struct {
	UserResponse
	Apartment *Apartment `json:"apartment"`
	Flat      *Flat      `json:"flat"`
	Block     *Block     `json:"block"`
}

// ========== Guest / Visit DTOs ==========

type InviteGuestRequest struct {
	Name            string     `json:"name" binding:"required,min=2,max=100"`
	Phone           string     `json:"phone" binding:"required,min=6,max=20"`
	Purpose         string     `json:"purpose" binding:"required,max=255"`
	ExpectedArrival *time.Time `json:"expected_arrival"`
}

type InviteGuestResponse struct {
	QRToken string       `json:"qr_token"`
	Guest   GuestSummary `json:"guest"`
	Visit   InvitedVisit `json:"visit"`
}

type GuestSummary struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type InvitedVisit struct {
	Purpose         string      `json:"purpose"`
	ExpectedArrival *time.Time  `json:"expected_arrival"`
	Status          VisitStatus `json:"status"`
}

// UpdateInviteRequest mirrors InviteGuestRequest; edits replace all fields
type UpdateInviteRequest struct {
	Name            string     `json:"name" binding:"required,min=2,max=100"`
	Phone           string     `json:"phone" binding:"required,min=6,max=20"`
	Purpose         string     `json:"purpose" binding:"required,max=255"`
	ExpectedArrival *time.Time `json:"expected_arrival"`
}

type GuestListQuery struct {
	Limit  int    `form:"limit,default=10"`
	Offset int    `form:"offset,default=0"`
	Status string `form:"status"`
	Search string `form:"search"`
}

// GuestLogEntry is one row of a resident's invite list (guest + latest visit
// + destination flat, joined)
type GuestLogEntry struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Phone           string      `json:"phone"`
	Status          VisitStatus `json:"status"`
	Purpose         *string     `json:"purpose"`
	ExpectedArrival *time.Time  `json:"expected_arrival"`
	CheckedInAt     *time.Time  `json:"checked_in_at"`
	QRToken         *string     `json:"qr_token"`
	CreatedAt       time.Time   `json:"created_at"`
	FlatNumber      string      `json:"flat_number"`
	FlatUniqueID    string      `json:"flat_unique_id"`
	BlockName       *string     `json:"block_name"`
}

type CheckInRequest struct {
	QRToken string `json:"qr_token" binding:"required"`
}

type CheckInResponse struct {
	Message    string `json:"message"`
	GuestName  string `json:"guestName"`
	FlatNumber string `json:"flatNumber"`
}

type ManualSignInRequest struct {
	Name   string    `json:"name" binding:"required,min=2,max=100"`
	Phone  string    `json:"phone" binding:"required,min=6,max=20"`
	FlatID uuid.UUID `json:"flat_id" binding:"required"`
}

type VisitLogQuery struct {
	Filter string `form:"filter"` // today, week, month
	Status string `form:"status"`
	Search string `form:"search"`
}

// VisitLogEntry is one row of the security/admin visitor log
type VisitLogEntry struct {
	ID              uuid.UUID   `json:"id"`
	Name            string      `json:"name"`
	Phone           string      `json:"phone"`
	FlatNumber      string      `json:"flat_number"`
	Status          VisitStatus `json:"status"`
	Origin          VisitOrigin `json:"origin"`
	Purpose         *string     `json:"purpose"`
	ExpectedArrival *time.Time  `json:"expected_arrival"`
	CheckedInAt     *time.Time  `json:"checked_in_at"`
	CreatedAt       time.Time   `json:"created_at"`
}

// ManualPendingEntry is a pending manual sign-in awaiting resident approval
type ManualPendingEntry struct {
	VisitID      uuid.UUID   `json:"visit_id"`
	GuestID      uuid.UUID   `json:"guest_id"`
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	Status       VisitStatus `json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
	FlatNumber   string      `json:"flat_number"`
	FlatUniqueID string      `json:"flat_unique_id"`
}

// ========== Notification DTOs ==========

type MarkReadRequest struct {
	NotificationIDs []uuid.UUID `json:"notificationIds" binding:"required,min=1"`
}

type RegisterPushTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceType string `json:"deviceType"`
}

type UnregisterPushTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type TestPushRequest struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Title  string    `json:"title" binding:"required"`
	Body   string    `json:"body" binding:"required"`
}

// ========== Admin DTOs ==========

type CreateApartmentRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

type CreateBlockRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

type CreateFlatRequest struct {
	Number string `json:"number" binding:"required,min=1,max=20"`
}

type CreateGuardRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Phone    string `json:"phone" binding:"required,min=6,max=20"`
	Password string `json:"password" binding:"required,min=6"`
}

type UpdateGuardRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Phone string `json:"phone" binding:"required,min=6,max=20"`
}

type UserListQuery struct {
	Role   string `form:"role"`
	Search string `form:"search"`
}

type UpdateUserRequest struct {
	Name        string     `json:"name" binding:"required,min=2,max=100"`
	Phone       string     `json:"phone" binding:"required,min=6,max=20"`
	FlatID      *uuid.UUID `json:"flat_id"`
	ApartmentID *uuid.UUID `json:"apartment_id"`
}

// AdminUserEntry is a user row joined with flat/block for the admin list
type AdminUserEntry struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Phone        string     `json:"phone"`
	Role         Role       `json:"role"`
	FlatID       *uuid.UUID `json:"flat_id"`
	ApartmentID  *uuid.UUID `json:"apartment_id"`
	IsApproved   bool       `json:"is_approved"`
	CreatedAt    time.Time  `json:"created_at"`
	FlatNumber   *string    `json:"flat_number"`
	FlatUniqueID *string    `json:"flat_unique_id"`
	BlockName    *string    `json:"block_name"`
}

// ========== WebSocket Event DTOs ==========

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket event types
const (
	// client -> server
	WSEventRegister = "register"

	// server -> client
	WSEventNotification        = "notification"
	WSEventVisitorLogUpdate    = "visitor_log_update"
	WSEventNewManualVisitor    = "new_manual_visitor"
	WSEventManualVisitorStatus = "manual_visitor_status"
	WSEventManualStatusUpdate  = "manual_visitor_status_update"
	WSEventRefreshVisitorLog   = "refresh_visitor_log"
	WSEventUserApproved        = "user_approved"
	WSEventRefreshPendingUsers = "refresh_pending_users"
)

// RegisterEvent installs a presence entry for the connection. Token, when
// present, is a session JWT that overrides the claimed identity.
type RegisterEvent struct {
	UserID uuid.UUID `json:"userId"`
	Role   Role      `json:"role"`
	Token  string    `json:"token,omitempty"`
}

type ManualVisitorStatusEvent struct {
	VisitID uuid.UUID   `json:"visitId"`
	Status  VisitStatus `json:"status"`
}

type NewManualVisitorEvent struct {
	Guest GuestSummaryWithID `json:"guest"`
	Visit ManualVisitInfo    `json:"visit"`
}

type GuestSummaryWithID struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone string    `json:"phone"`
}

type ManualVisitInfo struct {
	ID         uuid.UUID   `json:"id"`
	FlatID     uuid.UUID   `json:"flat_id"`
	Status     VisitStatus `json:"status"`
	CreatedAt  time.Time   `json:"created_at"`
	FlatNumber string      `json:"flat_number"`
	BlockName  *string     `json:"block_name"`
}

type UserApprovedEvent struct {
	Message   string     `json:"message"`
	Apartment *Apartment `json:"apartment"`
	Flat      *Flat      `json:"flat"`
	Block     *Block     `json:"block"`
}

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
