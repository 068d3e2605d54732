package service

import (
	"errors"
	"net/http"
)

// Service errors carry the exact user-facing message; handlers map them to
// status codes with HTTPStatus.
var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrAccountPending     = errors.New("Account pending approval")
	ErrPhoneRegistered    = errors.New("Phone number already registered")
	ErrApartmentRequired  = errors.New("Apartment selection is required")
	ErrFlatRequired       = errors.New("Flat selection is required")
	ErrInvalidApartment   = errors.New("Invalid apartment selected")
	ErrInvalidFlat        = errors.New("Invalid flat selected or flat does not belong to the selected apartment")
	ErrBlockMismatch      = errors.New("Selected block does not match the flat")
	ErrFlatFull           = errors.New("Flat already has maximum number of residents")
	ErrFlatNowFull        = errors.New("Flat is now full. Cannot approve user.")

	ErrUserNotFound         = errors.New("User not found")
	ErrUserNotPending       = errors.New("User not found or already approved")
	ErrWrongCurrentPassword = errors.New("Current password is incorrect")
	ErrNoFlatAssigned       = errors.New("No flat assigned")
	ErrFlatNotFound         = errors.New("Flat not found")
	ErrBlockNotFound        = errors.New("Block not found")
	ErrApartmentNotFound    = errors.New("Apartment not found")
	ErrResidentNotFound     = errors.New("Resident not found")
	ErrGuardNotFound        = errors.New("Security guard not found")
	ErrFlatNumberTaken      = errors.New("Flat number already exists in this block")
	ErrFlatNumberTakenInApt = errors.New("Flat number already exists in this apartment")
	ErrFlatUniqueIDTaken    = errors.New("Flat unique ID already exists")

	ErrGuestNotFound      = errors.New("Guest not found or not authorized")
	ErrVisitNotFound      = errors.New("Visit not found")
	ErrOnlyPendingEdit    = errors.New("Only pending invites can be edited")
	ErrOnlyPendingCancel  = errors.New("Only pending invites can be cancelled")
	ErrInvalidQRCode      = errors.New("Invalid or already used QR code")
	ErrNotFlatResident    = errors.New("Not authorized for this flat")
	ErrOnlyPendingApprove = errors.New("Only pending invites/visits can be approved")
	ErrOnlyPendingReject  = errors.New("Only pending invites/visits can be rejected")

	ErrPushTokenTooShort = errors.New("Push token is too short")
	ErrPushSendFailed    = errors.New("Failed to send test notification")
)

// HTTPStatus maps a service error to the response status code. Unknown errors
// are internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrWrongCurrentPassword):
		return http.StatusUnauthorized
	case errors.Is(err, ErrAccountPending),
		errors.Is(err, ErrNotFlatResident):
		return http.StatusForbidden
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrUserNotPending),
		errors.Is(err, ErrFlatNotFound),
		errors.Is(err, ErrBlockNotFound),
		errors.Is(err, ErrApartmentNotFound),
		errors.Is(err, ErrResidentNotFound),
		errors.Is(err, ErrGuardNotFound),
		errors.Is(err, ErrGuestNotFound),
		errors.Is(err, ErrVisitNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPhoneRegistered),
		errors.Is(err, ErrApartmentRequired),
		errors.Is(err, ErrFlatRequired),
		errors.Is(err, ErrInvalidApartment),
		errors.Is(err, ErrInvalidFlat),
		errors.Is(err, ErrBlockMismatch),
		errors.Is(err, ErrFlatFull),
		errors.Is(err, ErrFlatNowFull),
		errors.Is(err, ErrNoFlatAssigned),
		errors.Is(err, ErrFlatNumberTaken),
		errors.Is(err, ErrFlatNumberTakenInApt),
		errors.Is(err, ErrFlatUniqueIDTaken),
		errors.Is(err, ErrOnlyPendingEdit),
		errors.Is(err, ErrOnlyPendingCancel),
		errors.Is(err, ErrInvalidQRCode),
		errors.Is(err, ErrOnlyPendingApprove),
		errors.Is(err, ErrOnlyPendingReject),
		errors.Is(err, ErrPushTokenTooShort):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
