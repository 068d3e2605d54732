package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/pkg/ticket"
)

// VisitStore persists guests and visits, including the conditional updates
// that make visit transitions atomic
type VisitStore interface {
	CreateGuestAndVisit(guest *model.Guest, visit *model.Visit) error
	FindGuestByID(id uuid.UUID) (*model.Guest, error)
	LatestVisitByGuest(guestID uuid.UUID) (*model.Visit, error)
	FindVisitByID(id uuid.UUID) (*model.Visit, error)
	UpdateGuestContact(id uuid.UUID, name, phone string) error
	UpdateVisitDetails(id uuid.UUID, purpose string, expectedArrival *time.Time) error
	DeleteVisitAndGuest(visitID, guestID uuid.UUID) error
	ConsumeTicket(qrToken string, securityID uuid.UUID, at time.Time) (*model.Visit, bool, error)
	TransitionManualVisit(id uuid.UUID, to model.VisitStatus, checkedInAt *time.Time) (bool, error)
	ListGuestLog(residentID uuid.UUID, q model.GuestListQuery) ([]model.GuestLogEntry, error)
	ListVisitLog(q model.VisitLogQuery) ([]model.VisitLogEntry, error)
	ListManualPending(flatID uuid.UUID) ([]model.ManualPendingEntry, error)
}

// FlatStore resolves destination flats and their blocks
type FlatStore interface {
	FindFlatByID(id uuid.UUID) (*model.Flat, error)
	FindBlockByID(id uuid.UUID) (*model.Block, error)
}

// ResidentDirectory resolves the users a transition must inform
type ResidentDirectory interface {
	FirstApprovedResidentByFlat(flatID uuid.UUID) (*model.User, error)
	FindApprovedByRole(role model.Role) ([]model.User, error)
}

// VisitNotifier is the slice of the notifier the state machine drives
type VisitNotifier interface {
	NotifyNewVisitor(ctx context.Context, residentID uuid.UUID, guestName, flatNumber string) *model.Notification
	NotifyVisitApproved(ctx context.Context, securityID uuid.UUID, guestName, flatNumber string) *model.Notification
	NotifyManualVisitor(ctx context.Context, residentID uuid.UUID, guestName, flatNumber string) *model.Notification
	PushToUser(ctx context.Context, userID uuid.UUID, title, body string, data map[string]string)
}

// VisitService is the authoritative visit lifecycle: invited or
// manually-signed-in visits move from pending to checked_in or rejected,
// each transition gated on the acting user and the visit's current state.
// All notification fan-out happens after the primary write commits and never
// affects the transition's outcome.
type VisitService struct {
	visits   VisitStore
	flats    FlatStore
	users    ResidentDirectory
	codec    *ticket.Codec
	notifier VisitNotifier
	presence Presence
}

func NewVisitService(
	visits VisitStore,
	flats FlatStore,
	users ResidentDirectory,
	codec *ticket.Codec,
	notifier VisitNotifier,
	presence Presence,
) *VisitService {
	return &VisitService{
		visits:   visits,
		flats:    flats,
		users:    users,
		codec:    codec,
		notifier: notifier,
		presence: presence,
	}
}

// ==================== Resident invite flow ====================

// Invite creates a guest and a pending visit carrying a signed QR ticket for
// the resident's own flat
func (s *VisitService) Invite(ctx context.Context, residentID uuid.UUID, flatID *uuid.UUID, req model.InviteGuestRequest) (*model.InviteGuestResponse, error) {
	if flatID == nil {
		return nil, ErrNoFlatAssigned
	}
	flat, err := s.flats.FindFlatByID(*flatID)
	if err != nil {
		return nil, ErrFlatNotFound
	}

	guest := &model.Guest{
		Name:      req.Name,
		Phone:     req.Phone,
		InvitedBy: &residentID,
	}

	purpose := req.Purpose
	visit := &model.Visit{
		ID:              uuid.New(),
		FlatID:          flat.ID,
		Status:          model.VisitStatusPending,
		Origin:          model.VisitOriginInvited,
		Purpose:         &purpose,
		ExpectedArrival: req.ExpectedArrival,
	}

	qrToken, err := s.codec.Issue(visit.ID, guest.Name, flat.Number)
	if err != nil {
		return nil, err
	}
	visit.QRToken = &qrToken

	if err := s.visits.CreateGuestAndVisit(guest, visit); err != nil {
		return nil, err
	}

	s.notifier.NotifyNewVisitor(ctx, residentID, guest.Name, flat.Number)

	return &model.InviteGuestResponse{
		QRToken: qrToken,
		Guest:   model.GuestSummary{Name: guest.Name, Phone: guest.Phone},
		Visit: model.InvitedVisit{
			Purpose:         req.Purpose,
			ExpectedArrival: req.ExpectedArrival,
			Status:          visit.Status,
		},
	}, nil
}

// EditInvite updates a pending invite. Only the original inviter may edit,
// and only while the guest's latest visit is still pending.
func (s *VisitService) EditInvite(ctx context.Context, residentID, guestID uuid.UUID, req model.UpdateInviteRequest) error {
	visit, err := s.pendingInviteFor(residentID, guestID)
	if err != nil {
		if errors.Is(err, ErrVisitNotFound) {
			return ErrGuestNotFound
		}
		if errors.Is(err, errNotPending) {
			return ErrOnlyPendingEdit
		}
		return err
	}

	if err := s.visits.UpdateGuestContact(guestID, req.Name, req.Phone); err != nil {
		return err
	}
	return s.visits.UpdateVisitDetails(visit.ID, req.Purpose, req.ExpectedArrival)
}

// CancelInvite deletes a pending invite's visit, then its guest
func (s *VisitService) CancelInvite(ctx context.Context, residentID, guestID uuid.UUID) error {
	visit, err := s.pendingInviteFor(residentID, guestID)
	if err != nil {
		if errors.Is(err, ErrVisitNotFound) {
			return ErrGuestNotFound
		}
		if errors.Is(err, errNotPending) {
			return ErrOnlyPendingCancel
		}
		return err
	}
	return s.visits.DeleteVisitAndGuest(visit.ID, guestID)
}

var errNotPending = errors.New("visit is not pending")

// pendingInviteFor authorizes a resident against a guest's latest visit.
// A guest with no visits at all reads as not found.
func (s *VisitService) pendingInviteFor(residentID, guestID uuid.UUID) (*model.Visit, error) {
	guest, err := s.visits.FindGuestByID(guestID)
	if err != nil || guest.InvitedBy == nil || *guest.InvitedBy != residentID {
		return nil, ErrGuestNotFound
	}
	visit, err := s.visits.LatestVisitByGuest(guestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisitNotFound
		}
		return nil, err
	}
	if visit.Status != model.VisitStatusPending {
		return nil, errNotPending
	}
	return visit, nil
}

// ListGuests returns a resident's invite log
func (s *VisitService) ListGuests(residentID uuid.UUID, q model.GuestListQuery) ([]model.GuestLogEntry, error) {
	return s.visits.ListGuestLog(residentID, q)
}

// ==================== Check-in (QR scan) ====================

// CheckIn consumes a QR ticket at the gate. Verification failure and an
// already-used ticket collapse into the same error so a caller cannot tell
// which guard rejected it. Exactly one of two concurrent attempts with the
// same ticket succeeds.
func (s *VisitService) CheckIn(ctx context.Context, securityID uuid.UUID, qrToken string) (*model.CheckInResponse, error) {
	claims, err := s.codec.Verify(qrToken)
	if err != nil {
		return nil, ErrInvalidQRCode
	}

	// Load everything the response needs before touching the visit row. A
	// read failure after the transition commits would report the check-in
	// as failed while the ticket is already spent.
	visit, err := s.visits.FindVisitByID(claims.VisitID)
	if err != nil {
		return nil, ErrInvalidQRCode
	}
	guest, err := s.visits.FindGuestByID(visit.GuestID)
	if err != nil {
		return nil, err
	}
	flat, err := s.flats.FindFlatByID(visit.FlatID)
	if err != nil {
		return nil, err
	}

	_, consumed, err := s.visits.ConsumeTicket(qrToken, securityID, time.Now())
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrInvalidQRCode
	}

	// Side effects after the commit: best-effort only
	s.notifySecurityCheckedIn(ctx, guest.Name, flat.Number)
	s.presence.BroadcastToRole(model.RoleSecurity, model.WSEventVisitorLogUpdate, model.ManualVisitorStatusEvent{
		VisitID: visit.ID,
		Status:  model.VisitStatusCheckedIn,
	})

	if resident, err := s.users.FirstApprovedResidentByFlat(flat.ID); err == nil {
		s.notifier.PushToUser(ctx, resident.ID, "Guest Checked In",
			"Your guest "+guest.Name+" has checked in at Flat "+flat.Number,
			map[string]string{
				"type":       "guest_checked_in",
				"guestName":  guest.Name,
				"flatNumber": flat.Number,
			})
	}

	return &model.CheckInResponse{
		Message:    "Check-in successful",
		GuestName:  guest.Name,
		FlatNumber: flat.Number,
	}, nil
}

// ==================== Manual sign-in flow ====================

// ManualSignIn records a walk-in guest at the gate desk and asks the flat's
// resident to approve. Public: the gate kiosk is unauthenticated.
func (s *VisitService) ManualSignIn(ctx context.Context, req model.ManualSignInRequest) error {
	resident, err := s.users.FirstApprovedResidentByFlat(req.FlatID)
	if err != nil {
		return ErrResidentNotFound
	}
	flat, err := s.flats.FindFlatByID(req.FlatID)
	if err != nil {
		return ErrFlatNotFound
	}
	var blockName *string
	if flat.BlockID != nil {
		if block, err := s.flats.FindBlockByID(*flat.BlockID); err == nil {
			blockName = &block.Name
		}
	}

	guest := &model.Guest{
		Name:  req.Name,
		Phone: req.Phone,
	}
	visit := &model.Visit{
		ID:     uuid.New(),
		FlatID: flat.ID,
		Status: model.VisitStatusPending,
		Origin: model.VisitOriginManual,
	}
	if err := s.visits.CreateGuestAndVisit(guest, visit); err != nil {
		return err
	}

	s.notifier.NotifyManualVisitor(ctx, resident.ID, guest.Name, flat.Number)
	s.presence.SendToUser(resident.ID, model.WSEventNewManualVisitor, model.NewManualVisitorEvent{
		Guest: model.GuestSummaryWithID{ID: guest.ID, Name: guest.Name, Phone: guest.Phone},
		Visit: model.ManualVisitInfo{
			ID:         visit.ID,
			FlatID:     flat.ID,
			Status:     visit.Status,
			CreatedAt:  visit.CreatedAt,
			FlatNumber: flat.Number,
			BlockName:  blockName,
		},
	})

	return nil
}

// ApproveManual checks in a pending manual sign-in. Only a resident of the
// destination flat may approve, and only while the visit is pending.
func (s *VisitService) ApproveManual(ctx context.Context, residentID uuid.UUID, residentFlatID *uuid.UUID, visitID uuid.UUID) error {
	visit, guest, err := s.authorizeManualTransition(residentFlatID, visitID, ErrOnlyPendingApprove)
	if err != nil {
		return err
	}
	flat, err := s.flats.FindFlatByID(visit.FlatID)
	if err != nil {
		return ErrFlatNotFound
	}

	now := time.Now()
	ok, err := s.visits.TransitionManualVisit(visitID, model.VisitStatusCheckedIn, &now)
	if err != nil {
		return err
	}
	if !ok {
		// Lost a race against another approve/reject
		return ErrOnlyPendingApprove
	}

	s.notifySecurityCheckedIn(ctx, guest.Name, flat.Number)
	s.presence.BroadcastToRole(model.RoleSecurity, model.WSEventManualVisitorStatus, model.ManualVisitorStatusEvent{
		VisitID: visitID,
		Status:  model.VisitStatusCheckedIn,
	})
	s.presence.BroadcastToRole(model.RoleSecurity, model.WSEventRefreshVisitorLog, nil)
	s.presence.SendToUser(residentID, model.WSEventManualStatusUpdate, model.ManualVisitorStatusEvent{
		VisitID: visitID,
		Status:  model.VisitStatusCheckedIn,
	})

	return nil
}

// RejectManual rejects a pending manual sign-in. Terminal: the visit can
// never be approved afterwards.
func (s *VisitService) RejectManual(ctx context.Context, residentID uuid.UUID, residentFlatID *uuid.UUID, visitID uuid.UUID) error {
	visit, _, err := s.authorizeManualTransition(residentFlatID, visitID, ErrOnlyPendingReject)
	if err != nil {
		return err
	}

	ok, err := s.visits.TransitionManualVisit(visit.ID, model.VisitStatusRejected, nil)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOnlyPendingReject
	}

	s.presence.BroadcastToRole(model.RoleSecurity, model.WSEventManualVisitorStatus, model.ManualVisitorStatusEvent{
		VisitID: visitID,
		Status:  model.VisitStatusRejected,
	})
	s.presence.SendToUser(residentID, model.WSEventManualStatusUpdate, model.ManualVisitorStatusEvent{
		VisitID: visitID,
		Status:  model.VisitStatusRejected,
	})

	return nil
}

// authorizeManualTransition loads a visit and enforces the shared guards of
// approve/reject: the visit exists, the actor lives on its flat, it came from
// a manual sign-in and is still pending.
func (s *VisitService) authorizeManualTransition(residentFlatID *uuid.UUID, visitID uuid.UUID, notPending error) (*model.Visit, *model.Guest, error) {
	visit, err := s.visits.FindVisitByID(visitID)
	if err != nil {
		return nil, nil, ErrVisitNotFound
	}
	if residentFlatID == nil || visit.FlatID != *residentFlatID {
		return nil, nil, ErrNotFlatResident
	}
	if visit.Status != model.VisitStatusPending || visit.Origin != model.VisitOriginManual {
		return nil, nil, notPending
	}
	guest, err := s.visits.FindGuestByID(visit.GuestID)
	if err != nil {
		return nil, nil, ErrGuestNotFound
	}
	return visit, guest, nil
}

// ManualPending lists a resident's pending walk-in requests
func (s *VisitService) ManualPending(flatID *uuid.UUID) ([]model.ManualPendingEntry, error) {
	if flatID == nil {
		return nil, ErrNoFlatAssigned
	}
	if _, err := s.flats.FindFlatByID(*flatID); err != nil {
		return nil, ErrFlatNotFound
	}
	return s.visits.ListManualPending(*flatID)
}

// VisitLog returns the filtered visitor log for security/admin
func (s *VisitService) VisitLog(q model.VisitLogQuery) ([]model.VisitLogEntry, error) {
	return s.visits.ListVisitLog(q)
}

// notifySecurityCheckedIn dispatches the checked-in notification to every
// approved security user, swallowing lookup failure
func (s *VisitService) notifySecurityCheckedIn(ctx context.Context, guestName, flatNumber string) {
	guards, err := s.users.FindApprovedByRole(model.RoleSecurity)
	if err != nil {
		log.Printf("security notification skipped: %v", err)
		return
	}
	for _, guard := range guards {
		s.notifier.NotifyVisitApproved(ctx, guard.ID, guestName, flatNumber)
	}
}
