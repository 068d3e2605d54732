package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepass/backend/internal/model"
)

// VisitRepository handles database operations for guests and their visits
type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// CreateGuestAndVisit inserts a guest and its first visit in one transaction
func (r *VisitRepository) CreateGuestAndVisit(guest *model.Guest, visit *model.Visit) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(guest).Error; err != nil {
			return err
		}
		visit.GuestID = guest.ID
		return tx.Create(visit).Error
	})
}

// FindGuestByID finds a guest by id
func (r *VisitRepository) FindGuestByID(id uuid.UUID) (*model.Guest, error) {
	var guest model.Guest
	if err := r.db.Where("id = ?", id).First(&guest).Error; err != nil {
		return nil, err
	}
	return &guest, nil
}

// LatestVisitByGuest returns the authoritative (most recent) visit for a guest
func (r *VisitRepository) LatestVisitByGuest(guestID uuid.UUID) (*model.Visit, error) {
	var visit model.Visit
	err := r.db.
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		First(&visit).Error
	if err != nil {
		return nil, err
	}
	return &visit, nil
}

// FindVisitByID finds a visit by id
func (r *VisitRepository) FindVisitByID(id uuid.UUID) (*model.Visit, error) {
	var visit model.Visit
	if err := r.db.Where("id = ?", id).First(&visit).Error; err != nil {
		return nil, err
	}
	return &visit, nil
}

// UpdateGuestContact updates a guest's editable fields
func (r *VisitRepository) UpdateGuestContact(id uuid.UUID, name, phone string) error {
	return r.db.Model(&model.Guest{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "phone": phone}).Error
}

// UpdateVisitDetails updates a pending visit's purpose and expected arrival
func (r *VisitRepository) UpdateVisitDetails(id uuid.UUID, purpose string, expectedArrival *time.Time) error {
	return r.db.Model(&model.Visit{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"purpose":          purpose,
			"expected_arrival": expectedArrival,
		}).Error
}

// DeleteVisitAndGuest removes a cancelled invite's visit, then its guest
func (r *VisitRepository) DeleteVisitAndGuest(visitID, guestID uuid.UUID) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", visitID).Delete(&model.Visit{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", guestID).Delete(&model.Guest{}).Error
	})
}

// ConsumeTicket atomically checks in the visit holding the given QR token.
// The conditional update is the single-use guarantee: of two concurrent
// attempts with the same token exactly one sees RowsAffected == 1. Returns
// the checked-in visit, or consumed == false when the token is unknown,
// already used, or the visit is not pending.
func (r *VisitRepository) ConsumeTicket(qrToken string, securityID uuid.UUID, at time.Time) (*model.Visit, bool, error) {
	res := r.db.Model(&model.Visit{}).
		Where("qr_token = ? AND status = ? AND is_qr_used = ?", qrToken, model.VisitStatusPending, false).
		Updates(map[string]interface{}{
			"status":        model.VisitStatusCheckedIn,
			"is_qr_used":    true,
			"checked_by":    securityID,
			"checked_in_at": at,
		})
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, false, nil
	}

	var visit model.Visit
	if err := r.db.Where("qr_token = ?", qrToken).First(&visit).Error; err != nil {
		return nil, false, err
	}
	return &visit, true, nil
}

// TransitionManualVisit moves a pending manual visit to a terminal status.
// Guarded on the prior state so concurrent approve/reject attempts cannot
// both succeed.
func (r *VisitRepository) TransitionManualVisit(id uuid.UUID, to model.VisitStatus, checkedInAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if checkedInAt != nil {
		updates["checked_in_at"] = *checkedInAt
	}
	res := r.db.Model(&model.Visit{}).
		Where("id = ? AND status = ? AND origin = ?", id, model.VisitStatusPending, model.VisitOriginManual).
		Updates(updates)
	return res.RowsAffected > 0, res.Error
}

// ListGuestLog returns a resident's invited guests joined with their latest
// visit and destination flat
func (r *VisitRepository) ListGuestLog(residentID uuid.UUID, q model.GuestListQuery) ([]model.GuestLogEntry, error) {
	var entries []model.GuestLogEntry
	query := r.db.Model(&model.Guest{}).
		Select(`guests.id, guests.name, guests.phone, visits.status, visits.purpose,
			visits.expected_arrival, visits.checked_in_at, visits.qr_token, visits.created_at,
			flats.number AS flat_number, flats.unique_id AS flat_unique_id,
			blocks.name AS block_name`).
		Joins("JOIN visits ON guests.id = visits.guest_id").
		Joins("JOIN flats ON visits.flat_id = flats.id").
		Joins("LEFT JOIN blocks ON flats.block_id = blocks.id").
		Where("guests.invited_by = ?", residentID)
	if q.Status != "" {
		query = query.Where("visits.status = ?", q.Status)
	}
	if q.Search != "" {
		query = query.Where("guests.name ILIKE ? OR guests.phone ILIKE ?", "%"+q.Search+"%", "%"+q.Search+"%")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	err := query.
		Order("visits.created_at DESC").
		Limit(limit).
		Offset(q.Offset).
		Scan(&entries).Error
	return entries, err
}

// ListVisitLog returns the full visitor log for security/admin with
// date/status/search filters
func (r *VisitRepository) ListVisitLog(q model.VisitLogQuery) ([]model.VisitLogEntry, error) {
	var entries []model.VisitLogEntry
	query := r.db.Model(&model.Visit{}).
		Select(`visits.id, guests.name, guests.phone, flats.number AS flat_number,
			visits.status, visits.origin, visits.purpose, visits.expected_arrival,
			visits.checked_in_at, visits.created_at`).
		Joins("JOIN guests ON visits.guest_id = guests.id").
		Joins("JOIN flats ON visits.flat_id = flats.id")
	if q.Status != "" {
		query = query.Where("visits.status = ?", q.Status)
	}
	switch q.Filter {
	case "today":
		query = query.Where("visits.created_at >= ?", startOfDay(time.Now()))
	case "week":
		query = query.Where("visits.created_at >= ?", time.Now().AddDate(0, 0, -7))
	case "month":
		query = query.Where("visits.created_at >= ?", time.Now().AddDate(0, -1, 0))
	}
	if q.Search != "" {
		query = query.Where("guests.name ILIKE ? OR guests.phone ILIKE ?", "%"+q.Search+"%", "%"+q.Search+"%")
	}
	err := query.Order("visits.created_at DESC").Scan(&entries).Error
	return entries, err
}

// ListManualPending returns the pending manual sign-ins for a flat
func (r *VisitRepository) ListManualPending(flatID uuid.UUID) ([]model.ManualPendingEntry, error) {
	var entries []model.ManualPendingEntry
	err := r.db.Model(&model.Visit{}).
		Select(`visits.id AS visit_id, guests.id AS guest_id, guests.name, guests.phone,
			visits.status, visits.created_at,
			flats.number AS flat_number, flats.unique_id AS flat_unique_id`).
		Joins("JOIN guests ON visits.guest_id = guests.id").
		Joins("JOIN flats ON visits.flat_id = flats.id").
		Where("visits.flat_id = ? AND visits.status = ? AND visits.origin = ?",
			flatID, model.VisitStatusPending, model.VisitOriginManual).
		Order("visits.created_at DESC").
		Scan(&entries).Error
	return entries, err
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
