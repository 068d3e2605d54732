package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepass/backend/internal/model"
)

// NotificationRepository handles database operations for Notification
type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification row
func (r *NotificationRepository) Create(n *model.Notification) error {
	return r.db.Create(n).Error
}

// ListForUser returns a user's most recent notifications, newest first
func (r *NotificationRepository) ListForUser(userID uuid.UUID, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	var notifications []model.Notification
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

// MarkRead marks the given notifications read, scoped to the owning user so
// one user cannot flip another's read state
func (r *NotificationRepository) MarkRead(userID uuid.UUID, ids []uuid.UUID) error {
	return r.db.Model(&model.Notification{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Update("is_read", true).Error
}
