package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gatepass/backend/internal/model"
)

// PushTokenRepository handles database operations for push endpoints
type PushTokenRepository struct {
	db *gorm.DB
}

func NewPushTokenRepository(db *gorm.DB) *PushTokenRepository {
	return &PushTokenRepository{db: db}
}

// Register records a push token for a user. The whole reassignment sequence
// runs in one transaction so two concurrent registrations of the same token
// value converge on a single active owner:
//  1. deactivate the token under any other user,
//  2. upsert by token value (the token survives login/logout across accounts
//     on a shared device),
//  3. drop the user's other inactive rows.
func (r *PushTokenRepository) Register(userID uuid.UUID, token, deviceType string) error {
	if deviceType == "" {
		deviceType = "web"
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.PushToken{}).
			Where("token = ? AND user_id != ?", token, userID).
			Update("is_active", false).Error; err != nil {
			return err
		}

		record := model.PushToken{
			UserID:     userID,
			Token:      token,
			DeviceType: deviceType,
			IsActive:   true,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "token"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"user_id":     userID,
				"device_type": deviceType,
				"is_active":   true,
			}),
		}).Create(&record).Error; err != nil {
			return err
		}

		return tx.Where("user_id = ? AND is_active = ? AND token != ?", userID, false, token).
			Delete(&model.PushToken{}).Error
	})
}

// Unregister marks a token inactive. Idempotent: unknown or already-inactive
// tokens are a successful no-op.
func (r *PushTokenRepository) Unregister(token string) error {
	return r.db.Model(&model.PushToken{}).
		Where("token = ?", token).
		Update("is_active", false).Error
}

// DeactivateAll bulk-deactivates tokens the push gateway reported permanently
// dead, returning how many rows changed
func (r *PushTokenRepository) DeactivateAll(tokens []string) (int64, error) {
	if len(tokens) == 0 {
		return 0, nil
	}
	res := r.db.Model(&model.PushToken{}).
		Where("token IN ?", tokens).
		Update("is_active", false)
	return res.RowsAffected, res.Error
}

// ActiveTokensForUser returns every active push endpoint for a user
func (r *PushTokenRepository) ActiveTokensForUser(userID uuid.UUID) ([]model.PushToken, error) {
	var tokens []model.PushToken
	err := r.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&tokens).Error
	return tokens, err
}
