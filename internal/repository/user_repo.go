package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepass/backend/internal/model"
)

// UserRepository handles database operations for User
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user
func (r *UserRepository) Create(user *model.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by UUID
func (r *UserRepository) FindByID(id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPhone finds a user by phone number
func (r *UserRepository) FindByPhone(phone string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindApprovedByRole returns all approved users with the given role
func (r *UserRepository) FindApprovedByRole(role model.Role) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("role = ? AND is_approved = ?", role, true).Find(&users).Error
	return users, err
}

// FirstApprovedResidentByFlat returns the deterministically-first approved
// resident assigned to a flat. Multiple residents may share a flat (cap 4);
// the pick is ordered by registration time, then id, so repeated calls target
// the same resident.
func (r *UserRepository) FirstApprovedResidentByFlat(flatID uuid.UUID) (*model.User, error) {
	var user model.User
	err := r.db.
		Where("flat_id = ? AND role = ? AND is_approved = ?", flatID, model.RoleResident, true).
		Order("created_at ASC, id ASC").
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// CountApprovedResidentsByFlat counts approved residents on a flat (the
// occupancy cap is enforced against this number)
func (r *UserRepository) CountApprovedResidentsByFlat(flatID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).
		Where("flat_id = ? AND role = ? AND is_approved = ?", flatID, model.RoleResident, true).
		Count(&count).Error
	return count, err
}

// ListPendingResidents returns unapproved resident registrations
func (r *UserRepository) ListPendingResidents() ([]model.User, error) {
	var users []model.User
	err := r.db.
		Where("is_approved = ? AND role = ?", false, model.RoleResident).
		Order("created_at ASC").
		Find(&users).Error
	return users, err
}

// Approve marks an unapproved resident as approved. Returns
// gorm.ErrRecordNotFound semantics via zero rows affected.
func (r *UserRepository) Approve(id uuid.UUID) (bool, error) {
	res := r.db.Model(&model.User{}).
		Where("id = ? AND is_approved = ? AND role = ?", id, false, model.RoleResident).
		Update("is_approved", true)
	return res.RowsAffected > 0, res.Error
}

// DeleteUnapproved removes a pending registration
func (r *UserRepository) DeleteUnapproved(id uuid.UUID) (bool, error) {
	res := r.db.Where("id = ? AND is_approved = ?", id, false).Delete(&model.User{})
	return res.RowsAffected > 0, res.Error
}

// Delete removes a user by id
func (r *UserRepository) Delete(id uuid.UUID) (bool, error) {
	res := r.db.Where("id = ?", id).Delete(&model.User{})
	return res.RowsAffected > 0, res.Error
}

// List returns users joined with their flat and block, optionally filtered by
// role and a name/phone search
func (r *UserRepository) List(role, search string) ([]model.AdminUserEntry, error) {
	var entries []model.AdminUserEntry
	q := r.db.Model(&model.User{}).
		Select(`users.id, users.name, users.phone, users.role, users.flat_id,
			users.apartment_id, users.is_approved, users.created_at,
			flats.number AS flat_number, flats.unique_id AS flat_unique_id,
			blocks.name AS block_name`).
		Joins("LEFT JOIN flats ON users.flat_id = flats.id").
		Joins("LEFT JOIN blocks ON flats.block_id = blocks.id")
	if role != "" {
		q = q.Where("users.role = ?", role)
	}
	if search != "" {
		q = q.Where("users.name ILIKE ? OR users.phone ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	err := q.Order("users.created_at DESC").Scan(&entries).Error
	return entries, err
}

// ListGuards returns every security guard account
func (r *UserRepository) ListGuards() ([]model.User, error) {
	var users []model.User
	err := r.db.Where("role = ?", model.RoleSecurity).Order("created_at ASC").Find(&users).Error
	return users, err
}

// UpdateGuard updates a security guard's name and phone
func (r *UserRepository) UpdateGuard(id uuid.UUID, name, phone string) (bool, error) {
	res := r.db.Model(&model.User{}).
		Where("id = ? AND role = ?", id, model.RoleSecurity).
		Updates(map[string]interface{}{"name": name, "phone": phone})
	return res.RowsAffected > 0, res.Error
}

// DeleteGuard removes a security guard account
func (r *UserRepository) DeleteGuard(id uuid.UUID) (bool, error) {
	res := r.db.Where("id = ? AND role = ?", id, model.RoleSecurity).Delete(&model.User{})
	return res.RowsAffected > 0, res.Error
}

// UpdateProfile updates a user's own name and phone
func (r *UserRepository) UpdateProfile(id uuid.UUID, name, phone string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"name": name, "phone": phone}).Error
}

// Update applies admin edits to a user
func (r *UserRepository) Update(id uuid.UUID, updates map[string]interface{}) (*model.User, error) {
	res := r.db.Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindByID(id)
}

// UpdatePassword updates a user's password hash
func (r *UserRepository) UpdatePassword(id uuid.UUID, hashedPassword string) error {
	return r.db.Model(&model.User{}).
		Where("id = ?", id).
		Update("password", hashedPassword).Error
}
