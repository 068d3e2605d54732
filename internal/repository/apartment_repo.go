package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gatepass/backend/internal/model"
)

// ApartmentRepository handles the apartment -> block -> flat hierarchy
type ApartmentRepository struct {
	db *gorm.DB
}

func NewApartmentRepository(db *gorm.DB) *ApartmentRepository {
	return &ApartmentRepository{db: db}
}

// ==================== Apartments ====================

func (r *ApartmentRepository) CreateApartment(a *model.Apartment) error {
	return r.db.Create(a).Error
}

func (r *ApartmentRepository) FindApartmentByID(id uuid.UUID) (*model.Apartment, error) {
	var a model.Apartment
	if err := r.db.Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApartmentRepository) ListApartments() ([]model.Apartment, error) {
	var apartments []model.Apartment
	err := r.db.Order("name ASC").Find(&apartments).Error
	return apartments, err
}

func (r *ApartmentRepository) UpdateApartment(id uuid.UUID, name string) (*model.Apartment, error) {
	res := r.db.Model(&model.Apartment{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindApartmentByID(id)
}

func (r *ApartmentRepository) DeleteApartment(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&model.Apartment{}).Error
}

// ==================== Blocks ====================

func (r *ApartmentRepository) CreateBlock(b *model.Block) error {
	return r.db.Create(b).Error
}

func (r *ApartmentRepository) FindBlockByID(id uuid.UUID) (*model.Block, error) {
	var b model.Block
	if err := r.db.Where("id = ?", id).First(&b).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *ApartmentRepository) ListBlocksByApartment(apartmentID uuid.UUID) ([]model.Block, error) {
	var blocks []model.Block
	err := r.db.Where("apartment_id = ?", apartmentID).Order("name ASC").Find(&blocks).Error
	return blocks, err
}

func (r *ApartmentRepository) UpdateBlock(id uuid.UUID, name string) (*model.Block, error) {
	res := r.db.Model(&model.Block{}).Where("id = ?", id).Update("name", name)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindBlockByID(id)
}

func (r *ApartmentRepository) DeleteBlock(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&model.Block{}).Error
}

// ==================== Flats ====================

func (r *ApartmentRepository) CreateFlat(f *model.Flat) error {
	return r.db.Create(f).Error
}

func (r *ApartmentRepository) FindFlatByID(id uuid.UUID) (*model.Flat, error) {
	var f model.Flat
	if err := r.db.Where("id = ?", id).First(&f).Error; err != nil {
		return nil, err
	}
	return &f, nil
}

// FlatNumberExistsInBlock checks flat-number uniqueness within a block,
// excluding a flat being edited
func (r *ApartmentRepository) FlatNumberExistsInBlock(blockID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.Model(&model.Flat{}).Where("block_id = ? AND number = ?", blockID, number)
	if excludeID != nil {
		q = q.Where("id != ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// FlatNumberExistsInApartment checks flat-number uniqueness for flats attached
// directly to an apartment
func (r *ApartmentRepository) FlatNumberExistsInApartment(apartmentID uuid.UUID, number string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.Model(&model.Flat{}).Where("apartment_id = ? AND number = ?", apartmentID, number)
	if excludeID != nil {
		q = q.Where("id != ?", *excludeID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// UniqueIDExists checks global uniqueness of a flat's human-facing identifier
func (r *ApartmentRepository) UniqueIDExists(uniqueID string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Flat{}).Where("unique_id = ?", uniqueID).Count(&count).Error
	return count > 0, err
}

func (r *ApartmentRepository) ListFlatsByBlock(blockID uuid.UUID) ([]model.Flat, error) {
	var flats []model.Flat
	err := r.db.Where("block_id = ?", blockID).Order("number ASC").Find(&flats).Error
	return flats, err
}

func (r *ApartmentRepository) ListFlatsByApartment(apartmentID uuid.UUID) ([]model.Flat, error) {
	var flats []model.Flat
	err := r.db.Where("apartment_id = ?", apartmentID).Order("number ASC").Find(&flats).Error
	return flats, err
}

// ListFlats returns all flats, optionally filtered by apartment
func (r *ApartmentRepository) ListFlats(apartmentID *uuid.UUID) ([]model.Flat, error) {
	var flats []model.Flat
	q := r.db.Order("number ASC")
	if apartmentID != nil {
		q = q.Where("apartment_id = ?", *apartmentID)
	}
	err := q.Find(&flats).Error
	return flats, err
}

// UpdateFlat renames a flat; unique_id follows the number
func (r *ApartmentRepository) UpdateFlat(id uuid.UUID, number, uniqueID string) (*model.Flat, error) {
	res := r.db.Model(&model.Flat{}).Where("id = ?", id).
		Updates(map[string]interface{}{"number": number, "unique_id": uniqueID})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.FindFlatByID(id)
}

func (r *ApartmentRepository) DeleteFlat(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&model.Flat{}).Error
}
