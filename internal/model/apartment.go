package model

import (
	"time"

	"github.com/google/uuid"
)

// Apartment is the top of the housing hierarchy: apartment -> blocks -> flats
type Apartment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Block groups flats inside an apartment. Flats may also attach directly
// to an apartment with no block.
type Block struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `json:"name" gorm:"size:50;not null"`
	ApartmentID uuid.UUID `json:"apartment_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Flat is the destination of every visit. UniqueID is the human-facing
// identifier shown on passes (block name + number, or the bare number for
// flats without a block).
type Flat struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number      string     `json:"number" gorm:"size:20;not null"`
	UniqueID    string     `json:"unique_id" gorm:"uniqueIndex;size:70;not null"`
	BlockID     *uuid.UUID `json:"block_id" gorm:"type:uuid;index"`
	ApartmentID uuid.UUID  `json:"apartment_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
