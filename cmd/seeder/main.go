package main

import (
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/gatepass/backend/internal/config"
	"github.com/gatepass/backend/internal/model"
)

func main() {
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	// Common password for all seeded users
	password := "password123"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	apartment := seedApartment(db, "Green Meadows")
	blockA := seedBlock(db, apartment, "A")
	blockB := seedBlock(db, apartment, "B")

	var flats []model.Flat
	for _, block := range []*model.Block{blockA, blockB} {
		for i := 1; i <= 4; i++ {
			number := fmt.Sprintf("10%d", i)
			flats = append(flats, *seedFlat(db, apartment, block, number))
		}
	}

	seedUser(db, &model.User{
		Name:       "Admin",
		Phone:      "9000000001",
		Password:   string(hashedPassword),
		Role:       model.RoleAdmin,
		IsApproved: true,
	})
	seedUser(db, &model.User{
		Name:       "Gate Guard",
		Phone:      "9000000002",
		Password:   string(hashedPassword),
		Role:       model.RoleSecurity,
		IsApproved: true,
	})

	log.Println("🌱 Seeding residents...")
	for i, flat := range flats[:4] {
		flatID := flat.ID
		seedUser(db, &model.User{
			Name:        fmt.Sprintf("Resident %d", i+1),
			Phone:       fmt.Sprintf("90000001%02d", i+1),
			Password:    string(hashedPassword),
			Role:        model.RoleResident,
			ApartmentID: &apartment.ID,
			FlatID:      &flatID,
			IsApproved:  true,
		})
	}

	log.Printf("🎉 Seeding completed! All users share password: %s", password)
}

func seedApartment(db *gorm.DB, name string) *model.Apartment {
	var existing model.Apartment
	if err := db.Where("name = ?", name).First(&existing).Error; err == nil {
		return &existing
	}
	apartment := &model.Apartment{Name: name}
	if err := db.Create(apartment).Error; err != nil {
		log.Fatalf("❌ Failed to create apartment: %v", err)
	}
	log.Printf("✅ Created apartment: %s", name)
	return apartment
}

func seedBlock(db *gorm.DB, apartment *model.Apartment, name string) *model.Block {
	var existing model.Block
	if err := db.Where("apartment_id = ? AND name = ?", apartment.ID, name).First(&existing).Error; err == nil {
		return &existing
	}
	block := &model.Block{Name: name, ApartmentID: apartment.ID}
	if err := db.Create(block).Error; err != nil {
		log.Fatalf("❌ Failed to create block %s: %v", name, err)
	}
	log.Printf("✅ Created block: %s", name)
	return block
}

func seedFlat(db *gorm.DB, apartment *model.Apartment, block *model.Block, number string) *model.Flat {
	uniqueID := block.Name + number
	var existing model.Flat
	if err := db.Where("unique_id = ?", uniqueID).First(&existing).Error; err == nil {
		return &existing
	}
	flat := &model.Flat{
		Number:      number,
		UniqueID:    uniqueID,
		BlockID:     &block.ID,
		ApartmentID: apartment.ID,
	}
	if err := db.Create(flat).Error; err != nil {
		log.Fatalf("❌ Failed to create flat %s: %v", uniqueID, err)
	}
	log.Printf("✅ Created flat: %s", uniqueID)
	return flat
}

func seedUser(db *gorm.DB, user *model.User) {
	var existing model.User
	if err := db.Where("phone = ?", user.Phone).First(&existing).Error; err == nil {
		return
	}
	if err := db.Create(user).Error; err != nil {
		log.Printf("❌ Failed to create user %s: %v", user.Name, err)
		return
	}
	log.Printf("✅ Created %s: %s | Phone: %s", user.Role, user.Name, user.Phone)
}
