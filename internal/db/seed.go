package db

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"hostel-occupancy-backend/config"
	"hostel-occupancy-backend/internal/auth"
	"hostel-occupancy-backend/internal/model"
)

// SeedAdmin creates the initial admin account when no admin exists yet.
func SeedAdmin(db *gorm.DB, cfg *config.AuthConfig) error {
	var count int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	email := cfg.AdminEmail
	if email == "" {
		email = "warden@university.edu"
	}
	name := cfg.AdminName
	if name == "" {
		name = "Admin Warden"
	}
	if cfg.AdminPassword == "" {
		return fmt.Errorf("auth.admin_password must be set to seed the initial admin")
	}

	hashed, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:          email,
		Name:           name,
		HashedPassword: hashed,
		Role:           model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Println("Seeded initial admin:", email)
	return nil
}
