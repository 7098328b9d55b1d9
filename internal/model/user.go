package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is a staff account able to log in to the API.
type User struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	HashedPassword string    `gorm:"size:255" json:"-"`
	Role           string    `gorm:"size:16;not null;default:staff" json:"role"`
	CreatedAt      time.Time `gorm:"not null" json:"-"`
	UpdatedAt      time.Time `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
