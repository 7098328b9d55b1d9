package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hostel represents a hostel building.
type Hostel struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Code      string    `gorm:"uniqueIndex;size:10;not null" json:"code"` // e.g. "A", "B", "H"
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	// Associations
	Floors []Floor `gorm:"foreignKey:HostelID" json:"-"`
	Rooms  []Room  `gorm:"foreignKey:HostelID" json:"-"`
}

func (h *Hostel) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// Floor represents a single floor of a hostel.
type Floor struct {
	ID          string `gorm:"type:uuid;primaryKey" json:"id"`
	HostelID    string `gorm:"type:uuid;index:idx_floors_hostel_number,unique;not null" json:"hostelId"`
	FloorNumber int    `gorm:"index:idx_floors_hostel_number,unique;not null" json:"floorNumber"`

	// Associations
	Hostel Hostel `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Rooms  []Room `gorm:"foreignKey:FloorID" json:"-"`
}

func (f *Floor) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
