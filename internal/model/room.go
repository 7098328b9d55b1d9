package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomStatus is the cached occupancy state of a room. It is derived from the
// active occupant count and never computed ad hoc by readers.
type RoomStatus string

const (
	StatusVacant   RoomStatus = "vacant"
	StatusOccupied RoomStatus = "occupied"
	// StatusReserved exists in the schema for a reservation workflow that is
	// not implemented; nothing transitions a room into it.
	StatusReserved RoomStatus = "reserved"
)

// StatusForActiveCount derives the stored room status from the number of
// occupants with an unset checkout. The schema does not distinguish partially
// occupied from full.
func StatusForActiveCount(n int) RoomStatus {
	if n == 0 {
		return StatusVacant
	}
	return StatusOccupied
}

// Room represents a single room. HostelID is denormalized alongside FloorID
// so room lookups by hostel avoid a join.
type Room struct {
	ID        string     `gorm:"type:uuid;primaryKey" json:"id"`
	HostelID  string     `gorm:"type:uuid;index;not null" json:"hostelId"`
	FloorID   string     `gorm:"type:uuid;index;not null" json:"floorId"`
	Label     string     `gorm:"size:20;not null" json:"label"` // e.g. "101", "202"
	Capacity  int        `gorm:"not null;default:2" json:"capacity"`
	Status    RoomStatus `gorm:"size:16;not null;default:vacant" json:"status"`
	CreatedAt time.Time  `gorm:"not null" json:"-"`
	UpdatedAt time.Time  `gorm:"not null" json:"-"`

	// Associations
	Hostel    Hostel        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Floor     Floor         `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Occupants []Occupant    `gorm:"foreignKey:RoomID" json:"-"`
	History   []RoomHistory `gorm:"foreignKey:RoomID" json:"-"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
