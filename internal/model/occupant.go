package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Occupant is a student's stay in a room. CheckinAt is set at creation and
// never changes; CheckoutAt is set exactly once. A room change is modeled as
// a checkout followed by a new check-in, never by moving the record.
type Occupant struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID     string     `gorm:"type:uuid;index;not null" json:"roomId"`
	StudentID  string     `gorm:"size:50;not null" json:"studentId"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	Email      string     `gorm:"size:255" json:"email,omitempty"`
	Phone      string     `gorm:"size:20" json:"phone,omitempty"`
	CheckinAt  time.Time  `gorm:"not null" json:"checkinAt"`
	CheckoutAt *time.Time `json:"checkoutAt,omitempty"` // nil means currently active

	// Associations
	Room Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (o *Occupant) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.CheckinAt.IsZero() {
		o.CheckinAt = time.Now().UTC()
	}
	return nil
}

// Active reports whether the occupant has not checked out yet.
func (o *Occupant) Active() bool {
	return o.CheckoutAt == nil
}
