package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Program is an academic program students can belong to.
type Program struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Code      string    `gorm:"size:50" json:"code,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
}

func (p *Program) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Student is the registry record for a student, independent of any stay.
// StudentID is the external identifier used on occupants and history
// payloads.
type Student struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID  string    `gorm:"uniqueIndex;size:50;not null" json:"studentId"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	Email      string    `gorm:"size:255" json:"email,omitempty"`
	Phone      string    `gorm:"size:20" json:"phone,omitempty"`
	RollNumber string    `gorm:"size:50" json:"rollNumber,omitempty"`
	ProgramID  *string   `gorm:"type:uuid" json:"programId,omitempty"`
	Year       *int      `json:"year,omitempty"`
	HostelID   *string   `gorm:"type:uuid" json:"hostelId,omitempty"`
	RoomID     *string   `gorm:"type:uuid" json:"roomId,omitempty"`
	CreatedAt  time.Time `gorm:"not null" json:"-"`

	// Associations
	Program *Program `json:"-"`
	Hostel  *Hostel  `json:"-"`
	Room    *Room    `json:"-"`
}

func (s *Student) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
