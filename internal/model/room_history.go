package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// History change types.
const (
	ChangeCheckin  = "checkin"
	ChangeCheckout = "checkout"
)

// HistoryPayload is the snapshot stored with every history entry.
type HistoryPayload struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
}

// RoomHistory is an append-only audit record of a single check-in or
// check-out. Rows are written inside the same transaction as the state
// change and are never updated or deleted.
type RoomHistory struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID     string    `gorm:"type:uuid;index;not null" json:"roomId"`
	ChangeType string    `gorm:"size:50;not null" json:"changeType"`
	Payload    []byte    `gorm:"type:jsonb" json:"payload"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`

	// Associations
	Room Room `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (h *RoomHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	return nil
}

// DecodePayload unmarshals the stored payload snapshot.
func (h *RoomHistory) DecodePayload() (HistoryPayload, error) {
	var p HistoryPayload
	err := json.Unmarshal(h.Payload, &p)
	return p, err
}
