package store

import "errors"

// Caller-correctable errors surfaced to the API layer.
var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrOccupantNotFound  = errors.New("occupant not found")
	ErrCapacityExceeded  = errors.New("room is at full capacity")
	ErrAlreadyCheckedOut = errors.New("occupant already checked out")
)

// OccupantData is the input for a check-in.
type OccupantData struct {
	StudentID string
	Name      string
	Email     string
	Phone     string
}
