package notify

import "hostel-occupancy-backend/internal/model"

// OccupantRef is the id+name pair carried in occupancy events.
type OccupantRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event is the message published after a successful check-in or check-out.
type Event struct {
	Type      string           `json:"type"`
	RoomID    string           `json:"roomId"`
	Status    model.RoomStatus `json:"status"`
	Occupants []OccupantRef    `json:"occupants"`
}

// OccupancyChanged builds the event for a room's new state.
func OccupancyChanged(roomID string, status model.RoomStatus, occupants []model.Occupant) Event {
	refs := make([]OccupantRef, len(occupants))
	for i, o := range occupants {
		refs[i] = OccupantRef{ID: o.ID, Name: o.Name}
	}
	return Event{
		Type:      "occupancy_changed",
		RoomID:    roomID,
		Status:    status,
		Occupants: refs,
	}
}
