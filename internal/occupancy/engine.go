// Package occupancy holds the room-state transition logic: check-in and
// check-out drive the cached room status, the append-only history log and a
// best-effort occupancy event.
package occupancy

import (
	"context"
	"errors"
	"strings"

	"hostel-occupancy-backend/internal/metrics"
	"hostel-occupancy-backend/internal/model"
	"hostel-occupancy-backend/internal/notify"
	"hostel-occupancy-backend/internal/store"
)

// ErrMissingFields rejects a check-in without a student identifier or name.
var ErrMissingFields = errors.New("student id and name are required")

// Dispatcher hands a committed state change to the notification pipeline
// without blocking the caller.
type Dispatcher interface {
	Dispatch(event notify.Event)
}

// Engine maintains the room/occupant/history invariants and notifies
// listeners of state changes. It holds no state of its own; everything
// shared lives in the store.
type Engine struct {
	store      store.Store
	dispatcher Dispatcher
}

// NewEngine creates an engine with explicit dependencies. dispatcher may be
// nil when no notification channel is configured.
func NewEngine(s store.Store, dispatcher Dispatcher) *Engine {
	return &Engine{store: s, dispatcher: dispatcher}
}

// CheckIn validates the occupant data and performs the atomic check-in.
// On success it emits one occupancy event and returns the created occupant.
func (e *Engine) CheckIn(ctx context.Context, roomID string, data store.OccupantData) (model.Occupant, error) {
	data.StudentID = strings.TrimSpace(data.StudentID)
	data.Name = strings.TrimSpace(data.Name)
	if data.StudentID == "" || data.Name == "" {
		return model.Occupant{}, ErrMissingFields
	}

	occupant, state, err := e.store.CheckIn(ctx, roomID, data)
	if err != nil {
		return model.Occupant{}, err
	}
	metrics.CheckIns.Inc()
	e.emit(state)
	return occupant, nil
}

// CheckOut performs the atomic check-out and emits one occupancy event
// carrying the post-checkout occupant list.
func (e *Engine) CheckOut(ctx context.Context, roomID, occupantID string) error {
	state, err := e.store.CheckOut(ctx, roomID, occupantID)
	if err != nil {
		return err
	}
	metrics.CheckOuts.Inc()
	e.emit(state)
	return nil
}

// RoomState returns the current status and active occupants of a room.
func (e *Engine) RoomState(ctx context.Context, roomID string) (store.RoomState, error) {
	return e.store.RoomState(ctx, roomID)
}

// emit dispatches the occupancy event after the transaction has committed.
// Dispatch never blocks and failures never surface to the caller.
func (e *Engine) emit(state store.RoomState) {
	if e.dispatcher == nil {
		return
	}
	e.dispatcher.Dispatch(notify.OccupancyChanged(state.Room.ID, state.Room.Status, state.Occupants))
}
