package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hostel-occupancy-backend/internal/model"
)

// RoomState is a room together with its currently active occupants. Status
// is read from the denormalized column, never recomputed by readers.
type RoomState struct {
	Room      model.Room
	Occupants []model.Occupant
}

// Store defines the database operations behind the occupancy engine.
type Store interface {
	CheckIn(ctx context.Context, roomID string, data OccupantData) (model.Occupant, RoomState, error)
	CheckOut(ctx context.Context, roomID, occupantID string) (RoomState, error)
	RoomState(ctx context.Context, roomID string) (RoomState, error)
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for plain list/search queries.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// CheckIn creates an occupant, appends a history entry and refreshes the
// room status as one atomic unit. The capacity check runs against a locked
// room row inside the same transaction, so two concurrent check-ins on a
// nearly full room cannot both pass it.
func (s *gormStore) CheckIn(ctx context.Context, roomID string, data OccupantData) (model.Occupant, RoomState, error) {
	var (
		created model.Occupant
		state   RoomState
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, roomID)
		if err != nil {
			return err
		}

		active, err := countActive(tx, room.ID)
		if err != nil {
			return err
		}
		if active >= int64(room.Capacity) {
			return ErrCapacityExceeded
		}

		created = model.Occupant{
			RoomID:    room.ID,
			StudentID: data.StudentID,
			Name:      data.Name,
			Email:     data.Email,
			Phone:     data.Phone,
		}
		if err := tx.Create(&created).Error; err != nil {
			return fmt.Errorf("failed to create occupant in room %s: %w", room.ID, err)
		}

		if err := appendHistory(tx, room.ID, model.ChangeCheckin, data.StudentID, data.Name); err != nil {
			return err
		}

		state, err = refreshStatus(tx, room)
		return err
	})
	if err != nil {
		return model.Occupant{}, RoomState{}, err
	}
	return created, state, nil
}

// CheckOut sets the checkout timestamp on an active occupant, appends a
// history entry and refreshes the room status, with the same atomicity as
// CheckIn. Checking out twice fails with ErrAlreadyCheckedOut.
func (s *gormStore) CheckOut(ctx context.Context, roomID, occupantID string) (RoomState, error) {
	var state RoomState
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := lockRoom(tx, roomID)
		if err != nil {
			return err
		}

		var occupant model.Occupant
		if err := tx.First(&occupant, "id = ? AND room_id = ?", occupantID, room.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOccupantNotFound
			}
			return fmt.Errorf("failed to load occupant %s: %w", occupantID, err)
		}
		if occupant.CheckoutAt != nil {
			return ErrAlreadyCheckedOut
		}

		now := time.Now().UTC()
		if err := tx.Model(&occupant).Update("checkout_at", now).Error; err != nil {
			return fmt.Errorf("failed to check out occupant %s: %w", occupantID, err)
		}

		if err := appendHistory(tx, room.ID, model.ChangeCheckout, occupant.StudentID, occupant.Name); err != nil {
			return err
		}

		state, err = refreshStatus(tx, room)
		return err
	})
	if err != nil {
		return RoomState{}, err
	}
	return state, nil
}

// RoomState returns the room with its active occupants.
func (s *gormStore) RoomState(ctx context.Context, roomID string) (RoomState, error) {
	var state RoomState
	db := s.db.WithContext(ctx)
	if err := db.First(&state.Room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RoomState{}, ErrRoomNotFound
		}
		return RoomState{}, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	if err := db.Where("room_id = ? AND checkout_at IS NULL", roomID).
		Order("checkin_at").Find(&state.Occupants).Error; err != nil {
		return RoomState{}, fmt.Errorf("failed to load occupants for room %s: %w", roomID, err)
	}
	return state, nil
}

// lockRoom loads the room under a row lock so concurrent check-ins and
// check-outs on the same room serialize. SQLite rejects FOR UPDATE and
// serializes writers on its own, so the clause is only added elsewhere.
func lockRoom(tx *gorm.DB, roomID string) (model.Room, error) {
	q := tx
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var room model.Room
	if err := q.First(&room, "id = ?", roomID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Room{}, ErrRoomNotFound
		}
		return model.Room{}, fmt.Errorf("failed to load room %s: %w", roomID, err)
	}
	return room, nil
}

func countActive(tx *gorm.DB, roomID string) (int64, error) {
	var active int64
	err := tx.Model(&model.Occupant{}).
		Where("room_id = ? AND checkout_at IS NULL", roomID).
		Count(&active).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active occupants for room %s: %w", roomID, err)
	}
	return active, nil
}

// appendHistory writes the audit record for a state change. It runs inside
// the caller's transaction so a failed operation never leaves an entry.
func appendHistory(tx *gorm.DB, roomID, changeType, studentID, name string) error {
	payload, err := json.Marshal(model.HistoryPayload{StudentID: studentID, Name: name})
	if err != nil {
		return fmt.Errorf("failed to encode history payload: %w", err)
	}
	entry := model.RoomHistory{
		RoomID:     roomID,
		ChangeType: changeType,
		Payload:    payload,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append %s history for room %s: %w", changeType, roomID, err)
	}
	return nil
}

// refreshStatus recomputes the cached room status from the active occupant
// count and returns the resulting room state.
func refreshStatus(tx *gorm.DB, room model.Room) (RoomState, error) {
	var occupants []model.Occupant
	if err := tx.Where("room_id = ? AND checkout_at IS NULL", room.ID).
		Order("checkin_at").Find(&occupants).Error; err != nil {
		return RoomState{}, fmt.Errorf("failed to load occupants for room %s: %w", room.ID, err)
	}

	status := model.StatusForActiveCount(len(occupants))
	if status != room.Status {
		if err := tx.Model(&model.Room{}).Where("id = ?", room.ID).
			Update("status", status).Error; err != nil {
			return RoomState{}, fmt.Errorf("failed to update status for room %s: %w", room.ID, err)
		}
	}
	room.Status = status
	return RoomState{Room: room, Occupants: occupants}, nil
}
