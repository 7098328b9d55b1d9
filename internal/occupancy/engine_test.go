package occupancy

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-occupancy-backend/internal/db"
	"hostel-occupancy-backend/internal/model"
	"hostel-occupancy-backend/internal/notify"
	"hostel-occupancy-backend/internal/store"
)

// recordingDispatcher captures dispatched events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (d *recordingDispatcher) Dispatch(event notify.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
}

func (d *recordingDispatcher) all() []notify.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]notify.Event(nil), d.events...)
}

func setupEngine(t *testing.T, capacity int) (*Engine, *recordingDispatcher, *gorm.DB, model.Room) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	hostel := model.Hostel{Name: "Hostel G", Code: "G"}
	require.NoError(t, gormDB.Create(&hostel).Error)
	floor := model.Floor{HostelID: hostel.ID, FloorNumber: 1}
	require.NoError(t, gormDB.Create(&floor).Error)
	room := model.Room{
		HostelID: hostel.ID,
		FloorID:  floor.ID,
		Label:    "101",
		Capacity: capacity,
		Status:   model.StatusVacant,
	}
	require.NoError(t, gormDB.Create(&room).Error)

	dispatcher := &recordingDispatcher{}
	engine := NewEngine(store.NewGormStore(gormDB), dispatcher)
	return engine, dispatcher, gormDB, room
}

// TestEngine_OccupancyScenario walks a capacity-2 room through the full
// check-in/check-out lifecycle.
func TestEngine_OccupancyScenario(t *testing.T) {
	engine, dispatcher, _, room := setupEngine(t, 2)
	ctx := context.Background()

	alice, err := engine.CheckIn(ctx, room.ID, store.OccupantData{StudentID: "S1", Name: "Alice"})
	require.NoError(t, err)
	state, err := engine.RoomState(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOccupied, state.Room.Status)
	assert.Len(t, state.Occupants, 1)

	bob, err := engine.CheckIn(ctx, room.ID, store.OccupantData{StudentID: "S2", Name: "Bob"})
	require.NoError(t, err)
	state, err = engine.RoomState(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOccupied, state.Room.Status)
	assert.Len(t, state.Occupants, 2)

	_, err = engine.CheckIn(ctx, room.ID, store.OccupantData{StudentID: "S3", Name: "Carl"})
	assert.ErrorIs(t, err, store.ErrCapacityExceeded)
	state, err = engine.RoomState(ctx, room.ID)
	require.NoError(t, err)
	assert.Len(t, state.Occupants, 2)

	require.NoError(t, engine.CheckOut(ctx, room.ID, alice.ID))
	state, err = engine.RoomState(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOccupied, state.Room.Status)
	require.Len(t, state.Occupants, 1)
	assert.Equal(t, bob.ID, state.Occupants[0].ID)

	require.NoError(t, engine.CheckOut(ctx, room.ID, bob.ID))
	state, err = engine.RoomState(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVacant, state.Room.Status)
	assert.Empty(t, state.Occupants)

	// One event per successful operation, none for the rejected check-in.
	events := dispatcher.all()
	require.Len(t, events, 4)
	for _, e := range events {
		assert.Equal(t, "occupancy_changed", e.Type)
		assert.Equal(t, room.ID, e.RoomID)
	}
	assert.Len(t, events[1].Occupants, 2)
	assert.Equal(t, model.StatusOccupied, events[2].Status)
	assert.Equal(t, []notify.OccupantRef{{ID: bob.ID, Name: "Bob"}}, events[2].Occupants)
	assert.Equal(t, model.StatusVacant, events[3].Status)
	assert.Empty(t, events[3].Occupants)
}

func TestEngine_CheckInValidation(t *testing.T) {
	engine, dispatcher, gormDB, room := setupEngine(t, 2)
	ctx := context.Background()

	cases := []struct {
		name string
		data store.OccupantData
	}{
		{"missing student id", store.OccupantData{Name: "Alice"}},
		{"missing name", store.OccupantData{StudentID: "S1"}},
		{"whitespace only", store.OccupantData{StudentID: "  ", Name: "\t"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := engine.CheckIn(ctx, room.ID, tc.data)
			assert.ErrorIs(t, err, ErrMissingFields)
		})
	}

	var occupants int64
	require.NoError(t, gormDB.Model(&model.Occupant{}).Count(&occupants).Error)
	assert.Zero(t, occupants)
	var entries int64
	require.NoError(t, gormDB.Model(&model.RoomHistory{}).Count(&entries).Error)
	assert.Zero(t, entries)
	assert.Empty(t, dispatcher.all())
}

func TestEngine_FailedCheckOutEmitsNothing(t *testing.T) {
	engine, dispatcher, _, room := setupEngine(t, 1)
	ctx := context.Background()

	occupant, err := engine.CheckIn(ctx, room.ID, store.OccupantData{StudentID: "S1", Name: "Alice"})
	require.NoError(t, err)
	require.NoError(t, engine.CheckOut(ctx, room.ID, occupant.ID))

	before := len(dispatcher.all())
	err = engine.CheckOut(ctx, room.ID, occupant.ID)
	assert.ErrorIs(t, err, store.ErrAlreadyCheckedOut)
	assert.Len(t, dispatcher.all(), before)
}

// A nil dispatcher means no notification channel is configured; operations
// must still succeed.
func TestEngine_NilDispatcher(t *testing.T) {
	_, _, gormDB, room := setupEngine(t, 1)
	engine := NewEngine(store.NewGormStore(gormDB), nil)

	occupant, err := engine.CheckIn(context.Background(), room.ID, store.OccupantData{StudentID: "S1", Name: "Alice"})
	require.NoError(t, err)
	require.NoError(t, engine.CheckOut(context.Background(), room.ID, occupant.ID))
}
