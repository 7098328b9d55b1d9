package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hostel-occupancy-backend/internal/db"
	"hostel-occupancy-backend/internal/model"
)

// newTestDB opens a private in-memory database for one test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})
	return gormDB
}

// createRoom seeds a hostel, a floor and one room with the given capacity.
func createRoom(t *testing.T, gormDB *gorm.DB, capacity int) model.Room {
	t.Helper()
	hostel := model.Hostel{Name: "Hostel H", Code: "H"}
	require.NoError(t, gormDB.Create(&hostel).Error)
	floor := model.Floor{HostelID: hostel.ID, FloorNumber: 2}
	require.NoError(t, gormDB.Create(&floor).Error)
	room := model.Room{
		HostelID: hostel.ID,
		FloorID:  floor.ID,
		Label:    "201",
		Capacity: capacity,
		Status:   model.StatusVacant,
	}
	require.NoError(t, gormDB.Create(&room).Error)
	return room
}

func historyCount(t *testing.T, gormDB *gorm.DB, roomID string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, gormDB.Model(&model.RoomHistory{}).Where("room_id = ?", roomID).Count(&n).Error)
	return n
}

func TestCheckIn_CreatesOccupantHistoryAndStatus(t *testing.T) {
	gormDB := newTestDB(t)
	s := NewGormStore(gormDB)
	room := createRoom(t, gormDB, 2)
	ctx := context.Background()

	occupant, state, err := s.CheckIn(ctx, room.ID, OccupantData{
		StudentID: "S1",
		Name:      "Alice",
		Email:     "alice@university.edu",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, occupant.ID)
	assert.Equal(t, "S1", occupant.StudentID)
	assert.Equal(t, "Alice", occupant.Name)
	assert.Nil(t, occupant.CheckoutAt)
	assert.WithinDuration(t, time.Now(), occupant.CheckinAt, 5*time.Second)

	assert.Equal(t, model.StatusOccupied, state.Room.Status)
	require.Len(t, state.Occupants, 1)
	assert.Equal(t, occupant.ID, state.Occupants[0].ID)

	// The cached status must have been persisted, not just returned.
	var stored model.Room
	require.NoError(t, gormDB.First(&stored, "id = ?", room.ID).Error)
	assert.Equal(t, model.StatusOccupied, stored.Status)

	var entries []model.RoomHistory
	require.NoError(t, gormDB.Where("room_id = ?", room.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ChangeCheckin, entries[0].ChangeType)
	payload, err := entries[0].DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, "S1", payload.StudentID)
	assert.Equal(t, "Alice", payload.Name)
}

func TestCheckIn_RoomNotFound(t *testing.T) {
	gormDB := newTestDB(t)
	s := NewGormStore(gormDB)

	_, _, err := s.CheckIn(context.Background(), "00000000-0000-0000-0000-000000000000", OccupantData{
		StudentID: "S1",
		Name:      "Alice",
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCheckIn_CapacityExceededMutatesNothing(t *testing.T) {
	gormDB := newTestDB(t)
	s := NewGormStore(gormDB)
	room := createRoom(t, gormDB, 1)
	ctx := context.Background()

	_, _, err := s.CheckIn(ctx, room.ID, OccupantData{StudentID: "S1", Name: "Alice"})
	require.NoError(t, err)

	_, _, err = s.CheckIn(ctx, room.ID, OccupantData{StudentID: "S2", Name: "Bob"})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	var occupants int64
	require.NoError(t, gormDB.Model(&model.Occupant{}).Where("room_id = ?", room.ID).Count(&occupants).Error)
	assert.Equal(t, int64(1), occupants)
	assert.Equal(t, int64(1), historyCount(t, gormDB, room.ID))

	var stored model.Room
	require.NoError(t, gormDB.First(&stored, "id = ?", room.ID).Error)
	assert.Equal(t, model.StatusOccupied, stored.Status)
}

func TestCheckOut_Lifecycle(t *testing.T) {
	gormDB := newTestDB(t)
	s := NewGormStore(gormDB)
	room := createRoom(t, gormDB, 2)
	ctx := context.Background()

	alice, _, err := s.CheckIn(ctx, room.ID, OccupantData{StudentID: "S1", Name: "Alice"})
	require.NoError(t, err)
	bob, _, err := s.CheckIn(ctx, room.ID, OccupantData{StudentID: "S2", Name: "Bob"})
	require.NoError(t, err)

	// Third check-in fails, room stays at two active occupants.
	_, _, err = s.CheckIn(ctx, room.ID, OccupantData{StudentID: "S3", Name: "Carl"})
	assert.ErrorIs(t, err, ErrCapacityExceeded)

	state, err := s.CheckOut(ctx, room.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusOccupied, state.Room.Status)
	require.Len(t, state.Occupants, 1)
	assert.Equal(t, bob.ID, state.Occupants[0].ID)

	var checkedOut model.Occupant
	require.NoError(t, gormDB.First(&checkedOut, "id = ?", alice.ID).Error)
	require.NotNil(t, checkedOut.CheckoutAt)
	assert.WithinDuration(t, time.Now(), *checkedOut.CheckoutAt, 5*time.Second)

	state, err = s.CheckOut(ctx, room.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusVacant, state.Room.Status)
	assert.Empty(t, state.Occupants)

	// Two check-ins and two check-outs, one entry each.
	var entries []model.RoomHistory
	require.NoError(t, gormDB.Where("room_id = ?", room.ID).Order("timestamp").Find(&entries).Error)
	require.Len(t, entries, 4)
	assert.Equal(t, model.ChangeCheckout, entries[3].ChangeType)
	payload, err := entries[3].DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, "S2", payload.StudentID)
	assert.Equal(t, "Bob", payload.Name)
}

func TestCheckOut_AlreadyCheckedOutMutatesNothing(t *testing.T) {
	gormDB := newTestDB(t)
	s := NewGormStore(gormDB)
	room := createRoom(t, gormDB, 2)
	ctx := context.Background()

	alice, _, err := s.CheckIn(ctx, room.ID, OccupantData{StudentID: "S1", Name: "Alice"})
	require.NoError(t, err)

	_, err = s.CheckOut(ctx, room.ID, alice.ID)
	require.NoError(t, err)

	var before model.Occupant
	require.NoError(t, gormDB.First(&before, "id = ?", alice.ID).Error)
	entriesBefore := historyCount(t, gormDB, room.ID)

	_, err = s.CheckOut(ctx, room.ID, alice.ID)
	assert.ErrorIs(t, err, ErrAlreadyCheckedOut)

	var after model.Occupant
	require.NoError(t, gormDB.First(&after, "id = ?", alice.ID).Error)
	assert.Equal(t, before.CheckoutAt.Unix(), after.CheckoutAt.Unix())
	assert.Equal(t, entriesBefore, historyCount(t, gormDB, room.ID))
}

func TestCheckOut_OccupantNotFound(t *testing.T) {
	gormDB := newTestDB(t)
	s := NewGormStore(gormDB)
	room := createRoom(t, gormDB, 2)

	_, err := s.CheckOut(context.Background(), room.ID, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrOccupantNotFound)
}

func TestRoomState_ReadIsIdempotent(t *testing.T) {
	gormDB := newTestDB(t)
	s := NewGormStore(gormDB)
	room := createRoom(t, gormDB, 2)
	ctx := context.Background()

	_, _, err := s.CheckIn(ctx, room.ID, OccupantData{StudentID: "S1", Name: "Alice"})
	require.NoError(t, err)

	first, err := s.RoomState(ctx, room.ID)
	require.NoError(t, err)
	second, err := s.RoomState(ctx, room.ID)
	require.NoError(t, err)

	assert.Equal(t, first.Room.Status, second.Room.Status)
	require.Equal(t, len(first.Occupants), len(second.Occupants))
	for i := range first.Occupants {
		assert.Equal(t, first.Occupants[i].ID, second.Occupants[i].ID)
	}
}

func TestRoomState_NotFound(t *testing.T) {
	gormDB := newTestDB(t)
	s := NewGormStore(gormDB)

	_, err := s.RoomState(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

// TestCheckIn_ConcurrentOnLastSlot exercises the capacity race: two
// check-ins against a capacity-1 room must resolve to exactly one success
// and one ErrCapacityExceeded.
func TestCheckIn_ConcurrentOnLastSlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "race.db")
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000", path)
	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	t.Cleanup(func() {
		sqlDB, _ := gormDB.DB()
		sqlDB.Close()
	})

	s := NewGormStore(gormDB)
	room := createRoom(t, gormDB, 1)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, data := range []OccupantData{
		{StudentID: "S1", Name: "Alice"},
		{StudentID: "S2", Name: "Bob"},
	} {
		wg.Add(1)
		go func(i int, data OccupantData) {
			defer wg.Done()
			_, _, errs[i] = s.CheckIn(ctx, room.ID, data)
		}(i, data)
	}
	wg.Wait()

	var successes, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		default:
			assert.ErrorIs(t, err, ErrCapacityExceeded)
			rejected++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, rejected)

	var active int64
	require.NoError(t, gormDB.Model(&model.Occupant{}).
		Where("room_id = ? AND checkout_at IS NULL", room.ID).Count(&active).Error)
	assert.Equal(t, int64(1), active)
}

// newMockDB wires gorm onto a sqlmock connection for error-path tests.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestCheckIn_StoreFailureRollsBack(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "rooms"`).
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	_, _, err := s.CheckIn(context.Background(), "room-1", OccupantData{StudentID: "S1", Name: "Alice"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOut_UnknownRoomRollsBack(t *testing.T) {
	gormDB, mock := newMockDB(t)
	s := NewGormStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "rooms"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "capacity", "status"}))
	mock.ExpectRollback()

	_, err := s.CheckOut(context.Background(), "room-1", "occupant-1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
