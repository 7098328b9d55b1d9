package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hostel-occupancy-backend/internal/model"
	"hostel-occupancy-backend/internal/store"
)

type addOccupantRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// occupantResponse is the wire shape of a single occupant.
type occupantResponse struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CheckinAt time.Time `json:"checkin_at"`
}

// roomDetailResponse is the wire shape of a room with its active occupants.
type roomDetailResponse struct {
	ID          string             `json:"id"`
	Label       string             `json:"label"`
	Capacity    int                `json:"capacity"`
	Status      model.RoomStatus   `json:"status"`
	HostelID    string             `json:"hostel_id"`
	FloorNumber int                `json:"floor_number"`
	Occupants   []occupantResponse `json:"occupants"`
}

func toOccupantResponse(o model.Occupant) occupantResponse {
	return occupantResponse{
		ID:        o.ID,
		StudentID: o.StudentID,
		Name:      o.Name,
		Email:     o.Email,
		Phone:     o.Phone,
		CheckinAt: o.CheckinAt,
	}
}

// GetRoom handles GET /api/rooms/:room_id.
func (h *Handler) GetRoom(c *gin.Context) {
	state, err := h.engine.RoomState(c.Request.Context(), c.Param("room_id"))
	if err != nil {
		c.AbortWithStatusJSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	var floor model.Floor
	if err := h.store.DB().WithContext(c.Request.Context()).
		First(&floor, "id = ?", state.Room.FloorID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load floor"})
		return
	}

	occupants := make([]occupantResponse, len(state.Occupants))
	for i, o := range state.Occupants {
		occupants[i] = toOccupantResponse(o)
	}

	c.JSON(http.StatusOK, roomDetailResponse{
		ID:          state.Room.ID,
		Label:       state.Room.Label,
		Capacity:    state.Room.Capacity,
		Status:      state.Room.Status,
		HostelID:    state.Room.HostelID,
		FloorNumber: floor.FloorNumber,
		Occupants:   occupants,
	})
}

// AddOccupant handles POST /api/rooms/:room_id/occupants (check-in).
func (h *Handler) AddOccupant(c *gin.Context) {
	var req addOccupantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	occupant, err := h.engine.CheckIn(c.Request.Context(), c.Param("room_id"), store.OccupantData{
		StudentID: req.StudentID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, toOccupantResponse(occupant))
}

// RemoveOccupant handles DELETE /api/rooms/:room_id/occupants/:occupant_id
// (check-out).
func (h *Handler) RemoveOccupant(c *gin.Context) {
	err := h.engine.CheckOut(c.Request.Context(), c.Param("room_id"), c.Param("occupant_id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "occupant checked out successfully"})
}
