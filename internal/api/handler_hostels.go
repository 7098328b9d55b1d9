package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-occupancy-backend/internal/model"
)

// hostelResponse represents the API response for a single hostel.
type hostelResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Code       string `json:"code"`
	FloorCount int64  `json:"floor_count"`
}

// ListHostels handles GET /api/hostels.
func (h *Handler) ListHostels(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context())

	var hostels []model.Hostel
	if err := db.Order("code").Find(&hostels).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve hostels"})
		return
	}

	// One aggregate query for floor counts instead of a query per hostel.
	type aggRow struct {
		HostelID   string
		FloorCount int64
	}
	var aggs []aggRow
	if err := db.Model(&model.Floor{}).
		Select("hostel_id as hostel_id, COUNT(*) as floor_count").
		Group("hostel_id").
		Scan(&aggs).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate floors"})
		return
	}

	aggMap := make(map[string]int64, len(aggs))
	for _, a := range aggs {
		aggMap[a.HostelID] = a.FloorCount
	}

	responses := make([]hostelResponse, 0, len(hostels))
	for _, hostel := range hostels {
		responses = append(responses, hostelResponse{
			ID:         hostel.ID,
			Name:       hostel.Name,
			Code:       hostel.Code,
			FloorCount: aggMap[hostel.ID],
		})
	}
	c.JSON(http.StatusOK, responses)
}

// GetHostel handles GET /api/hostels/:hostel_id.
func (h *Handler) GetHostel(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context())

	var hostel model.Hostel
	if err := db.First(&hostel, "id = ?", c.Param("hostel_id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "hostel not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve hostel"})
		}
		return
	}

	var floorCount int64
	db.Model(&model.Floor{}).Where("hostel_id = ?", hostel.ID).Count(&floorCount)

	c.JSON(http.StatusOK, hostelResponse{
		ID:         hostel.ID,
		Name:       hostel.Name,
		Code:       hostel.Code,
		FloorCount: floorCount,
	})
}

// floorResponse represents a floor in a hostel listing.
type floorResponse struct {
	ID          string `json:"id"`
	FloorNumber int    `json:"floor_number"`
	RoomCount   int64  `json:"room_count"`
}

// ListFloors handles GET /api/hostels/:hostel_id/floors.
func (h *Handler) ListFloors(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context())
	hostelID := c.Param("hostel_id")

	var hostel model.Hostel
	if err := db.First(&hostel, "id = ?", hostelID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "hostel not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve hostel"})
		}
		return
	}

	var floors []model.Floor
	if err := db.Where("hostel_id = ?", hostelID).Order("floor_number").Find(&floors).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve floors"})
		return
	}

	type aggRow struct {
		FloorID   string
		RoomCount int64
	}
	var aggs []aggRow
	if err := db.Model(&model.Room{}).
		Select("floor_id as floor_id, COUNT(*) as room_count").
		Where("hostel_id = ?", hostelID).
		Group("floor_id").
		Scan(&aggs).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to aggregate rooms"})
		return
	}
	aggMap := make(map[string]int64, len(aggs))
	for _, a := range aggs {
		aggMap[a.FloorID] = a.RoomCount
	}

	responses := make([]floorResponse, 0, len(floors))
	for _, f := range floors {
		responses = append(responses, floorResponse{
			ID:          f.ID,
			FloorNumber: f.FloorNumber,
			RoomCount:   aggMap[f.ID],
		})
	}
	c.JSON(http.StatusOK, responses)
}

// floorRoomResponse represents a room in a floor listing, with its active
// occupants.
type floorRoomResponse struct {
	ID        string             `json:"id"`
	Label     string             `json:"label"`
	Capacity  int                `json:"capacity"`
	Status    model.RoomStatus   `json:"status"`
	Occupants []occupantResponse `json:"occupants"`
}

// ListFloorRooms handles GET /api/hostels/:hostel_id/floors/:floor_number/rooms.
func (h *Handler) ListFloorRooms(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context())

	floorNumber, err := strconv.Atoi(c.Param("floor_number"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid floor number"})
		return
	}

	var floor model.Floor
	if err := db.First(&floor, "hostel_id = ? AND floor_number = ?", c.Param("hostel_id"), floorNumber).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "floor not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve floor"})
		}
		return
	}

	var rooms []model.Room
	if err := db.Where("floor_id = ?", floor.ID).Order("label").Find(&rooms).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve rooms"})
		return
	}

	roomIDs := make([]string, len(rooms))
	for i, r := range rooms {
		roomIDs[i] = r.ID
	}

	var active []model.Occupant
	if len(roomIDs) > 0 {
		if err := db.Where("room_id IN ? AND checkout_at IS NULL", roomIDs).
			Order("checkin_at").Find(&active).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve occupants"})
			return
		}
	}
	byRoom := make(map[string][]occupantResponse, len(rooms))
	for _, o := range active {
		byRoom[o.RoomID] = append(byRoom[o.RoomID], toOccupantResponse(o))
	}

	responses := make([]floorRoomResponse, 0, len(rooms))
	for _, r := range rooms {
		occupants := byRoom[r.ID]
		if occupants == nil {
			occupants = []occupantResponse{}
		}
		responses = append(responses, floorRoomResponse{
			ID:        r.ID,
			Label:     r.Label,
			Capacity:  r.Capacity,
			Status:    r.Status,
			Occupants: occupants,
		})
	}
	c.JSON(http.StatusOK, responses)
}
