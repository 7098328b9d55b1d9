package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-occupancy-backend/internal/model"
	"hostel-occupancy-backend/internal/store"
)

// sheetRowPayload is the row a Google Apps Script forwards when a check-in/
// check-out form is submitted. It is translated into the same engine calls
// as the rooms endpoints.
type sheetRowPayload struct {
	Timestamp   string `json:"timestamp"`
	StudentID   string `json:"student_id" binding:"required"`
	StudentName string `json:"student_name" binding:"required"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	HostelCode  string `json:"hostel_code" binding:"required"`
	FloorNumber int    `json:"floor_number"`
	RoomLabel   string `json:"room_label" binding:"required"`
	Action      string `json:"action" binding:"required"` // "checkin" or "checkout"
}

// validSignature checks the HMAC-SHA256 hex signature over the raw body.
func validSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SheetsWebhook handles POST /api/sheets-webhook.
func (h *Handler) SheetsWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}

	if h.webhook != nil && h.webhook.Secret != "" {
		signature := c.GetHeader("X-Webhook-Signature")
		if signature == "" || !validSignature(h.webhook.Secret, body, signature) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}

	var payload sheetRowPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if payload.StudentID == "" || payload.StudentName == "" || payload.HostelCode == "" || payload.RoomLabel == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required fields"})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var hostel model.Hostel
	if err := db.First(&hostel, "code = ?", payload.HostelCode).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "hostel " + payload.HostelCode + " not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve hostel"})
		}
		return
	}

	var room model.Room
	err = db.Joins("JOIN floors ON floors.id = rooms.floor_id").
		Where("rooms.hostel_id = ? AND rooms.label = ? AND floors.floor_number = ?",
			hostel.ID, payload.RoomLabel, payload.FloorNumber).
		First(&room).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve room"})
		}
		return
	}

	switch payload.Action {
	case model.ChangeCheckin:
		occupant, err := h.engine.CheckIn(c.Request.Context(), room.ID, store.OccupantData{
			StudentID: payload.StudentID,
			Name:      payload.StudentName,
			Email:     payload.Email,
			Phone:     payload.Phone,
		})
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "action": "checkin", "occupant_id": occupant.ID})

	case model.ChangeCheckout:
		var occupant model.Occupant
		err := db.Where("room_id = ? AND student_id = ? AND checkout_at IS NULL", room.ID, payload.StudentID).
			First(&occupant).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "active occupant not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve occupant"})
			}
			return
		}
		if err := h.engine.CheckOut(c.Request.Context(), room.ID, occupant.ID); err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "action": "checkout"})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action: " + payload.Action})
	}
}

// SheetsWebhookHealth handles GET /api/sheets-webhook/health.
func (h *Handler) SheetsWebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready", "message": "sheets webhook is operational"})
}
