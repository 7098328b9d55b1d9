package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hostel-occupancy-backend/internal/model"
)

type createStudentRequest struct {
	StudentID  string  `json:"student_id" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	RollNumber string  `json:"roll_number"`
	ProgramID  *string `json:"program_id"`
	Year       *int    `json:"year"`
	HostelID   *string `json:"hostel_id"`
	RoomID     *string `json:"room_id"`
}

// CreateStudent handles POST /api/students. Student IDs are unique; a
// duplicate is rejected before the insert.
func (h *Handler) CreateStudent(c *gin.Context) {
	var req createStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := h.store.DB().WithContext(c.Request.Context())

	var count int64
	if err := db.Model(&model.Student{}).Where("student_id = ?", req.StudentID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check student id"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "student with this id already exists"})
		return
	}

	student := model.Student{
		StudentID:  req.StudentID,
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		RollNumber: req.RollNumber,
		ProgramID:  req.ProgramID,
		Year:       req.Year,
		HostelID:   req.HostelID,
		RoomID:     req.RoomID,
	}
	if err := db.Create(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create student"})
		return
	}

	c.JSON(http.StatusCreated, student)
}

// ListStudents handles GET /api/students with optional q/limit/offset.
func (h *Handler) ListStudents(c *gin.Context) {
	db := h.store.DB().WithContext(c.Request.Context()).Model(&model.Student{})

	if q := strings.TrimSpace(c.Query("q")); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		db = db.Where(
			"LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(student_id) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	var students []model.Student
	if err := db.Order("name").Limit(limit).Offset(offset).Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve students"})
		return
	}

	c.JSON(http.StatusOK, students)
}

// GetStudent handles GET /api/students/:student_id (the external id, not
// the row id).
func (h *Handler) GetStudent(c *gin.Context) {
	var student model.Student
	err := h.store.DB().WithContext(c.Request.Context()).
		First(&student, "student_id = ?", c.Param("student_id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "student not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve student"})
		}
		return
	}

	c.JSON(http.StatusOK, student)
}
