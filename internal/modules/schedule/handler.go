package schedule

import (
	"errors"
	"net/http"
	"strconv"

	"campusbook/internal/domain"
	"campusbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/schedule/:teacherId/:date", h.DaySchedule)
	rg.GET("/schedule/:teacherId/:date/stats", h.Stats)
	rg.PATCH("/schedule/slots/:id", h.UpdateSlot)
	rg.DELETE("/schedule/slots/:id", h.DeleteSlot)
}

func (h *Handler) DaySchedule(c *gin.Context) {
	teacherID, ok := pathID(c, "teacherId")
	if !ok {
		return
	}

	day, err := h.service.DaySchedule(
		c.Request.Context(),
		teacherID,
		c.Param("date"),
		domain.SlotStatus(c.Query("status")),
	)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"schedule": day})
}

func (h *Handler) Stats(c *gin.Context) {
	teacherID, ok := pathID(c, "teacherId")
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), teacherID, c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) UpdateSlot(c *gin.Context) {
	slotID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	slot, err := h.service.UpdateSlot(
		c.Request.Context(),
		c.GetInt64("user_id"),
		domain.UserRole(c.GetString("role")),
		slotID,
		req,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

func (h *Handler) DeleteSlot(c *gin.Context) {
	slotID, ok := pathID(c, "id")
	if !ok {
		return
	}

	err := h.service.DeleteSlot(
		c.Request.Context(),
		c.GetInt64("user_id"),
		domain.UserRole(c.GetString("role")),
		slotID,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid id")
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Slot or teacher not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You can only manage your own schedule")
	case errors.Is(err, ErrSlotLocked):
		response.Error(c, http.StatusConflict, "SLOT_LOCKED", "Slot is booked; release it through the appointment")
	case errors.Is(err, ErrConflict):
		response.Error(c, http.StatusConflict, "CONFLICT", "Slot changed concurrently, retry")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
