package appointment

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
	rg.POST("/appointments", h.Book)
	rg.GET("/appointments", h.List)
	rg.GET("/appointments/:id", h.Get)
	rg.PATCH("/appointments/:id/approve", h.Approve)
	rg.PATCH("/appointments/:id/reject", h.Reject)
	rg.PATCH("/appointments/:id/cancel", h.Cancel)
	rg.PATCH("/appointments/:id/complete", h.Complete)
	rg.POST("/appointments/:id/rate", h.Rate)
}

func actorFromContext(c *gin.Context) Actor {
	return Actor{
		ID:   c.GetInt64("user_id"),
		Role: domain.UserRole(c.GetString("role")),
	}
}

func (h *Handler) Book(c *gin.Context) {
	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	appt, err := h.service.Book(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"appointment": appt})
}

func (h *Handler) List(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid query parameters")
		return
	}

	list, total, err := h.service.List(c.Request.Context(), actorFromContext(c), q)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"appointments": list,
		"total":        total,
	})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	appt, err := h.service.Get(c.Request.Context(), actorFromContext(c), id)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": appt})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req ApproveRequest
	_ = c.ShouldBindJSON(&req) // body optional

	appt, err := h.service.Approve(c.Request.Context(), actorFromContext(c), id, req.Response)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": appt})
}

func (h *Handler) Reject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rejection reason is required")
		return
	}

	appt, err := h.service.Reject(c.Request.Context(), actorFromContext(c), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": appt})
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req) // reason optional

	appt, err := h.service.Cancel(c.Request.Context(), actorFromContext(c), id, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": appt})
}

func (h *Handler) Complete(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req CompleteRequest
	_ = c.ShouldBindJSON(&req)

	appt, err := h.service.Complete(c.Request.Context(), actorFromContext(c), id, req.Feedback)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": appt})
}

func (h *Handler) Rate(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var req RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Rating must be an integer between 1 and 5")
		return
	}

	appt, err := h.service.Rate(c.Request.Context(), actorFromContext(c), id, req.Rating, req.Feedback)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"appointment": appt})
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid appointment id")
		return 0, false
	}
	return id, true
}

// writeError maps engine errors onto the response envelope. Persistence
// failures fall through to a generic 500 without internal detail.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Appointment or slot not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "You are not allowed to perform this action")
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrSlotUnavailable):
		response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", err.Error())
	case errors.Is(err, ErrSlotLocked):
		response.Error(c, http.StatusConflict, "SLOT_LOCKED", err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
	}
}
