package chat

import (
	"errors"
	"net/http"
	"strconv"

	"campusbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	hub     *Hub
}

func NewHandler(service *Service, hub *Hub) *Handler {
	return &Handler{service: service, hub: hub}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/messages", h.Send)
	rg.GET("/messages/unread/count", h.UnreadCount)
	rg.GET("/messages/:userId", h.Conversation)
	rg.GET("/ws", h.hub.HandleWS)
}

func (h *Handler) Send(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid message payload")
		return
	}

	msg, err := h.service.Send(c.Request.Context(), c.GetInt64("user_id"), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Recipient not found")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to send message")
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"message": msg})
}

func (h *Handler) Conversation(c *gin.Context) {
	otherID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || otherID <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid user id")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	msgs, err := h.service.Conversation(c.Request.Context(), c.GetInt64("user_id"), otherID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load conversation")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"messages": msgs})
}

func (h *Handler) UnreadCount(c *gin.Context) {
	cnt, err := h.service.UnreadCount(c.Request.Context(), c.GetInt64("user_id"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to count unread messages")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread": cnt})
}
