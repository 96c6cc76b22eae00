package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-server/internal/api/middleware"
	"github.com/taskhive/taskhive-server/internal/pkg/response"
	"github.com/taskhive/taskhive-server/internal/service"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List returns the caller's notifications, newest first.
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	notifications, err := h.notificationService.ListForUser(userID)
	if err != nil {
		response.ServerError(c, "")
		return
	}
	response.Success(c, notifications)
}

// MarkRead marks one of the caller's notifications as read.
// POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	notificationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ParamError(c, "invalid notification id")
		return
	}

	if err := h.notificationService.MarkRead(userID, notificationID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.NotFound(c, "notification not found")
			return
		}
		response.ServerError(c, "")
		return
	}

	response.SuccessWithMessage(c, "notification marked as read", nil)
}
