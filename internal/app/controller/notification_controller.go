package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nexapay/nexapay-backend/internal/app/service"
	apperrors "github.com/nexapay/nexapay-backend/internal/errors"
	"github.com/nexapay/nexapay-backend/internal/middleware"
	"github.com/nexapay/nexapay-backend/internal/websocket"
)

type NotificationController struct {
	notificationService service.NotificationService
	hub                 *websocket.Hub
}

func NewNotificationController(notificationService service.NotificationService, hub *websocket.Hub) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
		hub:                 hub,
	}
}

// ListNotifications returns the user's notifications, newest first.
// GET /api/v1/notifications
func (ctrl *NotificationController) ListNotifications(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	notifications, err := ctrl.notificationService.ListNotifications(userID, limit, offset)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "notifications")
		return
	}

	unread, err := ctrl.notificationService.UnreadCount(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

// MarkAsRead marks one of the user's notifications as read.
// PATCH /api/v1/notifications/:id/read
func (ctrl *NotificationController) MarkAsRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}

	notificationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid notification id")
		return
	}

	if err := ctrl.notificationService.MarkAsRead(uint(notificationID), userID); err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// StreamStatus upgrades to a websocket carrying live verification status
// events for the authenticated user.
// GET /api/v1/kyc/stream
func (ctrl *NotificationController) StreamStatus(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return
	}
	websocket.ServeWS(ctrl.hub, c, userID)
}
