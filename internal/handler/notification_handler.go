package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gatepass/backend/internal/model"
	"github.com/gatepass/backend/internal/service"
)

// NotificationHandler serves the in-app notification feed and the push token
// registry
type NotificationHandler struct {
	notificationService *service.NotificationService
}

func NewNotificationHandler(notificationService *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List godoc
// @Summary List the current user's notifications, newest first
// @Tags Notifications
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max rows" default(50)
// @Success 200 {array} model.Notification
// @Router /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	notifications, err := h.notificationService.List(currentUserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

// MarkRead godoc
// @Summary Mark the given notifications as read
// @Tags Notifications
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.MarkReadRequest true "Notification IDs"
// @Success 200 {object} model.SuccessResponse
// @Router /notifications/mark-read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	var req model.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.notificationService.MarkRead(currentUserID(c), req.NotificationIDs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Notifications marked as read"})
}

// RegisterPushToken godoc
// @Summary Register a device push token for the current user
// @Tags Push
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.RegisterPushTokenRequest true "Device token"
// @Success 200 {object} model.SuccessResponse
// @Failure 400 {object} model.ErrorResponse
// @Router /fcm/register [post]
func (h *NotificationHandler) RegisterPushToken(c *gin.Context) {
	var req model.RegisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.notificationService.RegisterPushToken(currentUserID(c), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Push token registered"})
}

// UnregisterPushToken godoc
// @Summary Deactivate a device push token
// @Tags Push
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.UnregisterPushTokenRequest true "Device token"
// @Success 200 {object} model.SuccessResponse
// @Router /fcm/unregister [post]
func (h *NotificationHandler) UnregisterPushToken(c *gin.Context) {
	var req model.UnregisterPushTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.notificationService.UnregisterPushToken(req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Push token unregistered"})
}

// TestPush godoc
// @Summary Send a test push to a user (admin)
// @Tags Push
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body model.TestPushRequest true "Test message"
// @Success 200 {object} model.SuccessResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /fcm/test [post]
func (h *NotificationHandler) TestPush(c *gin.Context) {
	var req model.TestPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid request", Message: err.Error()})
		return
	}

	if err := h.notificationService.SendTestPush(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.SuccessResponse{Message: "Test notification sent"})
}
