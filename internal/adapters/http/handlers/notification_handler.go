package handlers

import (
	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/core/services"
	"washtech-rental/internal/pkg/pagination"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// NotificationHandler handles the caller's notification inbox
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
	}
}

// List returns the caller's notifications, newest first
// @Summary List notifications
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /notificaciones [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	list, err := h.notificationService.List(c.UserContext(), actor.UserID, pagination.GetParams(c))
	if err != nil {
		return response.FromError(c, err, redirectDashboard)
	}

	return response.Success(c, "Notifications retrieved successfully", list)
}

// MarkRead marks one of the caller's notifications as read
// @Summary Mark notification read
// @Tags Notifications
// @Produce json
// @Security BearerAuth
// @Param id path int true "Notification ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /notificaciones/{id}/leer [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notificationService.MarkRead(c.UserContext(), actor.UserID, id); err != nil {
		return response.FromError(c, err, "/notificaciones")
	}

	return response.Success(c, "Notification marked as read", nil)
}
