package handlers

import (
	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/core/services"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
	}
}

// GetMyDashboard returns the dashboard for the caller's role
// @Summary My Dashboard
// @Description Client, operator or admin payload depending on the caller's role
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetMyDashboard(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.dashboardService.For(c.UserContext(), actor)
	if err != nil {
		return response.FromError(c, err, "/")
	}

	return response.Success(c, "Dashboard retrieved successfully", data)
}
