package handlers

import (
	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/core/services"
	"washtech-rental/internal/pkg/pagination"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the asset registry and pending-reservation oversight
type AdminHandler struct {
	machineService     *services.MachineService
	reservationService *services.ReservationService
	adminService       *services.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	machineService *services.MachineService,
	reservationService *services.ReservationService,
	adminService *services.AdminService,
) *AdminHandler {
	return &AdminHandler{
		machineService:     machineService,
		reservationService: reservationService,
		adminService:       adminService,
	}
}

// AssignRequest represents assign operator request body
type AssignRequest struct {
	OperatorID uint `json:"operator_id" form:"operator_id"`
}

// ============================================================
// Machines
// ============================================================

// ListMachines lists active machines with their inventory
// @Summary List machines
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /admin/lavadoras [get]
func (h *AdminHandler) ListMachines(c *fiber.Ctx) error {
	page, err := h.machineService.ListAdmin(c.UserContext(), pagination.GetParams(c))
	if err != nil {
		return response.FromError(c, err, redirectMachines)
	}

	return response.Success(c, "Machines retrieved successfully", page)
}

// GetMachine returns one machine
// @Summary Get machine
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/lavadoras/{id} [get]
func (h *AdminHandler) GetMachine(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid machine ID")
	}

	machine, err := h.machineService.GetMachine(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err, redirectMachines)
	}

	return response.Success(c, "Machine retrieved successfully", machine)
}

// CreateMachine registers a machine and its inventory row
// @Summary Create machine
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateMachineInput true "Machine"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /admin/lavadoras [post]
func (h *AdminHandler) CreateMachine(c *fiber.Ctx) error {
	var input services.CreateMachineInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	machine, err := h.machineService.CreateMachine(c.UserContext(), &input)
	if err != nil {
		return response.FromError(c, err, redirectMachines)
	}

	return response.Created(c, "Machine created successfully", machine)
}

// UpdateMachine edits a machine and its inventory
// @Summary Update machine
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Param body body services.UpdateMachineInput true "Fields to change"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/lavadoras/{id} [put]
func (h *AdminHandler) UpdateMachine(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid machine ID")
	}

	var input services.UpdateMachineInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	machine, err := h.machineService.UpdateMachine(c.UserContext(), id, &input)
	if err != nil {
		return response.FromError(c, err, redirectMachines)
	}

	return response.Success(c, "Machine updated successfully", machine)
}

// DeactivateMachine retires a machine and its inventory row
// @Summary Deactivate machine
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Machine ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/lavadoras/{id}/eliminar [post]
func (h *AdminHandler) DeactivateMachine(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid machine ID")
	}

	if err := h.machineService.DeactivateMachine(c.UserContext(), id); err != nil {
		return response.FromError(c, err, redirectMachines)
	}

	return response.Success(c, "Machine deactivated successfully", nil)
}

// ============================================================
// Pending reservations
// ============================================================

// Pending returns the pending overview
// @Summary Pending reservations
// @Description Unassigned and assigned pending reservations plus per-machine counts
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /admin/pendientes [get]
func (h *AdminHandler) Pending(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	overview, err := h.adminService.PendingOverview(c.UserContext(), actor)
	if err != nil {
		return response.FromError(c, err, redirectDashboard)
	}

	return response.Success(c, "Pending reservations retrieved successfully", overview)
}

// Assign assigns an operator to a pending reservation
// @Summary Assign operator
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Param body body AssignRequest true "Operator"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/pendientes/{id}/asignar [post]
func (h *AdminHandler) Assign(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	var req AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OperatorID == 0 {
		return response.BadRequest(c, "operator_id is required")
	}

	reservation, err := h.reservationService.AssignOperator(c.UserContext(), actor, id, req.OperatorID)
	if err != nil {
		return response.FromError(c, err, redirectPending)
	}

	return response.Success(c, "Operator assigned successfully", reservation.ToResponse())
}

// Unassign clears the operator of a pending reservation
// @Summary Unassign operator
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /admin/pendientes/{id}/desasignar [post]
func (h *AdminHandler) Unassign(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.reservationService.UnassignOperator(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err, redirectPending)
	}

	return response.Success(c, "Operator unassigned successfully", reservation.ToResponse())
}
