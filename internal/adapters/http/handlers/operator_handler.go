package handlers

import (
	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/core/services"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OperatorHandler handles the operator workflow
type OperatorHandler struct {
	operatorService *services.OperatorService
}

// NewOperatorHandler creates a new operator handler
func NewOperatorHandler(operatorService *services.OperatorService) *OperatorHandler {
	return &OperatorHandler{
		operatorService: operatorService,
	}
}

// Dashboard returns the operator's assignments and counts
// @Summary Operator Dashboard
// @Tags Operator
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /operator/dashboard [get]
func (h *OperatorHandler) Dashboard(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	data, err := h.operatorService.Dashboard(c.UserContext(), actor.UserID)
	if err != nil {
		return response.FromError(c, err, "/")
	}

	return response.Success(c, "Operator dashboard retrieved successfully", data)
}

// View returns a reservation assigned to the caller
// @Summary View assigned reservation
// @Tags Operator
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /operator/reserva/{id} [get]
func (h *OperatorHandler) View(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.operatorService.ViewAssigned(c.UserContext(), id, actor.UserID)
	if err != nil {
		return response.FromError(c, err, redirectOperator)
	}

	return response.Success(c, "Reservation retrieved successfully", reservation.ToResponse())
}

// Deliver marks an assigned reservation delivered
// @Summary Deliver reservation
// @Tags Operator
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /operator/reserva/{id}/entregar [post]
func (h *OperatorHandler) Deliver(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.operatorService.Deliver(c.UserContext(), id, actor.UserID)
	if err != nil {
		return response.FromError(c, err, redirectOperator)
	}

	return response.Success(c, "Reservation delivered", reservation.ToResponse())
}

// Cancel cancels an assigned reservation
// @Summary Cancel assigned reservation
// @Tags Operator
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /operator/reserva/{id}/cancelar [post]
func (h *OperatorHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.operatorService.Cancel(c.UserContext(), id, actor.UserID)
	if err != nil {
		return response.FromError(c, err, redirectOperator)
	}

	return response.Success(c, "Reservation cancelled", reservation.ToResponse())
}
