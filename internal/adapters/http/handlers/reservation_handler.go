package handlers

import (
	"strconv"

	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/core/services"
	"washtech-rental/internal/pkg/pagination"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReservationHandler handles the client booking flow and payments
type ReservationHandler struct {
	reservationService *services.ReservationService
	paymentService     *services.PaymentService
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservationService *services.ReservationService, paymentService *services.PaymentService) *ReservationHandler {
	return &ReservationHandler{
		reservationService: reservationService,
		paymentService:     paymentService,
	}
}

// List returns the caller's reservations; admins see all of them
// @Summary List reservations
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /reservas [get]
func (h *ReservationHandler) List(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	page, err := h.reservationService.ListForActor(c.UserContext(), actor, pagination.GetParams(c))
	if err != nil {
		return response.FromError(c, err, redirectDashboard)
	}

	return response.Success(c, "Reservations retrieved successfully", page)
}

// Detail returns one reservation visible to the caller
// @Summary Reservation detail
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /reservas/{id} [get]
func (h *ReservationHandler) Detail(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.reservationService.GetForActor(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err, redirectReservations)
	}

	return response.Success(c, "Reservation retrieved successfully", reservation.ToResponse())
}

// Create books a machine for a day
// @Summary Create reservation
// @Description Books one machine for one day. Location points at the new reservation.
// @Tags Reservations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateReservationInput true "Booking"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /reservas/crear [post]
func (h *ReservationHandler) Create(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	var input services.CreateReservationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	reservation, err := h.reservationService.CreateReservation(c.UserContext(), actor, &input)
	if err != nil {
		return response.FromError(c, err, redirectCatalog)
	}

	c.Location(redirectReservations + "/" + strconv.FormatUint(uint64(reservation.ID), 10))
	return response.Created(c, "Reservation created successfully", reservation.ToResponse())
}

// Cancel cancels the caller's own pending reservation
// @Summary Cancel own reservation
// @Tags Reservations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /reservas/{id}/cancelar [post]
func (h *ReservationHandler) Cancel(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	reservation, err := h.reservationService.ClientCancel(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err, redirectReservations)
	}

	return response.Success(c, "Reservation cancelled successfully", reservation.ToResponse())
}

// ListPayments lists the payments of a reservation
// @Summary List payments
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /reservas/{id}/pagos [get]
func (h *ReservationHandler) ListPayments(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	payments, err := h.paymentService.List(c.UserContext(), actor, id)
	if err != nil {
		return response.FromError(c, err, redirectReservations)
	}

	return response.Success(c, "Payments retrieved successfully", payments)
}

// RecordPayment records a payment entry
// @Summary Record payment
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Reservation ID"
// @Param body body services.RecordPaymentInput true "Payment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /reservas/{id}/pagos [post]
func (h *ReservationHandler) RecordPayment(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid reservation ID")
	}

	var input services.RecordPaymentInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	payment, err := h.paymentService.Record(c.UserContext(), actor, id, &input)
	if err != nil {
		return response.FromError(c, err, redirectReservations)
	}

	return response.Created(c, "Payment recorded successfully", payment)
}
