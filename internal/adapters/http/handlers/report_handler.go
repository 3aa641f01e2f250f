package handlers

import (
	"bytes"
	"time"

	"washtech-rental/internal/adapters/http/middleware"
	"washtech-rental/internal/core/services"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler serves CSV exports
type ReportHandler struct {
	reportService *services.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// ReservationsCSV exports reservations as CSV
// @Summary Export reservations
// @Description Admins export everything; other roles only their own reservations
// @Tags Reports
// @Produce text/csv
// @Security BearerAuth
// @Param start_date query string false "YYYY-MM-DD"
// @Param end_date query string false "YYYY-MM-DD"
// @Param status query string false "Reservation status"
// @Param user_id query int false "Requester ID (admins only)"
// @Success 200 {file} file
// @Router /reportes/reservas.csv [get]
func (h *ReportHandler) ReservationsCSV(c *fiber.Ctx) error {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	q := services.ReportQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Status:    c.Query("status"),
		UserID:    c.Query("user_id"),
	}

	// Render fully before sending so a store failure never yields half a file
	var buf bytes.Buffer
	if err := h.reportService.WriteReservationsCSV(c.UserContext(), actor, q, &buf); err != nil {
		return response.FromError(c, err, redirectDashboard)
	}

	c.Attachment(services.ReportFilename(time.Now()))
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return c.Send(buf.Bytes())
}
