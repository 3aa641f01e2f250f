package handlers

import (
	"strconv"
	"time"

	"washtech-rental/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

// Safe pages a UI can send the user back to after a failed action
const (
	redirectCatalog      = "/catalogo"
	redirectReservations = "/reservas"
	redirectPending      = "/admin/pendientes"
	redirectMachines     = "/admin/lavadoras"
	redirectUsers        = "/admin/usuarios"
	redirectOperator     = "/operator/dashboard"
	redirectProfile      = "/perfil"
	redirectDashboard    = "/dashboard"
)

// parseID reads a positive uint route parameter
func parseID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// requireDate reads ?date=YYYY-MM-DD
func requireDate(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("date")
	if raw == "" {
		return time.Time{}, domain.NewValidation("date", "is required")
	}
	date, err := domain.ParseDate(raw)
	if err != nil {
		return time.Time{}, domain.NewValidation("date", "must be YYYY-MM-DD")
	}
	return date, nil
}

// optionalFloat parses a numeric query value; malformed input is ignored
func optionalFloat(c *fiber.Ctx, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
