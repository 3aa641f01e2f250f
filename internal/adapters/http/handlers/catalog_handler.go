package handlers

import (
	"washtech-rental/internal/core/services"
	"washtech-rental/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler serves the public machine catalog and availability checks
type CatalogHandler struct {
	machineService     *services.MachineService
	reservationService *services.ReservationService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(machineService *services.MachineService, reservationService *services.ReservationService) *CatalogHandler {
	return &CatalogHandler{
		machineService:     machineService,
		reservationService: reservationService,
	}
}

// CatalogItem is one machine as shown in the catalog
type CatalogItem struct {
	ID                uint   `json:"id"`
	Model             string `json:"model"`
	Capacity          string `json:"capacity"`
	OperationalStatus string `json:"operational_status"`
	Description       string `json:"description"`
	ImageURL          string `json:"image_url"`
	Available         bool   `json:"available"`
}

// List handles the catalog listing
// @Summary Machine catalog
// @Description Active machines filtered by search, capacity, capacity range and status
// @Tags Catalog
// @Produce json
// @Param search query string false "Model or description"
// @Param capacity query string false "Capacity text"
// @Param capacity_min query number false "Minimum capacity in kg"
// @Param capacity_max query number false "Maximum capacity in kg"
// @Param status query string false "operational, maintenance or inactive"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /catalogo [get]
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	q := services.CatalogQuery{
		Search:      c.Query("search"),
		Capacity:    c.Query("capacity"),
		CapacityMin: optionalFloat(c, "capacity_min"),
		CapacityMax: optionalFloat(c, "capacity_max"),
		Status:      c.Query("status"),
	}

	machines, err := h.machineService.Catalog(c.UserContext(), q)
	if err != nil {
		return response.FromError(c, err, redirectCatalog)
	}

	items := make([]CatalogItem, 0, len(machines))
	for _, m := range machines {
		items = append(items, CatalogItem{
			ID:                m.ID,
			Model:             m.Model,
			Capacity:          m.Capacity,
			OperationalStatus: string(m.OperationalStatus),
			Description:       m.Description,
			ImageURL:          m.ImageURL,
			Available:         services.IsBookable(m),
		})
	}

	return response.Success(c, "Catalog retrieved successfully", items)
}

// Detail handles a single machine page
// @Summary Machine detail
// @Description With ?date= it also reports whether the machine can be booked that day
// @Tags Catalog
// @Produce json
// @Param id path int true "Machine ID"
// @Param date query string false "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /catalogo/lavadora/{id} [get]
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := parseID(c, "id")
	if !ok {
		return response.BadRequest(c, "Invalid machine ID")
	}

	machine, err := h.machineService.GetMachine(c.UserContext(), id)
	if err != nil {
		return response.FromError(c, err, redirectCatalog)
	}

	data := fiber.Map{
		"machine":   machine,
		"available": services.IsBookable(machine),
	}

	if c.Query("date") != "" {
		date, err := requireDate(c)
		if err != nil {
			return response.FromError(c, err, redirectCatalog)
		}
		verdict, err := h.reservationService.CheckAvailability(c.UserContext(), id, date)
		if err != nil {
			return response.FromError(c, err, redirectCatalog)
		}
		data["availability"] = fiber.Map{
			"date":      c.Query("date"),
			"available": verdict.Available,
			"reason":    verdict.Reason,
		}
	}

	return response.Success(c, "Machine retrieved successfully", data)
}

// AvailabilityOn lists every active machine with its verdict for a date
// @Summary Availability by date
// @Tags Catalog
// @Produce json
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /catalogo/disponibilidad [get]
func (h *CatalogHandler) AvailabilityOn(c *fiber.Ctx) error {
	date, err := requireDate(c)
	if err != nil {
		return response.FromError(c, err, redirectCatalog)
	}

	result, err := h.reservationService.AvailabilityOn(c.UserContext(), date)
	if err != nil {
		return response.FromError(c, err, redirectCatalog)
	}

	return response.Success(c, "Availability retrieved successfully", result)
}

// CheckAvailability answers the availability JSON endpoint
// @Summary Check machine availability
// @Description Returns {available, reason?, machine?} for one machine and date
// @Tags Catalog
// @Produce json
// @Param machine_id path int true "Machine ID"
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {object} services.MachineAvailability
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /catalogo/api/disponibilidad/{machine_id} [get]
func (h *CatalogHandler) CheckAvailability(c *fiber.Ctx) error {
	id, ok := parseID(c, "machine_id")
	if !ok {
		return response.BadRequest(c, "Invalid machine ID")
	}

	date, err := requireDate(c)
	if err != nil {
		return response.FromError(c, err, redirectCatalog)
	}

	result, err := h.reservationService.CheckAvailability(c.UserContext(), id, date)
	if err != nil {
		return response.FromError(c, err, redirectCatalog)
	}

	return c.JSON(result)
}
