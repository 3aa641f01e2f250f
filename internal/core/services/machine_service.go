package services

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/pagination"
	"washtech-rental/internal/pkg/validation"
)

// MachineService manages the asset registry
type MachineService struct {
	machineRepo repositories.MachineRepository
}

// NewMachineService creates a new machine service
func NewMachineService(machineRepo repositories.MachineRepository) *MachineService {
	return &MachineService{machineRepo: machineRepo}
}

// CreateMachineInput represents create machine input
type CreateMachineInput struct {
	Model             string `json:"model" validate:"required,max=100"`
	Capacity          string `json:"capacity" validate:"required,max=50"`
	OperationalStatus string `json:"operational_status" validate:"omitempty,oneof=operational maintenance inactive"`
	AcquisitionDate   string `json:"acquisition_date" validate:"omitempty,date"`
	Description       string `json:"description"`
	ImageURL          string `json:"image_url" validate:"omitempty,max=255"`
	Location          string `json:"location" validate:"omitempty,max=100"`
}

// UpdateMachineInput represents update machine input. Nil fields are left as they are.
type UpdateMachineInput struct {
	Model             *string `json:"model" validate:"omitempty,max=100"`
	Capacity          *string `json:"capacity" validate:"omitempty,max=50"`
	OperationalStatus *string `json:"operational_status" validate:"omitempty,oneof=operational maintenance inactive"`
	AcquisitionDate   *string `json:"acquisition_date" validate:"omitempty,date"`
	Description       *string `json:"description"`
	ImageURL          *string `json:"image_url" validate:"omitempty,max=255"`
	Location          *string `json:"location" validate:"omitempty,max=100"`
	Availability      *bool   `json:"availability"`
}

// CatalogQuery represents catalog filters
type CatalogQuery struct {
	Search      string
	Capacity    string
	CapacityMin *float64
	CapacityMax *float64
	Status      string
}

// CreateMachine registers a machine and its inventory row atomically
func (s *MachineService) CreateMachine(ctx context.Context, input *CreateMachineInput) (*models.WashingMachine, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	status := domain.MachineOperational
	if input.OperationalStatus != "" {
		status = domain.MachineStatus(input.OperationalStatus)
	}

	machine := &models.WashingMachine{
		Model:             strings.TrimSpace(input.Model),
		Capacity:          strings.TrimSpace(input.Capacity),
		OperationalStatus: status,
		AcquisitionDate:   parseOptionalDate(input.AcquisitionDate),
		Description:       input.Description,
		ImageURL:          input.ImageURL,
		Lifecycle:         models.Lifecycle{IsActive: true},
	}
	if machine.ImageURL == "" {
		machine.ImageURL = models.DefaultMachineImage
	}

	inventory := &models.Inventory{
		Availability: status == domain.MachineOperational,
		Location:     input.Location,
		Lifecycle:    models.Lifecycle{IsActive: true},
	}

	if err := s.machineRepo.CreateWithInventory(ctx, machine, inventory); err != nil {
		return nil, fmt.Errorf("create machine: %w", err)
	}

	log.Printf("✅ Machine #%d registered (%s, %s)", machine.ID, machine.Model, machine.OperationalStatus)
	return machine, nil
}

// UpdateMachine applies field changes. A non-operational status always
// forces availability off; an operational one never turns it on by itself.
func (s *MachineService) UpdateMachine(ctx context.Context, id uint, input *UpdateMachineInput) (*models.WashingMachine, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	machine, err := s.machineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, domain.ErrMachineNotFound, "get machine")
	}

	if input.Model != nil {
		machine.Model = strings.TrimSpace(*input.Model)
	}
	if input.Capacity != nil {
		machine.Capacity = strings.TrimSpace(*input.Capacity)
	}
	if input.OperationalStatus != nil {
		machine.OperationalStatus = domain.MachineStatus(*input.OperationalStatus)
	}
	if input.AcquisitionDate != nil {
		machine.AcquisitionDate = parseOptionalDate(*input.AcquisitionDate)
	}
	if input.Description != nil {
		machine.Description = *input.Description
	}
	if input.ImageURL != nil {
		machine.ImageURL = *input.ImageURL
	}

	if machine.Inventory == nil {
		machine.Inventory = &models.Inventory{
			MachineID: machine.ID,
			Lifecycle: models.Lifecycle{IsActive: true},
		}
	}
	if input.Location != nil {
		machine.Inventory.Location = *input.Location
	}
	if input.Availability != nil {
		machine.Inventory.Availability = *input.Availability
	}
	if !machine.IsOperational() {
		machine.Inventory.Availability = false
	}

	if err := s.machineRepo.SaveWithInventory(ctx, machine); err != nil {
		return nil, fmt.Errorf("update machine: %w", err)
	}

	log.Printf("✅ Machine #%d updated (status: %s, available: %t)",
		machine.ID, machine.OperationalStatus, machine.Inventory.Availability)
	return machine, nil
}

// DeactivateMachine retires a machine and its inventory row.
// Existing reservations are not touched.
func (s *MachineService) DeactivateMachine(ctx context.Context, id uint) error {
	if err := s.machineRepo.Deactivate(ctx, id); err != nil {
		return lookup(err, domain.ErrMachineNotFound, "deactivate machine")
	}
	log.Printf("✅ Machine #%d deactivated", id)
	return nil
}

// GetMachine returns an active machine
func (s *MachineService) GetMachine(ctx context.Context, id uint) (*models.WashingMachine, error) {
	machine, err := s.machineRepo.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, domain.ErrMachineNotFound, "get machine")
	}
	return machine, nil
}

// Catalog lists active machines for browsing
func (s *MachineService) Catalog(ctx context.Context, q CatalogQuery) ([]*models.WashingMachine, error) {
	filter := repositories.MachineFilter{
		Search:   strings.TrimSpace(q.Search),
		Capacity: strings.TrimSpace(q.Capacity),
	}
	if q.Status != "" {
		status := domain.MachineStatus(q.Status)
		if !status.Valid() {
			return nil, domain.ErrInvalidMachineStatus
		}
		filter.Status = status
	}

	machines, err := s.machineRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	if q.CapacityMin == nil && q.CapacityMax == nil {
		return machines, nil
	}

	out := make([]*models.WashingMachine, 0, len(machines))
	for _, m := range machines {
		kg, ok := CapacityKg(m.Capacity)
		if !ok {
			continue
		}
		if q.CapacityMin != nil && kg < *q.CapacityMin {
			continue
		}
		if q.CapacityMax != nil && kg > *q.CapacityMax {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ListAdmin pages through active machines for the admin screen
func (s *MachineService) ListAdmin(ctx context.Context, params pagination.Params) (*pagination.Page[*models.WashingMachine], error) {
	machines, total, err := s.machineRepo.ListPaged(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	return pagination.NewPage(machines, params, total), nil
}

// IsBookable reports inventory availability combined with operational status
func IsBookable(m *models.WashingMachine) bool {
	return m.IsOperational() && m.Inventory != nil && m.Inventory.Availability
}

var capacityNumber = regexp.MustCompile(`\d+(?:[.,]\d+)?`)

// CapacityKg extracts the leading magnitude from a free-text capacity such as "15 kg"
func CapacityKg(capacity string) (float64, bool) {
	match := capacityNumber.FindString(capacity)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return nil
	}
	return &t
}
