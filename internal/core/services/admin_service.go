package services

import (
	"context"
	"fmt"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
)

// AdminService aggregates the pending-reservation oversight views
type AdminService struct {
	reservationRepo repositories.ReservationRepository
}

// NewAdminService creates a new admin service
func NewAdminService(reservationRepo repositories.ReservationRepository) *AdminService {
	return &AdminService{reservationRepo: reservationRepo}
}

// PendingOverview splits pending reservations by assignment
type PendingOverview struct {
	Unassigned []*models.ReservationResponse     `json:"unassigned"`
	Assigned   []*models.ReservationResponse     `json:"assigned"`
	ByMachine  []repositories.MachinePendingCount `json:"by_machine"`
}

// PendingOverview returns the unassigned and assigned pending lists plus
// per-machine pending counts
func (s *AdminService) PendingOverview(ctx context.Context, actor domain.Actor) (*PendingOverview, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	pending := []domain.ReservationStatus{domain.StatusPending}

	unassigned, err := s.reservationRepo.Find(ctx, repositories.ReservationFilter{
		Statuses:   pending,
		Unassigned: true,
	})
	if err != nil {
		return nil, fmt.Errorf("list unassigned: %w", err)
	}

	all, err := s.reservationRepo.Find(ctx, repositories.ReservationFilter{Statuses: pending})
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	assigned := make([]*models.Reservation, 0, len(all))
	for _, r := range all {
		if r.AssignedOperatorID != nil {
			assigned = append(assigned, r)
		}
	}

	byMachine, err := s.reservationRepo.PendingCountByMachine(ctx)
	if err != nil {
		return nil, fmt.Errorf("count pending by machine: %w", err)
	}
	if byMachine == nil {
		byMachine = []repositories.MachinePendingCount{}
	}

	return &PendingOverview{
		Unassigned: toResponses(unassigned),
		Assigned:   toResponses(assigned),
		ByMachine:  byMachine,
	}, nil
}
