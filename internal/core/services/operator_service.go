package services

import (
	"context"
	"fmt"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
)

// OperatorService is the operator's view of the reservation engine.
// Every read and write is scoped to reservations assigned to the acting operator.
type OperatorService struct {
	reservationRepo repositories.ReservationRepository
	engine          ReservationTransitioner
	now             Clock
}

// NewOperatorService creates a new operator service
func NewOperatorService(reservationRepo repositories.ReservationRepository, engine ReservationTransitioner) *OperatorService {
	return &OperatorService{
		reservationRepo: reservationRepo,
		engine:          engine,
		now:             time.Now,
	}
}

// OperatorDashboard represents the operator's workload
type OperatorDashboard struct {
	PendingReservations []*models.ReservationResponse `json:"pending_reservations"`
	DeliveredToday      int64                         `json:"delivered_today"`
	TotalCompleted      int64                         `json:"total_completed"`
	InProgress          int64                         `json:"in_progress"`
}

// Dashboard returns the counts and pending list for operatorID
func (s *OperatorService) Dashboard(ctx context.Context, operatorID uint) (*OperatorDashboard, error) {
	mine := func(statuses ...domain.ReservationStatus) repositories.ReservationFilter {
		return repositories.ReservationFilter{OperatorID: &operatorID, Statuses: statuses}
	}

	// 1. Pending assignments, earliest first
	pending, err := s.reservationRepo.Find(ctx, mine(domain.StatusPending))
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}

	// 2. Delivered today
	day := today(s.now())
	deliveredToday := mine(domain.StatusDelivered)
	deliveredToday.From = &day
	deliveredToday.To = &day
	todayCount, err := s.reservationRepo.Count(ctx, deliveredToday)
	if err != nil {
		return nil, fmt.Errorf("count delivered today: %w", err)
	}

	// 3. Lifetime completions
	completed, err := s.reservationRepo.Count(ctx, mine(domain.StatusDelivered))
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}

	// 4. In progress (confirmed)
	inProgress, err := s.reservationRepo.Count(ctx, mine(domain.StatusConfirmed))
	if err != nil {
		return nil, fmt.Errorf("count in progress: %w", err)
	}

	return &OperatorDashboard{
		PendingReservations: toResponses(pending),
		DeliveredToday:      todayCount,
		TotalCompleted:      completed,
		InProgress:          inProgress,
	}, nil
}

// ViewAssigned returns a reservation only if it is assigned to operatorID
func (s *OperatorService) ViewAssigned(ctx context.Context, reservationID, operatorID uint) (*models.Reservation, error) {
	r, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, lookup(err, domain.ErrReservationNotFound, "get reservation")
	}
	if !r.IsAssignedTo(operatorID) {
		return nil, domain.ErrNotAssignedOperator
	}
	return r, nil
}

// Deliver marks an assigned reservation delivered
func (s *OperatorService) Deliver(ctx context.Context, reservationID, operatorID uint) (*models.Reservation, error) {
	return s.engine.Deliver(ctx, reservationID, operatorID)
}

// Cancel cancels an assigned reservation and releases it
func (s *OperatorService) Cancel(ctx context.Context, reservationID, operatorID uint) (*models.Reservation, error) {
	return s.engine.OperatorCancel(ctx, reservationID, operatorID)
}
