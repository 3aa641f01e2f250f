package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/metrics"
	"washtech-rental/internal/pkg/pagination"
	"washtech-rental/internal/pkg/validation"

	"gorm.io/datatypes"
)

// ReservationService is the reservation engine: availability, booking,
// operator assignment and status transitions
type ReservationService struct {
	repos   *repositories.Repos
	tx      repositories.Transactor
	pricing PricingStrategy
}

// NewReservationService creates a new reservation service
func NewReservationService(repos *repositories.Repos, tx repositories.Transactor, pricing PricingStrategy) *ReservationService {
	return &ReservationService{
		repos:   repos,
		tx:      tx,
		pricing: pricing,
	}
}

// ============================================================
// Availability
// ============================================================

// MachineAvailability pairs a machine with its availability verdict
type MachineAvailability struct {
	Machine   *models.WashingMachine   `json:"machine"`
	Available bool                     `json:"available"`
	Reason    domain.UnavailableReason `json:"reason,omitempty"`
}

// checkAvailability is the single availability predicate. Booking and
// browsing both go through it.
func checkAvailability(ctx context.Context, reservations repositories.ReservationRepository, machine *models.WashingMachine, date time.Time) (domain.Availability, error) {
	result := domain.Availability{MachineID: machine.ID, Date: date}

	if !machine.IsOperational() {
		result.Reason = domain.ReasonNotOperational
		return result, nil
	}

	booked, err := reservations.HasSlotHolder(ctx, machine.ID, date)
	if err != nil {
		return result, fmt.Errorf("check slot: %w", err)
	}
	if booked {
		result.Reason = domain.ReasonAlreadyBooked
		return result, nil
	}

	result.Available = true
	return result, nil
}

// CheckAvailability answers whether machineID can be booked on date
func (s *ReservationService) CheckAvailability(ctx context.Context, machineID uint, date time.Time) (*MachineAvailability, error) {
	machine, err := s.repos.Machines.GetByID(ctx, machineID)
	if err != nil {
		return nil, lookup(err, domain.ErrMachineNotFound, "get machine")
	}

	verdict, err := checkAvailability(ctx, s.repos.Reservations, machine, date)
	if err != nil {
		return nil, err
	}

	return &MachineAvailability{
		Machine:   machine,
		Available: verdict.Available,
		Reason:    verdict.Reason,
	}, nil
}

// AvailabilityOn evaluates every active machine for date
func (s *ReservationService) AvailabilityOn(ctx context.Context, date time.Time) ([]*MachineAvailability, error) {
	machines, err := s.repos.Machines.List(ctx, repositories.MachineFilter{})
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}

	out := make([]*MachineAvailability, 0, len(machines))
	for _, m := range machines {
		verdict, err := checkAvailability(ctx, s.repos.Reservations, m, date)
		if err != nil {
			return nil, err
		}
		out = append(out, &MachineAvailability{Machine: m, Available: verdict.Available, Reason: verdict.Reason})
	}
	return out, nil
}

// ============================================================
// CLIENT — Booking
// ============================================================

// CreateReservationInput represents a booking request
type CreateReservationInput struct {
	MachineID       uint   `json:"machine_id" validate:"required"`
	ReservationDate string `json:"reservation_date" validate:"required,date"`
	StartTime       string `json:"start_time" validate:"required,clock"`
	EndTime         string `json:"end_time" validate:"required,clock"`
	PaymentMethod   string `json:"payment_method" validate:"omitempty,oneof=cash transfer card"`
}

// CreateReservation books a machine for one day. The availability check,
// the insert and the initial payment row commit together or not at all.
func (s *ReservationService) CreateReservation(ctx context.Context, actor domain.Actor, input *CreateReservationInput) (*models.Reservation, error) {
	// 1. Only clients book
	if !domain.HasRole(actor.Role, domain.RoleClient) {
		return nil, domain.ErrForbidden
	}

	// 2. Validate input
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	date, _ := domain.ParseDate(input.ReservationDate)
	start, _ := validation.ParseClock(input.StartTime)
	end, _ := validation.ParseClock(input.EndTime)
	if end <= start {
		return nil, domain.NewValidation("end_time", "must be after start_time")
	}
	method := domain.PaymentMethod(input.PaymentMethod)
	if method == "" {
		method = domain.PaymentCash
	}

	var reservation *models.Reservation
	err := s.tx.WithinTransaction(ctx, func(tx *repositories.Repos) error {
		// 3. Resolve machine
		machine, err := tx.Machines.GetByID(ctx, input.MachineID)
		if err != nil {
			return lookup(err, domain.ErrMachineNotFound, "get machine")
		}

		// 4. Re-run the availability predicate inside the transaction
		verdict, err := checkAvailability(ctx, tx.Reservations, machine, date)
		if err != nil {
			return err
		}
		if !verdict.Available {
			metrics.ReservationConflicts.WithLabelValues(string(verdict.Reason)).Inc()
			if verdict.Reason == domain.ReasonNotOperational {
				return domain.ErrMachineNotOperational
			}
			return domain.ErrAlreadyBooked
		}

		// 5. Price and persist; the unique slot key rejects a concurrent winner
		slot := models.SlotKey(machine.ID, date)
		reservation = &models.Reservation{
			UserID:          actor.UserID,
			MachineID:       machine.ID,
			ReservationDate: datatypes.Date(date),
			StartTime:       datatypes.Time(start),
			EndTime:         datatypes.Time(end),
			Status:          domain.StatusPending,
			TotalPayment:    s.pricing.Quote(machine, date, start, end),
			SlotKey:         &slot,
			Lifecycle:       models.Lifecycle{IsActive: true},
		}
		if err := tx.Reservations.Create(ctx, reservation); err != nil {
			if isUniqueViolation(err) {
				metrics.ReservationConflicts.WithLabelValues(string(domain.ReasonAlreadyBooked)).Inc()
				return domain.ErrAlreadyBooked
			}
			return fmt.Errorf("create reservation: %w", err)
		}

		// 6. Open a pending payment for the quoted total
		payment := &models.Payment{
			ReservationID: reservation.ID,
			Amount:        reservation.TotalPayment,
			Method:        method,
			Status:        domain.PaymentPending,
			Lifecycle:     models.Lifecycle{IsActive: true},
		}
		if err := tx.Payments.Create(ctx, payment); err != nil {
			return fmt.Errorf("create payment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationsCreated.Inc()
	log.Printf("✅ Reservation #%d created (User: %d, Machine: %d, Date: %s)",
		reservation.ID, actor.UserID, input.MachineID, input.ReservationDate)

	return s.reload(ctx, reservation.ID)
}

// ============================================================
// ADMIN — Operator assignment
// ============================================================

// AssignOperator sets or overwrites the operator of a pending reservation
func (s *ReservationService) AssignOperator(ctx context.Context, actor domain.Actor, reservationID, operatorID uint) (*models.Reservation, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	err := s.tx.WithinTransaction(ctx, func(tx *repositories.Repos) error {
		// 1. Reservation must be pending
		r, err := tx.Reservations.GetByID(ctx, reservationID)
		if err != nil {
			return lookup(err, domain.ErrReservationNotFound, "get reservation")
		}
		if r.Status != domain.StatusPending {
			return domain.ErrNotPending
		}

		// 2. Target must be an active operator
		op, err := tx.Users.GetByID(ctx, operatorID)
		if err != nil {
			return lookup(err, domain.ErrOperatorNotFound, "get operator")
		}
		if op.Role != domain.RoleOperator {
			return domain.ErrNotAnOperator
		}

		// 3. Compare-and-set on the pending status
		ok, err := tx.Reservations.UpdateWhere(ctx, r.ID,
			repositories.TransitionGuard{From: []domain.ReservationStatus{domain.StatusPending}},
			map[string]interface{}{"assigned_operator_id": op.ID},
		)
		if err != nil {
			return fmt.Errorf("assign operator: %w", err)
		}
		if !ok {
			return domain.ErrConcurrentUpdate
		}

		// 4. Tell the operator, and the one being replaced
		notes := []*models.Notification{
			newNotification(op.ID, fmt.Sprintf("Se te asignó la reserva #%d para el %s", r.ID, r.Date().Format(domain.DateLayout))),
		}
		if r.AssignedOperatorID != nil && *r.AssignedOperatorID != op.ID {
			notes = append(notes, newNotification(*r.AssignedOperatorID, fmt.Sprintf("La reserva #%d fue reasignada a otro operador", r.ID)))
		}
		return tx.Notifications.CreateBatch(ctx, notes)
	})
	if err != nil {
		return nil, err
	}

	metrics.OperatorAssignments.WithLabelValues("assign").Inc()
	log.Printf("✅ Reservation #%d assigned to operator %d by user %d", reservationID, operatorID, actor.UserID)

	return s.reload(ctx, reservationID)
}

// UnassignOperator clears the operator of a pending reservation
func (s *ReservationService) UnassignOperator(ctx context.Context, actor domain.Actor, reservationID uint) (*models.Reservation, error) {
	if !actor.Role.IsAdmin() {
		return nil, domain.ErrForbidden
	}

	err := s.tx.WithinTransaction(ctx, func(tx *repositories.Repos) error {
		r, err := tx.Reservations.GetByID(ctx, reservationID)
		if err != nil {
			return lookup(err, domain.ErrReservationNotFound, "get reservation")
		}
		if r.Status != domain.StatusPending {
			return domain.ErrNotPending
		}

		ok, err := tx.Reservations.UpdateWhere(ctx, r.ID,
			repositories.TransitionGuard{From: []domain.ReservationStatus{domain.StatusPending}},
			map[string]interface{}{"assigned_operator_id": nil},
		)
		if err != nil {
			return fmt.Errorf("unassign operator: %w", err)
		}
		if !ok {
			return domain.ErrConcurrentUpdate
		}

		if r.AssignedOperatorID != nil {
			return tx.Notifications.Create(ctx, newNotification(*r.AssignedOperatorID,
				fmt.Sprintf("Ya no estás asignado a la reserva #%d", r.ID)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OperatorAssignments.WithLabelValues("unassign").Inc()
	log.Printf("✅ Reservation #%d unassigned by user %d", reservationID, actor.UserID)

	return s.reload(ctx, reservationID)
}

// ============================================================
// Status transitions
// ============================================================

// transition describes one guarded status change
type transition struct {
	reservationID uint
	to            domain.ReservationStatus
	from          []domain.ReservationStatus
	stateErr      error
	// authorize runs before the state check so callers without rights
	// learn nothing about the reservation's status
	authorize     func(r *models.Reservation) error
	operatorGuard *uint
	extra         map[string]interface{}
	notify        func(r *models.Reservation) *models.Notification
	actorID       uint
}

func (s *ReservationService) apply(ctx context.Context, t transition) (*models.Reservation, error) {
	err := s.tx.WithinTransaction(ctx, func(tx *repositories.Repos) error {
		r, err := tx.Reservations.GetByID(ctx, t.reservationID)
		if err != nil {
			return lookup(err, domain.ErrReservationNotFound, "get reservation")
		}

		if err := t.authorize(r); err != nil {
			return err
		}
		if !statusIn(r.Status, t.from) || !r.Status.CanTransitionTo(t.to) {
			return t.stateErr
		}

		updates := map[string]interface{}{"status": t.to}
		if !t.to.HoldsSlot() {
			updates["slot_key"] = nil
		}
		for k, v := range t.extra {
			updates[k] = v
		}

		ok, err := tx.Reservations.UpdateWhere(ctx, r.ID,
			repositories.TransitionGuard{From: t.from, OperatorID: t.operatorGuard},
			updates,
		)
		if err != nil {
			return fmt.Errorf("update reservation status: %w", err)
		}
		if !ok {
			return domain.ErrConcurrentUpdate
		}

		if t.notify != nil {
			if n := t.notify(r); n != nil {
				return tx.Notifications.Create(ctx, n)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationTransitions.WithLabelValues(string(t.to)).Inc()
	log.Printf("✅ Reservation #%d -> %s (by user %d)", t.reservationID, t.to, t.actorID)

	return s.reload(ctx, t.reservationID)
}

func requireAssigned(operatorID uint) func(r *models.Reservation) error {
	return func(r *models.Reservation) error {
		if !r.IsAssignedTo(operatorID) {
			return domain.ErrNotAssignedOperator
		}
		return nil
	}
}

// Deliver marks a pending reservation delivered by its assigned operator
func (s *ReservationService) Deliver(ctx context.Context, reservationID, operatorID uint) (*models.Reservation, error) {
	return s.apply(ctx, transition{
		reservationID: reservationID,
		to:            domain.StatusDelivered,
		from:          []domain.ReservationStatus{domain.StatusPending},
		stateErr:      domain.NewState("only pending reservations can be delivered"),
		authorize:     requireAssigned(operatorID),
		operatorGuard: &operatorID,
		notify: func(r *models.Reservation) *models.Notification {
			return newNotification(r.UserID, fmt.Sprintf("Tu reserva #%d fue entregada", r.ID))
		},
		actorID: operatorID,
	})
}

// OperatorCancel cancels a pending or confirmed reservation assigned to
// operatorID and releases the assignment
func (s *ReservationService) OperatorCancel(ctx context.Context, reservationID, operatorID uint) (*models.Reservation, error) {
	return s.apply(ctx, transition{
		reservationID: reservationID,
		to:            domain.StatusCancelled,
		from:          domain.SlotHoldingStatuses,
		stateErr:      domain.NewState("only pending or confirmed reservations can be cancelled"),
		authorize:     requireAssigned(operatorID),
		operatorGuard: &operatorID,
		extra:         map[string]interface{}{"assigned_operator_id": nil},
		notify: func(r *models.Reservation) *models.Notification {
			return newNotification(r.UserID, fmt.Sprintf("Tu reserva #%d fue cancelada por el operador", r.ID))
		},
		actorID: operatorID,
	})
}

// ClientCancel cancels a pending reservation on behalf of its owner or an
// admin. The assigned operator, if any, is kept on the record.
func (s *ReservationService) ClientCancel(ctx context.Context, actor domain.Actor, reservationID uint) (*models.Reservation, error) {
	return s.apply(ctx, transition{
		reservationID: reservationID,
		to:            domain.StatusCancelled,
		from:          []domain.ReservationStatus{domain.StatusPending},
		stateErr:      domain.NewState("only pending reservations can be cancelled"),
		authorize: func(r *models.Reservation) error {
			if r.UserID != actor.UserID && !actor.Role.IsAdmin() {
				return domain.ErrNotReservationOwner
			}
			return nil
		},
		notify: func(r *models.Reservation) *models.Notification {
			if r.AssignedOperatorID == nil {
				return nil
			}
			return newNotification(*r.AssignedOperatorID, fmt.Sprintf("La reserva #%d fue cancelada por el cliente", r.ID))
		},
		actorID: actor.UserID,
	})
}

// ============================================================
// Reads
// ============================================================

// GetForActor returns a reservation the actor is allowed to see
func (s *ReservationService) GetForActor(ctx context.Context, actor domain.Actor, reservationID uint) (*models.Reservation, error) {
	r, err := s.repos.Reservations.GetByID(ctx, reservationID)
	if err != nil {
		return nil, lookup(err, domain.ErrReservationNotFound, "get reservation")
	}

	switch {
	case actor.Role.IsAdmin():
	case actor.Role == domain.RoleOperator:
		if !r.IsAssignedTo(actor.UserID) {
			return nil, domain.ErrNotAssignedOperator
		}
	default:
		if r.UserID != actor.UserID {
			return nil, domain.ErrNotReservationOwner
		}
	}
	return r, nil
}

// ListForActor pages through the reservations visible to actor, newest first
func (s *ReservationService) ListForActor(ctx context.Context, actor domain.Actor, params pagination.Params) (*pagination.Page[*models.ReservationResponse], error) {
	filter := repositories.ReservationFilter{Newest: true}
	switch {
	case actor.Role.IsAdmin():
	case actor.Role == domain.RoleOperator:
		filter.OperatorID = &actor.UserID
	default:
		filter.UserID = &actor.UserID
	}

	rows, total, err := s.repos.Reservations.List(ctx, filter, params.Offset, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return pagination.NewPage(toResponses(rows), params, total), nil
}

func (s *ReservationService) reload(ctx context.Context, id uint) (*models.Reservation, error) {
	r, err := s.repos.Reservations.GetByID(ctx, id)
	if err != nil {
		return nil, lookup(err, domain.ErrReservationNotFound, "reload reservation")
	}
	return r, nil
}

func statusIn(s domain.ReservationStatus, set []domain.ReservationStatus) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func toResponses(rows []*models.Reservation) []*models.ReservationResponse {
	out := make([]*models.ReservationResponse, len(rows))
	for i, r := range rows {
		out[i] = r.ToResponse()
	}
	return out
}

func newNotification(userID uint, message string) *models.Notification {
	return &models.Notification{
		UserID:    userID,
		Message:   message,
		Lifecycle: models.Lifecycle{IsActive: true},
	}
}
