package services

import (
	"context"
	"fmt"
	"log"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/validation"

	"github.com/shopspring/decimal"
)

// PaymentService records stub payments against reservations.
// Payments never move a reservation's status.
type PaymentService struct {
	paymentRepo  repositories.PaymentRepository
	reservations *ReservationService
}

// NewPaymentService creates a new payment service
func NewPaymentService(paymentRepo repositories.PaymentRepository, reservations *ReservationService) *PaymentService {
	return &PaymentService{paymentRepo: paymentRepo, reservations: reservations}
}

// RecordPaymentInput represents a payment entry
type RecordPaymentInput struct {
	Amount string `json:"amount" validate:"required"`
	Method string `json:"method" validate:"required"`
	Status string `json:"status"`
}

// List returns the payments of a reservation visible to actor
func (s *PaymentService) List(ctx context.Context, actor domain.Actor, reservationID uint) ([]*models.Payment, error) {
	if _, err := s.reservations.GetForActor(ctx, actor, reservationID); err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.ListByReservation(ctx, reservationID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// Record adds a payment. Only the reservation owner or an admin may do it.
func (s *PaymentService) Record(ctx context.Context, actor domain.Actor, reservationID uint, input *RecordPaymentInput) (*models.Payment, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, domain.NewValidation("amount", "must be a positive number")
	}

	method := domain.PaymentMethod(input.Method)
	switch method {
	case domain.PaymentCash, domain.PaymentTransfer, domain.PaymentCard:
	default:
		return nil, domain.ErrPaymentInvalidMethod
	}

	status := domain.PaymentPending
	if input.Status != "" {
		status = domain.PaymentStatus(input.Status)
	}
	switch status {
	case domain.PaymentPending, domain.PaymentCompleted, domain.PaymentFailed:
	default:
		return nil, domain.ErrPaymentInvalidStatus
	}

	r, err := s.reservations.GetForActor(ctx, actor, reservationID)
	if err != nil {
		return nil, err
	}
	if r.UserID != actor.UserID && !actor.Role.IsAdmin() {
		return nil, domain.ErrNotReservationOwner
	}

	payment := &models.Payment{
		ReservationID: r.ID,
		Amount:        amount.Round(2),
		Method:        method,
		Status:        status,
		Lifecycle:     models.Lifecycle{IsActive: true},
	}
	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}

	log.Printf("✅ Payment #%d recorded for reservation #%d (%s %s)", payment.ID, r.ID, payment.Amount.StringFixed(2), method)
	return payment, nil
}
