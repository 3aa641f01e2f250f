package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"washtech-rental/internal/adapters/persistence/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PricingStrategy computes the total charged for a reservation
type PricingStrategy interface {
	Quote(machine *models.WashingMachine, date time.Time, start, end time.Duration) decimal.Decimal
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// ReservationTransitioner is the slice of the engine the operator workflow needs
type ReservationTransitioner interface {
	Deliver(ctx context.Context, reservationID, operatorID uint) (*models.Reservation, error)
	OperatorCancel(ctx context.Context, reservationID, operatorID uint) (*models.Reservation, error)
}

// today truncates now to a UTC calendar day
func today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// lookup maps gorm.ErrRecordNotFound to notFound and wraps anything else
func lookup(err error, notFound error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return fmt.Errorf("%s: %w", what, err)
}

// isUniqueViolation recognizes duplicate-key failures across drivers
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "duplicate key")
}
