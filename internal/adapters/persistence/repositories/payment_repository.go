package repositories

import (
	"context"

	"washtech-rental/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// paymentRepository implements PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// Create records a payment
func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

// ListByReservation lists active payments of a reservation, oldest first
func (r *paymentRepository) ListByReservation(ctx context.Context, reservationID uint) ([]*models.Payment, error) {
	var payments []*models.Payment
	err := r.db.WithContext(ctx).
		Scopes(models.Active(models.TablePayments)).
		Where("reservation_id = ?", reservationID).
		Order("paid_at ASC").
		Order("id ASC").
		Find(&payments).Error
	return payments, err
}
