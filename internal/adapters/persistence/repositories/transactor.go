package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Repos groups the repositories bound to one connection or transaction
type Repos struct {
	Users         UserRepository
	Machines      MachineRepository
	Reservations  ReservationRepository
	Payments      PaymentRepository
	Notifications NotificationRepository
}

// NewRepos binds every repository to db
func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Users:         NewUserRepository(db),
		Machines:      NewMachineRepository(db),
		Reservations:  NewReservationRepository(db),
		Payments:      NewPaymentRepository(db),
		Notifications: NewNotificationRepository(db),
	}
}

// Transactor runs a unit of work atomically
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx *Repos) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

// NewTransactor creates a transactor backed by db
func NewTransactor(db *gorm.DB) Transactor {
	return &gormTransactor{db: db}
}

// WithinTransaction commits when fn returns nil and rolls back otherwise
func (t *gormTransactor) WithinTransaction(ctx context.Context, fn func(tx *Repos) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepos(tx))
	})
}
