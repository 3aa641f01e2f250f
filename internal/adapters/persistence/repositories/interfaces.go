package repositories

import (
	"context"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/core/domain"
)

// UserRepository defines user repository interface.
// Lookups by id only resolve active users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, filter UserFilter, offset, limit int) ([]*models.User, int64, error)
	ListActiveByRole(ctx context.Context, role domain.Role) ([]*models.User, error)
	CountActiveByRole(ctx context.Context, role domain.Role) (int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdateRole(ctx context.Context, id uint, role domain.Role) error
	Deactivate(ctx context.Context, id uint) error
}

// UserFilter narrows user listings
type UserFilter struct {
	Role            domain.Role
	Search          string
	IncludeInactive bool
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
}

// MachineRepository defines the asset registry persistence
type MachineRepository interface {
	CreateWithInventory(ctx context.Context, machine *models.WashingMachine, inventory *models.Inventory) error
	GetByID(ctx context.Context, id uint) (*models.WashingMachine, error)
	List(ctx context.Context, filter MachineFilter) ([]*models.WashingMachine, error)
	ListPaged(ctx context.Context, offset, limit int) ([]*models.WashingMachine, int64, error)
	SaveWithInventory(ctx context.Context, machine *models.WashingMachine) error
	Deactivate(ctx context.Context, id uint) error
	CountByStatus(ctx context.Context) (map[domain.MachineStatus]int64, error)
}

// MachineFilter narrows catalog listings
type MachineFilter struct {
	Search   string
	Capacity string
	Status   domain.MachineStatus
}

// ReservationRepository defines reservation persistence
type ReservationRepository interface {
	Create(ctx context.Context, reservation *models.Reservation) error
	GetByID(ctx context.Context, id uint) (*models.Reservation, error)
	HasSlotHolder(ctx context.Context, machineID uint, date time.Time) (bool, error)
	List(ctx context.Context, filter ReservationFilter, offset, limit int) ([]*models.Reservation, int64, error)
	Find(ctx context.Context, filter ReservationFilter) ([]*models.Reservation, error)
	Count(ctx context.Context, filter ReservationFilter) (int64, error)
	PendingCountByMachine(ctx context.Context) ([]MachinePendingCount, error)
	UpdateWhere(ctx context.Context, id uint, guard TransitionGuard, updates map[string]interface{}) (bool, error)
}

// ReservationFilter narrows reservation queries. Zero values mean "any".
type ReservationFilter struct {
	UserID     *uint
	OperatorID *uint
	Unassigned bool
	Statuses   []domain.ReservationStatus
	From       *time.Time
	To         *time.Time
	Newest     bool
}

// TransitionGuard is the compare part of a compare-and-set update
type TransitionGuard struct {
	From       []domain.ReservationStatus
	OperatorID *uint
}

// MachinePendingCount aggregates pending reservations per machine
type MachinePendingCount struct {
	MachineID uint   `json:"machine_id"`
	Model     string `json:"model"`
	Pending   int64  `json:"pending"`
}

// PaymentRepository defines payment persistence
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByReservation(ctx context.Context, reservationID uint) ([]*models.Payment, error)
}

// NotificationRepository defines notification persistence
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	CreateBatch(ctx context.Context, notifications []*models.Notification) error
	ListByUser(ctx context.Context, userID uint, offset, limit int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, id, userID uint) (bool, error)
}
