package repositories

import (
	"context"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/core/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// reservationRepository implements ReservationRepository interface
type reservationRepository struct {
	db *gorm.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *gorm.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Scopes(models.Active(models.TableReservations))
}

func (r *reservationRepository) withRelations(q *gorm.DB) *gorm.DB {
	return q.
		Preload("User").
		Preload("Machine").
		Preload("AssignedOperator")
}

func (r *reservationRepository) applyFilter(q *gorm.DB, f ReservationFilter) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("reservations.user_id = ?", *f.UserID)
	}
	if f.OperatorID != nil {
		q = q.Where("reservations.assigned_operator_id = ?", *f.OperatorID)
	}
	if f.Unassigned {
		q = q.Where("reservations.assigned_operator_id IS NULL")
	}
	if len(f.Statuses) > 0 {
		q = q.Where("reservations.status IN ?", domain.StatusStrings(f.Statuses...))
	}
	if f.From != nil {
		q = q.Where("reservations.reservation_date >= ?", datatypes.Date(*f.From))
	}
	if f.To != nil {
		q = q.Where("reservations.reservation_date <= ?", datatypes.Date(*f.To))
	}
	return q
}

func (r *reservationRepository) order(q *gorm.DB, f ReservationFilter) *gorm.DB {
	if f.Newest {
		return q.Order("reservations.created_at DESC").Order("reservations.id DESC")
	}
	return q.Order("reservations.reservation_date ASC").Order("reservations.id ASC")
}

// Create inserts a reservation
func (r *reservationRepository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).
		Omit("User", "Machine", "AssignedOperator", "Payments").
		Create(reservation).Error
}

// GetByID returns an active reservation with its relations
func (r *reservationRepository) GetByID(ctx context.Context, id uint) (*models.Reservation, error) {
	var reservation models.Reservation
	err := r.withRelations(r.base(ctx)).Where("reservations.id = ?", id).First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// HasSlotHolder reports whether an active pending/confirmed reservation
// exists for (machineID, date)
func (r *reservationRepository) HasSlotHolder(ctx context.Context, machineID uint, date time.Time) (bool, error) {
	var count int64
	err := r.base(ctx).
		Where("washing_machine_id = ? AND reservation_date = ?", machineID, datatypes.Date(date)).
		Where("status IN ?", domain.StatusStrings(domain.SlotHoldingStatuses...)).
		Count(&count).Error
	return count > 0, err
}

// List returns a page of reservations matching filter
func (r *reservationRepository) List(ctx context.Context, filter ReservationFilter, offset, limit int) ([]*models.Reservation, int64, error) {
	var reservations []*models.Reservation
	var total int64

	if err := r.applyFilter(r.base(ctx), filter).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q := r.order(r.withRelations(r.applyFilter(r.base(ctx), filter)), filter)
	if err := q.Offset(offset).Limit(limit).Find(&reservations).Error; err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

// Find returns every reservation matching filter
func (r *reservationRepository) Find(ctx context.Context, filter ReservationFilter) ([]*models.Reservation, error) {
	var reservations []*models.Reservation
	q := r.order(r.withRelations(r.applyFilter(r.base(ctx), filter)), filter)
	err := q.Find(&reservations).Error
	return reservations, err
}

// Count counts reservations matching filter
func (r *reservationRepository) Count(ctx context.Context, filter ReservationFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.base(ctx), filter).Count(&count).Error
	return count, err
}

// PendingCountByMachine aggregates pending reservations per machine
func (r *reservationRepository) PendingCountByMachine(ctx context.Context) ([]MachinePendingCount, error) {
	var rows []MachinePendingCount
	err := r.base(ctx).
		Select("reservations.washing_machine_id AS machine_id, washing_machines.model AS model, COUNT(*) AS pending").
		Joins("JOIN washing_machines ON washing_machines.id = reservations.washing_machine_id").
		Where("reservations.status = ?", domain.StatusPending).
		Group("reservations.washing_machine_id, washing_machines.model").
		Order("pending DESC").
		Scan(&rows).Error
	return rows, err
}

// UpdateWhere applies updates only if the reservation still matches guard.
// It reports false when another writer got there first.
func (r *reservationRepository) UpdateWhere(ctx context.Context, id uint, guard TransitionGuard, updates map[string]interface{}) (bool, error) {
	q := r.base(ctx).Where("id = ?", id)
	if len(guard.From) > 0 {
		q = q.Where("status IN ?", domain.StatusStrings(guard.From...))
	}
	if guard.OperatorID != nil {
		q = q.Where("assigned_operator_id = ?", *guard.OperatorID)
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
