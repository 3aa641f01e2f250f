package repositories

import (
	"context"
	"strings"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/core/domain"

	"gorm.io/gorm"
)

// machineRepository implements MachineRepository interface
type machineRepository struct {
	db *gorm.DB
}

// NewMachineRepository creates a new machine repository
func NewMachineRepository(db *gorm.DB) MachineRepository {
	return &machineRepository{db: db}
}

func (r *machineRepository) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Scopes(models.Active(models.TableMachines)).
		Preload("Inventory", models.Active(models.TableInventory))
}

// ============================================================
// Writes (all-or-nothing)
// ============================================================

// CreateWithInventory inserts the machine and its inventory row in one transaction
func (r *machineRepository) CreateWithInventory(ctx context.Context, machine *models.WashingMachine, inventory *models.Inventory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Inventory").Create(machine).Error; err != nil {
			return err
		}
		inventory.MachineID = machine.ID
		if err := tx.Create(inventory).Error; err != nil {
			return err
		}
		machine.Inventory = inventory
		return nil
	})
}

// SaveWithInventory persists machine fields and its inventory row together
func (r *machineRepository) SaveWithInventory(ctx context.Context, machine *models.WashingMachine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Inventory").Save(machine).Error; err != nil {
			return err
		}
		if machine.Inventory == nil {
			return nil
		}
		machine.Inventory.MachineID = machine.ID
		return tx.Save(machine.Inventory).Error
	})
}

// Deactivate retires the machine and cascades to its inventory row
func (r *machineRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.WashingMachine{}).
			Scopes(models.Active(models.TableMachines)).
			Where("id = ?", id).
			Update("is_active", false)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Inventory{}).
			Where("washing_machine_id = ?", id).
			Update("is_active", false).Error
	})
}

// ============================================================
// Reads
// ============================================================

// GetByID returns an active machine with its inventory
func (r *machineRepository) GetByID(ctx context.Context, id uint) (*models.WashingMachine, error) {
	var machine models.WashingMachine
	err := r.active(ctx).Where("id = ?", id).First(&machine).Error
	if err != nil {
		return nil, err
	}
	return &machine, nil
}

// List returns active machines matching filter
func (r *machineRepository) List(ctx context.Context, filter MachineFilter) ([]*models.WashingMachine, error) {
	var machines []*models.WashingMachine

	q := r.active(ctx)
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		q = q.Where("LOWER(model) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if filter.Capacity != "" {
		q = q.Where("LOWER(capacity) LIKE ?", "%"+strings.ToLower(filter.Capacity)+"%")
	}
	if filter.Status != "" {
		q = q.Where("operational_status = ?", filter.Status)
	}

	err := q.Order("model ASC").Find(&machines).Error
	return machines, err
}

// ListPaged lists active machines for the admin screen
func (r *machineRepository) ListPaged(ctx context.Context, offset, limit int) ([]*models.WashingMachine, int64, error) {
	var machines []*models.WashingMachine
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.WashingMachine{}).
		Scopes(models.Active(models.TableMachines)).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := r.active(ctx).Order("id DESC").Offset(offset).Limit(limit).Find(&machines).Error; err != nil {
		return nil, 0, err
	}
	return machines, total, nil
}

// CountByStatus counts active machines grouped by operational status
func (r *machineRepository) CountByStatus(ctx context.Context) (map[domain.MachineStatus]int64, error) {
	type row struct {
		OperationalStatus domain.MachineStatus
		Count             int64
	}
	var rows []row

	err := r.db.WithContext(ctx).Model(&models.WashingMachine{}).
		Scopes(models.Active(models.TableMachines)).
		Select("operational_status, COUNT(*) AS count").
		Group("operational_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := map[domain.MachineStatus]int64{
		domain.MachineOperational: 0,
		domain.MachineMaintenance: 0,
		domain.MachineInactive:    0,
	}
	for _, r := range rows {
		counts[r.OperationalStatus] = r.Count
	}
	return counts, nil
}
