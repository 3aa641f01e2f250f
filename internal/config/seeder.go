package config

import (
	"context"
	"log"
	"strings"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db  *gorm.DB
	cfg *Config
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB, cfg *Config) *Seeder {
	return &Seeder{db: db, cfg: cfg}
}

// Run executes all seeders
func (s *Seeder) Run(ctx context.Context) error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedSuperAdmin(ctx); err != nil {
		log.Printf("⚠️ Superadmin seeder skipped: %v", err)
	}

	if s.cfg.IsDev() {
		if err := s.seedMachines(ctx); err != nil {
			log.Printf("⚠️ Machine seeder skipped: %v", err)
		}
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedSuperAdmin creates the bootstrap superadmin when none exists.
// Without SEED_SUPERADMIN_PASSWORD nothing is created.
func (s *Seeder) seedSuperAdmin(ctx context.Context) error {
	users := repositories.NewUserRepository(s.db)

	count, err := users.CountActiveByRole(ctx, domain.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if s.cfg.Seed.SuperAdminPassword == "" {
		log.Println("⚠️ No superadmin exists and SEED_SUPERADMIN_PASSWORD is empty")
		return nil
	}

	hashedPassword, err := password.Hash(s.cfg.Seed.SuperAdminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		Name:      "Super Admin",
		Email:     strings.ToLower(s.cfg.Seed.SuperAdminEmail),
		Password:  hashedPassword,
		Role:      domain.RoleSuperAdmin,
		Lifecycle: models.Lifecycle{IsActive: true},
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	log.Printf("✅ Superadmin created: %s", admin.Email)
	return nil
}

// seedMachines registers a few sample machines into an empty registry
func (s *Seeder) seedMachines(ctx context.Context) error {
	machines := repositories.NewMachineRepository(s.db)

	_, total, err := machines.ListPaged(ctx, 0, 1)
	if err != nil {
		return err
	}
	if total > 0 {
		return nil
	}

	acquired := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	samples := []struct {
		model, capacity, location string
		status                    domain.MachineStatus
	}{
		{"LG TurboWash 18", "18 kg", "Bodega Norte", domain.MachineOperational},
		{"Samsung EcoBubble 15", "15 kg", "Bodega Norte", domain.MachineOperational},
		{"Whirlpool Xpert 12", "12 kg", "Bodega Sur", domain.MachineMaintenance},
	}

	for _, sm := range samples {
		machine := &models.WashingMachine{
			Model:             sm.model,
			Capacity:          sm.capacity,
			OperationalStatus: sm.status,
			AcquisitionDate:   &acquired,
			Description:       "Sample machine",
			ImageURL:          models.DefaultMachineImage,
			Lifecycle:         models.Lifecycle{IsActive: true},
		}
		inventory := &models.Inventory{
			Availability: sm.status == domain.MachineOperational,
			Location:     sm.location,
			Lifecycle:    models.Lifecycle{IsActive: true},
		}
		if err := machines.CreateWithInventory(ctx, machine, inventory); err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded %d sample machines", len(samples))
	return nil
}
