package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/adapters/persistence/repositories"
	"washtech-rental/internal/adapters/persistence/testdb"
	"washtech-rental/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	db     *gorm.DB
	repos  *repositories.Repos
	engine *ReservationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.New(t)
	repos := repositories.NewRepos(db)
	return &fixture{
		t:      t,
		ctx:    context.Background(),
		db:     db,
		repos:  repos,
		engine: NewReservationService(repos, repositories.NewTransactor(db), FlatRate{Amount: decimal.NewFromInt(50000)}),
	}
}

var userSeq int

func (f *fixture) user(role domain.Role) domain.Actor {
	f.t.Helper()
	userSeq++
	n := userSeq
	u := &models.User{
		Name:      fmt.Sprintf("%s %d", role, n),
		Email:     fmt.Sprintf("%s-%d@example.com", role, n),
		Password:  "x",
		Role:      role,
		Lifecycle: models.Lifecycle{IsActive: true},
	}
	require.NoError(f.t, f.repos.Users.Create(f.ctx, u))
	return domain.Actor{UserID: u.ID, Role: role}
}

func (f *fixture) machine(status domain.MachineStatus) *models.WashingMachine {
	f.t.Helper()
	m := &models.WashingMachine{
		Model:             "LG " + string(status),
		Capacity:          "15 kg",
		OperationalStatus: status,
		Lifecycle:         models.Lifecycle{IsActive: true},
	}
	inv := &models.Inventory{
		Availability: status == domain.MachineOperational,
		Location:     "Bodega",
		Lifecycle:    models.Lifecycle{IsActive: true},
	}
	require.NoError(f.t, f.repos.Machines.CreateWithInventory(f.ctx, m, inv))
	return m
}

func (f *fixture) book(client domain.Actor, machineID uint, date string) (*models.Reservation, error) {
	return f.engine.CreateReservation(f.ctx, client, &CreateReservationInput{
		MachineID:       machineID,
		ReservationDate: date,
		StartTime:       "09:00",
		EndTime:         "11:00",
	})
}

func (f *fixture) mustBook(client domain.Actor, machineID uint, date string) *models.Reservation {
	f.t.Helper()
	r, err := f.book(client, machineID, date)
	require.NoError(f.t, err)
	return r
}

func (f *fixture) reload(id uint) *models.Reservation {
	f.t.Helper()
	r, err := f.repos.Reservations.GetByID(f.ctx, id)
	require.NoError(f.t, err)
	return r
}

// slotHolders counts active pending/confirmed reservations for (machine, date)
func (f *fixture) slotHolders(machineID uint, date string) int64 {
	f.t.Helper()
	d, err := domain.ParseDate(date)
	require.NoError(f.t, err)
	mid := machineID
	rows, err := f.repos.Reservations.Find(f.ctx, repositories.ReservationFilter{
		Statuses: domain.SlotHoldingStatuses,
		From:     &d,
		To:       &d,
	})
	require.NoError(f.t, err)
	var n int64
	for _, r := range rows {
		if r.MachineID == mid {
			n++
		}
	}
	return n
}

func fixedClock(day string) Clock {
	t, _ := domain.ParseDate(day)
	return func() time.Time { return t.Add(10 * time.Hour) }
}
