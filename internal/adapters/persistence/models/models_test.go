package models

import (
	"testing"
	"time"

	"washtech-rental/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestLifecycle(t *testing.T) {
	l := Lifecycle{IsActive: true}
	assert.False(t, l.Retired())
	l.Retire()
	assert.True(t, l.Retired())
}

func TestSlotKey(t *testing.T) {
	d := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "12:2025-06-01", SlotKey(12, d))
}

func TestClockString(t *testing.T) {
	assert.Equal(t, "09:00:00", ClockString(datatypes.NewTime(9, 0, 0, 0)))
	assert.Equal(t, "23:59:30", ClockString(datatypes.NewTime(23, 59, 30, 0)))
}

func TestReservationToResponse(t *testing.T) {
	op := uint(4)
	r := &Reservation{
		ID:                 1,
		UserID:             2,
		MachineID:          3,
		ReservationDate:    datatypes.Date(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		StartTime:          datatypes.NewTime(9, 0, 0, 0),
		EndTime:            datatypes.NewTime(11, 30, 0, 0),
		Status:             domain.StatusPending,
		AssignedOperatorID: &op,
		TotalPayment:       decimal.NewFromInt(50000),
		User:               &User{Email: "ana@example.com"},
		Machine:            &WashingMachine{Model: "LG"},
		AssignedOperator:   &User{Name: "Luis"},
	}

	resp := r.ToResponse()
	assert.Equal(t, "2025-06-01", resp.ReservationDate)
	assert.Equal(t, "09:00:00", resp.StartTime)
	assert.Equal(t, "11:30:00", resp.EndTime)
	assert.Equal(t, "50000.00", resp.TotalPayment)
	assert.Equal(t, "ana@example.com", resp.UserEmail)
	assert.Equal(t, "LG", resp.MachineModel)
	assert.Equal(t, "Luis", resp.OperatorName)
	assert.True(t, r.IsAssignedTo(4))
	assert.False(t, r.IsAssignedTo(5))
}
