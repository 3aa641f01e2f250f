package services

import (
	"errors"
	"testing"

	"washtech-rental/internal/adapters/persistence/models"
	"washtech-rental/internal/core/domain"
	"washtech-rental/internal/pkg/pagination"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const day = "2025-06-01"

// ============================================================
// Scenarios
// ============================================================

func TestScenarioA_CreateReservation(t *testing.T) {
	f := newFixture(t)
	client := f.user(domain.RoleClient)
	m := f.machine(domain.MachineOperational)

	r, err := f.book(client, m.ID, day)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, r.Status)
	assert.True(t, r.TotalPayment.Equal(decimal.NewFromInt(50000)))
	assert.Equal(t, "50000.00", r.ToResponse().TotalPayment)
	assert.Nil(t, r.AssignedOperatorID)
	assert.Equal(t, client.UserID, r.UserID)
	assert.Equal(t, day, r.ToResponse().ReservationDate)
	assert.Equal(t, "09:00:00", r.ToResponse().StartTime)
	assert.Equal(t, "11:00:00", r.ToResponse().EndTime)

	payments, err := f.repos.Payments.ListByReservation(f.ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, domain.PaymentPending, payments[0].Status)
	assert.Equal(t, domain.PaymentCash, payments[0].Method)
	assert.True(t, payments[0].Amount.Equal(r.TotalPayment))
}

func TestScenarioB_SameMachineSameDayConflicts(t *testing.T) {
	f := newFixture(t)
	m := f.machine(domain.MachineOperational)
	f.mustBook(f.user(domain.RoleClient), m.ID, day)

	_, err := f.book(f.user(domain.RoleClient), m.ID, day)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAlreadyBooked))
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))

	var total int64
	require.NoError(t, f.db.Model(&models.Reservation{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)

	var payments int64
	require.NoError(t, f.db.Model(&models.Payment{}).Count(&payments).Error)
	assert.Equal(t, int64(1), payments)
}

func TestScenarioC_AssignThenDeliverTwice(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	op := f.user(domain.RoleOperator)
	m := f.machine(domain.MachineOperational)
	r := f.mustBook(f.user(domain.RoleClient), m.ID, day)

	assigned, err := f.engine.AssignOperator(f.ctx, admin, r.ID, op.UserID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedOperatorID)
	assert.Equal(t, op.UserID, *assigned.AssignedOperatorID)

	delivered, err := f.engine.Deliver(f.ctx, r.ID, op.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, delivered.Status)

	_, err = f.engine.Deliver(f.ctx, r.ID, op.UserID)
	require.Error(t, err)
	assert.Equal(t, domain.KindState, domain.KindOf(err))
	assert.Equal(t, domain.StatusDelivered, f.reload(r.ID).Status)
}

func TestScenarioD_DeliverByOtherOperatorRejected(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	o1 := f.user(domain.RoleOperator)
	o2 := f.user(domain.RoleOperator)
	m := f.machine(domain.MachineOperational)
	r := f.mustBook(f.user(domain.RoleClient), m.ID, day)

	_, err := f.engine.AssignOperator(f.ctx, admin, r.ID, o1.UserID)
	require.NoError(t, err)

	_, err = f.engine.Deliver(f.ctx, r.ID, o2.UserID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotAssignedOperator))
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
	assert.Equal(t, domain.StatusPending, f.reload(r.ID).Status)

	_, err = f.engine.OperatorCancel(f.ctx, r.ID, o2.UserID)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))
}

// ============================================================
// Booking rules
// ============================================================

func TestCreateReservation_MachineNotOperational(t *testing.T) {
	f := newFixture(t)
	client := f.user(domain.RoleClient)

	for _, status := range []domain.MachineStatus{domain.MachineMaintenance, domain.MachineInactive} {
		m := f.machine(status)
		_, err := f.book(client, m.ID, day)
		assert.True(t, errors.Is(err, domain.ErrMachineNotOperational), status)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	}

	var total int64
	require.NoError(t, f.db.Model(&models.Reservation{}).Count(&total).Error)
	assert.Zero(t, total)
}

func TestCreateReservation_UnknownOrRetiredMachine(t *testing.T) {
	f := newFixture(t)
	client := f.user(domain.RoleClient)

	_, err := f.book(client, 999, day)
	assert.True(t, errors.Is(err, domain.ErrMachineNotFound))

	m := f.machine(domain.MachineOperational)
	require.NoError(t, f.repos.Machines.Deactivate(f.ctx, m.ID))
	_, err = f.book(client, m.ID, day)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestCreateReservation_Validation(t *testing.T) {
	f := newFixture(t)
	client := f.user(domain.RoleClient)
	m := f.machine(domain.MachineOperational)

	tests := []struct {
		name  string
		input CreateReservationInput
		field string
	}{
		{"missing machine", CreateReservationInput{ReservationDate: day, StartTime: "09:00", EndTime: "10:00"}, "machine_id"},
		{"missing date", CreateReservationInput{MachineID: m.ID, StartTime: "09:00", EndTime: "10:00"}, "reservation_date"},
		{"bad date", CreateReservationInput{MachineID: m.ID, ReservationDate: "01/06/2025", StartTime: "09:00", EndTime: "10:00"}, "reservation_date"},
		{"bad start", CreateReservationInput{MachineID: m.ID, ReservationDate: day, StartTime: "9am", EndTime: "10:00"}, "start_time"},
		{"missing end", CreateReservationInput{MachineID: m.ID, ReservationDate: day, StartTime: "09:00"}, "end_time"},
		{"end before start", CreateReservationInput{MachineID: m.ID, ReservationDate: day, StartTime: "11:00", EndTime: "09:00"}, "end_time"},
		{"bad method", CreateReservationInput{MachineID: m.ID, ReservationDate: day, StartTime: "09:00", EndTime: "10:00", PaymentMethod: "bitcoin"}, "payment_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.engine.CreateReservation(f.ctx, client, &input)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))

			var derr *domain.Error
			require.True(t, errors.As(err, &derr))
			assert.Equal(t, tt.field, derr.Field)
		})
	}

	assert.Zero(t, f.slotHolders(m.ID, day))
}

func TestCreateReservation_OnlyClientsBook(t *testing.T) {
	f := newFixture(t)
	m := f.machine(domain.MachineOperational)

	for _, role := range []domain.Role{domain.RoleOperator, domain.RoleAdmin, domain.RoleSuperAdmin} {
		_, err := f.book(f.user(role), m.ID, day)
		assert.Equal(t, domain.KindAuthorization, domain.KindOf(err), role)
	}
}

func TestCreateReservation_DayGranularity(t *testing.T) {
	f := newFixture(t)
	m := f.machine(domain.MachineOperational)
	f.mustBook(f.user(domain.RoleClient), m.ID, day)

	// Non-overlapping hours on the same day still conflict
	_, err := f.engine.CreateReservation(f.ctx, f.user(domain.RoleClient), &CreateReservationInput{
		MachineID:       m.ID,
		ReservationDate: day,
		StartTime:       "15:00",
		EndTime:         "17:00",
	})
	assert.True(t, errors.Is(err, domain.ErrAlreadyBooked))

	// Another day or another machine is free
	f.mustBook(f.user(domain.RoleClient), m.ID, "2025-06-02")
	other := f.machine(domain.MachineOperational)
	f.mustBook(f.user(domain.RoleClient), other.ID, day)
}

func TestCancelledReservationReleasesSlot(t *testing.T) {
	f := newFixture(t)
	client := f.user(domain.RoleClient)
	m := f.machine(domain.MachineOperational)
	r := f.mustBook(client, m.ID, day)

	_, err := f.engine.ClientCancel(f.ctx, client, r.ID)
	require.NoError(t, err)

	again, err := f.book(f.user(domain.RoleClient), m.ID, day)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, again.Status)
	assert.Equal(t, int64(1), f.slotHolders(m.ID, day))
}

func TestSlotKeyUniqueIndexRejectsSecondHolder(t *testing.T) {
	f := newFixture(t)
	client := f.user(domain.RoleClient)
	m := f.machine(domain.MachineOperational)
	f.mustBook(client, m.ID, day)

	// A writer that skipped the availability read still cannot insert
	d, _ := domain.ParseDate(day)
	slot := models.SlotKey(m.ID, d)
	dup := &models.Reservation{
		UserID:       client.UserID,
		MachineID:    m.ID,
		Status:       domain.StatusPending,
		TotalPayment: decimal.NewFromInt(1),
		SlotKey:      &slot,
		Lifecycle:    models.Lifecycle{IsActive: true},
	}
	err := f.repos.Reservations.Create(f.ctx, dup)
	require.Error(t, err)
	assert.True(t, isUniqueViolation(err))
}

// ============================================================
// Assignment
// ============================================================

func TestAssignOperator_Preconditions(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	op := f.user(domain.RoleOperator)
	m := f.machine(domain.MachineOperational)
	r := f.mustBook(f.user(domain.RoleClient), m.ID, day)

	t.Run("non-admin", func(t *testing.T) {
		_, err := f.engine.AssignOperator(f.ctx, op, r.ID, op.UserID)
		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("target is not an operator", func(t *testing.T) {
		_, err := f.engine.AssignOperator(f.ctx, admin, r.ID, f.user(domain.RoleClient).UserID)
		assert.True(t, errors.Is(err, domain.ErrNotAnOperator))
	})

	t.Run("target is inactive", func(t *testing.T) {
		retired := f.user(domain.RoleOperator)
		require.NoError(t, f.repos.Users.Deactivate(f.ctx, retired.UserID))
		_, err := f.engine.AssignOperator(f.ctx, admin, r.ID, retired.UserID)
		assert.True(t, errors.Is(err, domain.ErrOperatorNotFound))
	})

	t.Run("unknown reservation", func(t *testing.T) {
		_, err := f.engine.AssignOperator(f.ctx, admin, 9999, op.UserID)
		assert.True(t, errors.Is(err, domain.ErrReservationNotFound))
	})

	assert.Nil(t, f.reload(r.ID).AssignedOperatorID)

	t.Run("not pending", func(t *testing.T) {
		client := f.user(domain.RoleClient)
		other := f.mustBook(client, m.ID, "2025-07-01")
		_, err := f.engine.ClientCancel(f.ctx, client, other.ID)
		require.NoError(t, err)

		_, err = f.engine.AssignOperator(f.ctx, admin, other.ID, op.UserID)
		assert.True(t, errors.Is(err, domain.ErrNotPending))
		assert.Nil(t, f.reload(other.ID).AssignedOperatorID)
	})
}

func TestAssignOperator_ReassignOverwritesAndNotifies(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleSuperAdmin)
	o1 := f.user(domain.RoleOperator)
	o2 := f.user(domain.RoleOperator)
	m := f.machine(domain.MachineOperational)
	r := f.mustBook(f.user(domain.RoleClient), m.ID, day)

	_, err := f.engine.AssignOperator(f.ctx, admin, r.ID, o1.UserID)
	require.NoError(t, err)
	res, err := f.engine.AssignOperator(f.ctx, admin, r.ID, o2.UserID)
	require.NoError(t, err)
	assert.True(t, res.IsAssignedTo(o2.UserID))

	// o1 got the assignment and the reassignment notice, o2 one assignment
	n1, err := f.repos.Notifications.CountUnread(f.ctx, o1.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n1)
	n2, err := f.repos.Notifications.CountUnread(f.ctx, o2.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n2)

	// Former operator lost the rights
	_, err = f.engine.Deliver(f.ctx, r.ID, o1.UserID)
	assert.True(t, errors.Is(err, domain.ErrNotAssignedOperator))
}

func TestUnassignOperator(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	op := f.user(domain.RoleOperator)
	m := f.machine(domain.MachineOperational)
	r := f.mustBook(f.user(domain.RoleClient), m.ID, day)

	_, err := f.engine.AssignOperator(f.ctx, admin, r.ID, op.UserID)
	require.NoError(t, err)

	res, err := f.engine.UnassignOperator(f.ctx, admin, r.ID)
	require.NoError(t, err)
	assert.Nil(t, res.AssignedOperatorID)

	_, err = f.engine.Deliver(f.ctx, r.ID, op.UserID)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(err))

	// Unassign on a terminal reservation is a state error
	_, err = f.engine.AssignOperator(f.ctx, admin, r.ID, op.UserID)
	require.NoError(t, err)
	_, err = f.engine.Deliver(f.ctx, r.ID, op.UserID)
	require.NoError(t, err)
	_, err = f.engine.UnassignOperator(f.ctx, admin, r.ID)
	assert.True(t, errors.Is(err, domain.ErrNotPending))
	assert.True(t, f.reload(r.ID).IsAssignedTo(op.UserID))
}

// ============================================================
// Transitions
// ============================================================

func TestOperatorCancel_ClearsAssignment(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	op := f.user(domain.RoleOperator)
	client := f.user(domain.RoleClient)
	m := f.machine(domain.MachineOperational)
	r := f.mustBook(client, m.ID, day)

	_, err := f.engine.AssignOperator(f.ctx, admin, r.ID, op.UserID)
	require.NoError(t, err)

	res, err := f.engine.OperatorCancel(f.ctx, r.ID, op.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, res.Status)
	assert.Nil(t, res.AssignedOperatorID)
	assert.Zero(t, f.slotHolders(m.ID, day))

	unread, err := f.repos.Notifications.CountUnread(f.ctx, client.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestOperatorCancel_Confirmed(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	op := f.user(domain.RoleOperator)
	m := f.machine(domain.MachineOperational)
	r := f.mustBook(f.user(domain.RoleClient), m.ID, day)
	_, err := f.engine.AssignOperator(f.ctx, admin, r.ID, op.UserID)
	require.NoError(t, err)

	// No operation produces confirmed; set it directly
	require.NoError(t, f.db.Model(&models.Reservation{}).Where("id = ?", r.ID).
		Update("status", domain.StatusConfirmed).Error)

	// Delivery requires pending
	_, err = f.engine.Deliver(f.ctx, r.ID, op.UserID)
	assert.Equal(t, domain.KindState, domain.KindOf(err))

	// Confirmed still holds the slot
	_, err = f.book(f.user(domain.RoleClient), m.ID, day)
	assert.True(t, errors.Is(err, domain.ErrAlreadyBooked))

	res, err := f.engine.OperatorCancel(f.ctx, r.ID, op.UserID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, res.Status)
}

func TestClientCancel(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	op := f.user(domain.RoleOperator)
	owner := f.user(domain.RoleClient)
	stranger := f.user(domain.RoleClient)
	m := f.machine(domain.MachineOperational)

	t.Run("stranger rejected", func(t *testing.T) {
		r := f.mustBook(owner, m.ID, "2025-06-10")
		_, err := f.engine.ClientCancel(f.ctx, stranger, r.ID)
		assert.True(t, errors.Is(err, domain.ErrNotReservationOwner))
		assert.Equal(t, domain.StatusPending, f.reload(r.ID).Status)
	})

	t.Run("owner keeps assigned operator", func(t *testing.T) {
		r := f.mustBook(owner, m.ID, "2025-06-11")
		_, err := f.engine.AssignOperator(f.ctx, admin, r.ID, op.UserID)
		require.NoError(t, err)

		res, err := f.engine.ClientCancel(f.ctx, owner, r.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, res.Status)
		assert.True(t, res.IsAssignedTo(op.UserID))
	})

	t.Run("admin may cancel", func(t *testing.T) {
		r := f.mustBook(owner, m.ID, "2025-06-12")
		res, err := f.engine.ClientCancel(f.ctx, admin, r.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, res.Status)
	})

	t.Run("twice is a state error", func(t *testing.T) {
		r := f.mustBook(owner, m.ID, "2025-06-13")
		_, err := f.engine.ClientCancel(f.ctx, owner, r.ID)
		require.NoError(t, err)
		_, err = f.engine.ClientCancel(f.ctx, owner, r.ID)
		assert.Equal(t, domain.KindState, domain.KindOf(err))
	})
}

func TestStatusMonotonicity(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	op := f.user(domain.RoleOperator)
	client := f.user(domain.RoleClient)
	m := f.machine(domain.MachineOperational)

	delivered := f.mustBook(client, m.ID, "2025-06-20")
	_, err := f.engine.AssignOperator(f.ctx, admin, delivered.ID, op.UserID)
	require.NoError(t, err)
	_, err = f.engine.Deliver(f.ctx, delivered.ID, op.UserID)
	require.NoError(t, err)

	cancelled := f.mustBook(client, m.ID, "2025-06-21")
	_, err = f.engine.AssignOperator(f.ctx, admin, cancelled.ID, op.UserID)
	require.NoError(t, err)
	_, err = f.engine.ClientCancel(f.ctx, client, cancelled.ID)
	require.NoError(t, err)

	attempts := []func(id uint) error{
		func(id uint) error { _, err := f.engine.Deliver(f.ctx, id, op.UserID); return err },
		func(id uint) error { _, err := f.engine.OperatorCancel(f.ctx, id, op.UserID); return err },
		func(id uint) error { _, err := f.engine.ClientCancel(f.ctx, client, id); return err },
		func(id uint) error { _, err := f.engine.AssignOperator(f.ctx, admin, id, op.UserID); return err },
		func(id uint) error { _, err := f.engine.UnassignOperator(f.ctx, admin, id); return err },
	}

	for _, r := range []*models.Reservation{delivered, cancelled} {
		before := f.reload(r.ID).Status
		for _, attempt := range attempts {
			assert.Error(t, attempt(r.ID))
			assert.Equal(t, before, f.reload(r.ID).Status)
		}
	}
}

// ============================================================
// Availability
// ============================================================

func TestAvailabilityConsistency(t *testing.T) {
	f := newFixture(t)
	free := f.machine(domain.MachineOperational)
	booked := f.machine(domain.MachineOperational)
	broken := f.machine(domain.MachineMaintenance)
	f.mustBook(f.user(domain.RoleClient), booked.ID, day)

	date, _ := domain.ParseDate(day)

	want := map[uint]domain.UnavailableReason{
		free.ID:   "",
		booked.ID: domain.ReasonAlreadyBooked,
		broken.ID: domain.ReasonNotOperational,
	}

	listing, err := f.engine.AvailabilityOn(f.ctx, date)
	require.NoError(t, err)
	require.Len(t, listing, 3)

	for _, entry := range listing {
		single, err := f.engine.CheckAvailability(f.ctx, entry.Machine.ID, date)
		require.NoError(t, err)
		again, err := f.engine.CheckAvailability(f.ctx, entry.Machine.ID, date)
		require.NoError(t, err)

		assert.Equal(t, want[entry.Machine.ID], entry.Reason)
		assert.Equal(t, entry.Available, single.Available)
		assert.Equal(t, entry.Reason, single.Reason)
		assert.Equal(t, single.Available, again.Available)
		assert.Equal(t, single.Reason, again.Reason)
		assert.Equal(t, entry.Reason == "", entry.Available)

		// Booking agrees with the listing
		_, bookErr := f.book(f.user(domain.RoleClient), entry.Machine.ID, day)
		assert.Equal(t, entry.Available, bookErr == nil, entry.Machine.Model)
	}
}

func TestCheckAvailability_UnknownMachine(t *testing.T) {
	f := newFixture(t)
	date, _ := domain.ParseDate(day)
	_, err := f.engine.CheckAvailability(f.ctx, 42, date)
	assert.True(t, errors.Is(err, domain.ErrMachineNotFound))
}

// ============================================================
// Reads
// ============================================================

func TestGetAndListForActor(t *testing.T) {
	f := newFixture(t)
	admin := f.user(domain.RoleAdmin)
	op := f.user(domain.RoleOperator)
	other := f.user(domain.RoleOperator)
	c1 := f.user(domain.RoleClient)
	c2 := f.user(domain.RoleClient)
	m := f.machine(domain.MachineOperational)

	r1 := f.mustBook(c1, m.ID, "2025-06-01")
	f.mustBook(c2, m.ID, "2025-06-02")
	_, err := f.engine.AssignOperator(f.ctx, admin, r1.ID, op.UserID)
	require.NoError(t, err)

	_, err = f.engine.GetForActor(f.ctx, c1, r1.ID)
	assert.NoError(t, err)
	_, err = f.engine.GetForActor(f.ctx, c2, r1.ID)
	assert.True(t, errors.Is(err, domain.ErrNotReservationOwner))
	_, err = f.engine.GetForActor(f.ctx, op, r1.ID)
	assert.NoError(t, err)
	_, err = f.engine.GetForActor(f.ctx, other, r1.ID)
	assert.True(t, errors.Is(err, domain.ErrNotAssignedOperator))
	_, err = f.engine.GetForActor(f.ctx, admin, r1.ID)
	assert.NoError(t, err)

	params := pagination.New(1, 10)
	page, err := f.engine.ListForActor(f.ctx, admin, params)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Meta.Total)

	page, err = f.engine.ListForActor(f.ctx, c2, params)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, c2.UserID, page.Data[0].UserID)

	page, err = f.engine.ListForActor(f.ctx, op, params)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, r1.ID, page.Data[0].ID)
}

func TestHourlyPricing(t *testing.T) {
	f := newFixture(t)
	f.engine.pricing = HourlyRate{Rate: decimal.NewFromInt(25000)}
	m := f.machine(domain.MachineOperational)

	r, err := f.engine.CreateReservation(f.ctx, f.user(domain.RoleClient), &CreateReservationInput{
		MachineID:       m.ID,
		ReservationDate: day,
		StartTime:       "09:00",
		EndTime:         "11:30",
		PaymentMethod:   "card",
	})
	require.NoError(t, err)
	assert.Equal(t, "75000.00", r.TotalPayment.StringFixed(2))
}
