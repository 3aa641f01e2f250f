package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, r := range AllRoles {
		got, ok := ParseRole(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}

	_, ok := ParseRole("cliente")
	assert.False(t, ok)
	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestHasRole(t *testing.T) {
	assert.True(t, HasRole(RoleAdmin, AdminRoles...))
	assert.True(t, HasRole(RoleSuperAdmin, AdminRoles...))
	assert.False(t, HasRole(RoleOperator, AdminRoles...))
	assert.False(t, HasRole(RoleClient))
	assert.True(t, RoleSuperAdmin.IsAdmin())
	assert.False(t, RoleClient.IsAdmin())
}

func TestReservationStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to ReservationStatus
		allowed  bool
	}{
		{StatusPending, StatusDelivered, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusConfirmed, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusDelivered, true},
		{StatusConfirmed, StatusPending, false},
		{StatusDelivered, StatusPending, false},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusDelivered, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s->%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestTerminalStatusesReleaseSlot(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())

	assert.True(t, StatusPending.HoldsSlot())
	assert.True(t, StatusConfirmed.HoldsSlot())
	assert.False(t, StatusDelivered.HoldsSlot())
	assert.False(t, StatusCancelled.HoldsSlot())
}

func TestErrorKinds(t *testing.T) {
	wrapped := fmt.Errorf("create reservation: %w", ErrAlreadyBooked)

	assert.True(t, errors.Is(wrapped, ErrAlreadyBooked))
	assert.Equal(t, KindConflict, KindOf(wrapped))
	assert.True(t, IsKind(ErrNotAssignedOperator, KindAuthorization))
	assert.Equal(t, KindUnknown, KindOf(errors.New("connection refused")))
	assert.Equal(t, "role: must be one of client, operator, admin, superadmin", ErrInvalidRole.Error())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01")
	assert.NoError(t, err)
	assert.Equal(t, 2025, d.Year())
	assert.Equal(t, "2025-06-01", d.Format(DateLayout))

	_, err = ParseDate("01/06/2025")
	assert.Error(t, err)
}
