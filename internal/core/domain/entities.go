package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleClient     Role = "client"
	RoleOperator   Role = "operator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// AllRoles lists every role a user may hold
var AllRoles = []Role{RoleClient, RoleOperator, RoleAdmin, RoleSuperAdmin}

// AdminRoles is the capability set for oversight operations
var AdminRoles = []Role{RoleAdmin, RoleSuperAdmin}

// ParseRole returns the role named by s, or false when s is not a known role
func ParseRole(s string) (Role, bool) {
	for _, r := range AllRoles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the four roles
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// HasRole reports whether role is contained in the allowed set.
// Every authorization gate goes through this check.
func HasRole(role Role, allowed ...Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// IsAdmin is shorthand for HasRole(role, AdminRoles...)
func (r Role) IsAdmin() bool {
	return HasRole(r, AdminRoles...)
}

// Actor is the identity performing an operation. Services receive it
// explicitly instead of reading request state.
type Actor struct {
	UserID uint
	Role   Role
}

// ============================================================
// Machine
// ============================================================

// MachineStatus is the operational status of a washing machine
type MachineStatus string

const (
	MachineOperational MachineStatus = "operational"
	MachineMaintenance MachineStatus = "maintenance"
	MachineInactive    MachineStatus = "inactive"
)

// Valid reports whether s is a known machine status
func (s MachineStatus) Valid() bool {
	switch s {
	case MachineOperational, MachineMaintenance, MachineInactive:
		return true
	}
	return false
}

// ============================================================
// Reservation state machine
// ============================================================

// ReservationStatus is the lifecycle status of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusDelivered ReservationStatus = "delivered"
	StatusCancelled ReservationStatus = "cancelled"
)

var transitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusDelivered, StatusCancelled},
	StatusConfirmed: {StatusDelivered, StatusCancelled},
}

// SlotHoldingStatuses are the statuses that occupy a (machine, date) slot
var SlotHoldingStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

// Valid reports whether s is a known reservation status
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s ReservationStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// HoldsSlot reports whether a reservation in status s blocks its machine for the day
func (s ReservationStatus) HoldsSlot() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo reports whether s -> next is an edge of the state machine
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, t := range transitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// StatusStrings converts statuses for use in SQL IN clauses
func StatusStrings(statuses ...ReservationStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// ============================================================
// Availability
// ============================================================

// UnavailableReason explains a negative availability verdict
type UnavailableReason string

const (
	ReasonNotOperational UnavailableReason = "machine not operational"
	ReasonAlreadyBooked  UnavailableReason = "already booked"
)

// Availability is the result of the availability predicate for one (machine, date)
type Availability struct {
	MachineID uint
	Date      time.Time
	Available bool
	Reason    UnavailableReason
}

// ============================================================
// Payments
// ============================================================

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCard     PaymentMethod = "card"
)

// PaymentStatus is the bookkeeping status of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// DateLayout is the calendar-day format used on the wire
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar day in UTC
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
