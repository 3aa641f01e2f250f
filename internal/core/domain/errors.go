package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a business error
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindConflict
	KindAuthorization
	KindNotFound
	KindState
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindState:
		return "state"
	}
	return "unknown"
}

// Error is a recoverable business error. Anything that is not an *Error
// is treated as an infrastructure failure.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NewValidation creates a field-level validation error
func NewValidation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// NewConflict creates a conflict error
func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewAuthorization creates an authorization error
func NewAuthorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

// NewNotFound creates a not-found error for the named entity
func NewNotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found"}
}

// NewState creates an invalid-state error
func NewState(message string) *Error {
	return &Error{Kind: KindState, Message: message}
}

// KindOf returns the kind of the first *Error in err's chain
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// Common domain errors
var (
	ErrForbidden          = NewAuthorization("you don't have permission to perform this action")
	ErrInvalidCredentials = NewAuthorization("invalid credentials")
	ErrUserInactive       = NewAuthorization("user account is inactive")
)

// Registry errors
var (
	ErrMachineNotFound      = NewNotFound("machine")
	ErrInvalidMachineStatus = NewValidation("status", "must be one of operational, maintenance, inactive")
)

// Directory errors
var (
	ErrUserNotFound         = NewNotFound("user")
	ErrEmailAlreadyExists   = NewConflict("email already exists")
	ErrInvalidRole          = NewValidation("role", "must be one of client, operator, admin, superadmin")
	ErrSuperAdminRequired   = NewAuthorization("only a superadmin may change roles")
	ErrCannotChangeOwnRole  = NewAuthorization("cannot change your own role")
	ErrCannotDeactivateSelf = NewAuthorization("cannot deactivate your own account")
	ErrOldPasswordWrong     = NewValidation("old_password", "old password is incorrect")
)

// Reservation engine errors
var (
	ErrReservationNotFound   = NewNotFound("reservation")
	ErrMachineNotOperational = NewConflict(string(ReasonNotOperational))
	ErrAlreadyBooked         = NewConflict(string(ReasonAlreadyBooked))
	ErrNotPending            = NewState("reservation is not pending")
	ErrInvalidTransition     = NewState("transition not allowed from current status")
	ErrConcurrentUpdate      = NewState("reservation changed concurrently, reload and retry")
	ErrOperatorNotFound      = NewNotFound("operator")
	ErrNotAnOperator         = NewValidation("operator_id", "user is not an active operator")
	ErrNotAssignedOperator   = NewAuthorization("reservation is not assigned to you")
	ErrNotReservationOwner   = NewAuthorization("reservation belongs to another user")
)

// Payment & notification errors
var (
	ErrPaymentInvalidMethod = NewValidation("method", "must be one of cash, transfer, card")
	ErrPaymentInvalidStatus = NewValidation("status", "must be one of pending, completed, failed")
	ErrNotificationNotFound = NewNotFound("notification")
)
