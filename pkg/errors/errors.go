package errors

import (
	"fmt"

	"github.com/tienditamx/orderbot/internal/domain"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrConflict is returned when there's a conflict (e.g., a second open draft order)
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrInvalidStateTransition is returned when an invalid state transition is attempted
type ErrInvalidStateTransition struct {
	From domain.DraftOrderStatus
	To   domain.DraftOrderStatus
}

func (e *ErrInvalidStateTransition) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// ErrRetryable wraps a failure that rolled back cleanly and is safe to retry,
// such as a pricing write-back transaction that hit a transient database error.
type ErrRetryable struct {
	Op  string
	Err error
}

func (e *ErrRetryable) Error() string {
	return fmt.Sprintf("%s failed (retryable): %v", e.Op, e.Err)
}

func (e *ErrRetryable) Unwrap() error {
	return e.Err
}
