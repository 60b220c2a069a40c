// Package apperr holds the error taxonomy shared by every ledger operation.
//
// Sentinels are matched with errors.Is; the structured types carry the
// context a caller needs to correct and retry the request.
package apperr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrIneligible       = errors.New("not eligible")
	ErrOverpayment      = errors.New("overpayment")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	// ErrConflict is returned when an optimistic version check loses a race.
	ErrConflict = errors.New("concurrent modification")
)

// ValidationError rejects malformed or out-of-range input before any state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Message
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, msg string) error { return &ValidationError{Field: field, Message: msg} }

// InvalidStateError means the operation is not legal from the current status.
type InvalidStateError struct {
	Entity string
	ID     string
	From   string
	Op     string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s from status %q", e.Entity, e.ID, e.Op, e.From)
}

func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// IneligibleError is a business-rule gate; Reason is surfaced to the caller.
type IneligibleError struct {
	Reason   string
	Required decimal.Decimal
	Actual   decimal.Decimal
}

func (e *IneligibleError) Error() string { return "not eligible: " + e.Reason }

func (e *IneligibleError) Unwrap() error { return ErrIneligible }

// OverpaymentError is raised when an amount exceeds what is still owed.
type OverpaymentError struct {
	Amount      decimal.Decimal
	Outstanding decimal.Decimal
}

func (e *OverpaymentError) Error() string {
	return fmt.Sprintf("amount %s exceeds outstanding balance %s",
		e.Amount.StringFixed(2), e.Outstanding.StringFixed(2))
}

func (e *OverpaymentError) Unwrap() error { return ErrOverpayment }

// AlreadyProcessedError guards at-most-once transitions.
type AlreadyProcessedError struct {
	Entity string
	ID     string
	Status string
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("%s %s already processed (status %q)", e.Entity, e.ID, e.Status)
}

func (e *AlreadyProcessedError) Unwrap() error { return ErrAlreadyProcessed }

// ForbiddenError means the actor may not perform the operation.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string { return "forbidden: " + e.Reason }

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NotFound wraps ErrNotFound with the entity that was missing.
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}

// IsClientError reports whether err was caused by the caller's input or timing
// and may succeed once the request is corrected.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrIneligible) ||
		errors.Is(err, ErrOverpayment) ||
		errors.Is(err, ErrAlreadyProcessed) ||
		errors.Is(err, ErrForbidden)
}

// IsRetryable reports whether the same request might succeed on retry.
func IsRetryable(err error) bool { return errors.Is(err, ErrConflict) }
