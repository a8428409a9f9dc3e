// Package apperrors defines the error taxonomy shared by the lifecycle
// engine and the HTTP layer. Engine code wraps these sentinels with
// context; handlers map them to status codes with errors.Is.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned for an unknown SKU or username.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState is returned when an operation is attempted against
	// equipment whose current status forbids it (e.g. double checkout).
	ErrInvalidState = errors.New("invalid state")
	// ErrValidation is returned for malformed or out-of-range input.
	ErrValidation = errors.New("validation error")
	// ErrLockTimeout is returned when the per-SKU lock could not be
	// acquired within the bounded wait; the caller should retry.
	ErrLockTimeout = errors.New("lock timeout")
)

// IntegrityAnomaly describes a detected but non-fatal violation of an
// expected invariant, e.g. a return with no open ledger record. It is
// surfaced to the operator as a warning and never blocks the
// equipment-side transition.
type IntegrityAnomaly struct {
	SKU    string
	Detail string
}

func (a *IntegrityAnomaly) String() string {
	return fmt.Sprintf("integrity anomaly on %s: %s", a.SKU, a.Detail)
}

// Wrap annotates a sentinel with a human-readable message while keeping
// errors.Is matching intact.
func Wrap(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
