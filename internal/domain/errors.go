package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an entity id is unknown. It usually means a
// caller bug or stale UI state, so it is surfaced rather than retried.
var ErrNotFound = errors.New("not found")

// AllocationMismatchError reports split amounts that do not sum to the
// transaction total. Expected and Actual are rounded to currency precision
// so the caller can render the delta without re-deriving it.
type AllocationMismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *AllocationMismatchError) Error() string {
	return fmt.Sprintf("allocations sum to %s, expected %s", e.Actual, e.Expected)
}

// NotReadyError reports an attempt to reconcile a transaction whose computed
// status is not ready. Status names the requirement still missing.
type NotReadyError struct {
	Status TransactionStatus
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("transaction is not ready to reconcile: %s", e.Status)
}

// InvalidInputError reports input that cannot be safely normalized
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
