package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("resource not found")
	ErrEmptyInvoice    = errors.New("invoice must contain at least one line item")
	ErrInvoiceFinal    = errors.New("invoice is already finalized")
	ErrCounterConflict = errors.New("counter row conflict")
)

// ValidationError reports an invalid line item field. ItemIndex is -1 for
// invoice-level failures such as an empty item list.
type ValidationError struct {
	ItemIndex int
	Field     string
	Message   string
}

func (e *ValidationError) Error() string {
	if e.ItemIndex < 0 {
		return fmt.Sprintf("invalid invoice: %s", e.Message)
	}
	return fmt.Sprintf("invalid line item [%d] %s: %s", e.ItemIndex, e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given item and field.
func NewValidationError(itemIndex int, field, message string) *ValidationError {
	return &ValidationError{ItemIndex: itemIndex, Field: field, Message: message}
}

// AllocationError reports a failed invoice-number allocation. It wraps the
// underlying storage error and carries the scope key so the failing counter
// can be identified without re-deriving state.
type AllocationError struct {
	ScopeKey string
	Err      error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("allocating invoice number for scope %q: %v", e.ScopeKey, e.Err)
}

func (e *AllocationError) Unwrap() error { return e.Err }

// IntegrityError reports an integrity hash mismatch on a stored invoice.
// A mismatch means the record was mutated after the hash was assigned;
// it is surfaced to the caller, never silently repaired.
type IntegrityError struct {
	InvoiceID uuid.UUID
	Expected  string
	Actual    string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity hash mismatch for invoice %s: stored %s, computed %s",
		e.InvoiceID, e.Expected, e.Actual)
}
