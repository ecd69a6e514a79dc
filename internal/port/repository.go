package port

import (
	"context"

	"github.com/google/uuid"

	"gstbill/internal/domain"
)

// CounterRepository is the persistence primitive behind invoice numbering:
// one monotonic integer per scope key, mutated only by atomic
// increment-and-fetch. Two concurrent calls for the same scope must never
// observe the same returned value.
type CounterRepository interface {
	// IncrementAndGet atomically increments the counter for the scope,
	// creating it at 1 if absent, and returns the post-increment value.
	IncrementAndGet(ctx context.Context, userID uuid.UUID, year, month int) (int64, error)
}

// InvoiceRepository defines persistence for finalized invoice records.
type InvoiceRepository interface {
	Create(ctx context.Context, inv *domain.Invoice) error
	GetByID(ctx context.Context, userID, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error)
	UpdateHash(ctx context.Context, userID, invoiceID uuid.UUID, hash string) error
	// MaxSequence returns the highest sequence number parsed from existing
	// invoice numbers in the scope, or 0 when none exist. Used only by the
	// racy scan-based allocation fallback.
	MaxSequence(ctx context.Context, userID uuid.UUID, year, month int) (int64, error)
}
