package sequence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gstbill/internal/domain"
	"gstbill/internal/port"
)

// ScanAllocator is the degraded fallback strategy: it scans existing invoice
// numbers for the scope and returns max observed sequence + 1.
//
// This path is racy. Two concurrent calls can observe the same max and both
// return the same number. It exists so an operator can explicitly trade
// correctness for availability when the counter store is down; it is never
// selected automatically.
type ScanAllocator struct {
	invoices port.InvoiceRepository
	log      *zap.Logger
}

// NewScanAllocator creates the scan-based fallback allocator.
func NewScanAllocator(invoices port.InvoiceRepository, log *zap.Logger) *ScanAllocator {
	return &ScanAllocator{
		invoices: invoices,
		log:      log.Named("sequence.scan"),
	}
}

// Next returns max observed sequence + 1 for the scope. Residual duplicate
// risk under concurrency is inherent to this strategy.
func (a *ScanAllocator) Next(ctx context.Context, userID uuid.UUID, date time.Time) (string, error) {
	max, err := a.invoices.MaxSequence(ctx, userID, date.Year(), int(date.Month()))
	if err != nil {
		return "", &domain.AllocationError{ScopeKey: ScopeKey(userID, date), Err: err}
	}

	number := FormatInvoiceNumber(date, max+1)
	a.log.Warn("allocated invoice number via scan fallback",
		zap.String("scope_key", ScopeKey(userID, date)),
		zap.Int64("sequence", max+1),
	)
	return number, nil
}
