// Package sequence allocates unique, monotonically increasing invoice
// numbers scoped per user and calendar month.
package sequence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gstbill/internal/domain"
	"gstbill/internal/port"
)

// Allocator produces the next invoice number for a (user, month) scope.
// Next is the engine's only side-effecting entry point: each successful call
// consumes a sequence value and is final. Retrying after a success skips a
// number, which is acceptable; it never produces a duplicate.
type Allocator interface {
	Next(ctx context.Context, userID uuid.UUID, date time.Time) (string, error)
}

// CounterAllocator allocates numbers through an atomic increment-and-fetch
// on the counter store. This is the only allocation path that is correct
// under concurrent callers.
type CounterAllocator struct {
	counters port.CounterRepository
	log      *zap.Logger
}

// NewCounterAllocator creates the atomic counter-backed allocator.
func NewCounterAllocator(counters port.CounterRepository, log *zap.Logger) *CounterAllocator {
	return &CounterAllocator{
		counters: counters,
		log:      log.Named("sequence.counter"),
	}
}

// Next increments the scope's counter and formats the returned value. A
// storage failure surfaces as a domain.AllocationError carrying the scope
// key; the caller may retry transient failures, but a retry after a
// successful increment burns the already-allocated value.
func (a *CounterAllocator) Next(ctx context.Context, userID uuid.UUID, date time.Time) (string, error) {
	seq, err := a.counters.IncrementAndGet(ctx, userID, date.Year(), int(date.Month()))
	if err != nil {
		return "", &domain.AllocationError{ScopeKey: ScopeKey(userID, date), Err: err}
	}

	number := FormatInvoiceNumber(date, seq)
	a.log.Debug("allocated invoice number",
		zap.String("scope_key", ScopeKey(userID, date)),
		zap.Int64("sequence", seq),
		zap.String("invoice_number", number),
	)
	return number, nil
}
