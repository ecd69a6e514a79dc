package sequence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FallbackAllocator tries the primary allocator and, only when it fails,
// retries through the fallback. Pairing the counter allocator with the scan
// allocator keeps numbering correct while the counter store is healthy and
// degrades to the racy scan path only during an outage.
type FallbackAllocator struct {
	primary  Allocator
	fallback Allocator
	log      *zap.Logger
}

// NewFallbackAllocator chains two allocation strategies.
func NewFallbackAllocator(primary, fallback Allocator, log *zap.Logger) *FallbackAllocator {
	return &FallbackAllocator{
		primary:  primary,
		fallback: fallback,
		log:      log.Named("sequence.fallback"),
	}
}

// Next delegates to the primary allocator and falls back on failure.
func (a *FallbackAllocator) Next(ctx context.Context, userID uuid.UUID, date time.Time) (string, error) {
	number, err := a.primary.Next(ctx, userID, date)
	if err == nil {
		return number, nil
	}

	a.log.Warn("primary allocation failed, trying fallback",
		zap.String("scope_key", ScopeKey(userID, date)),
		zap.Error(err),
	)
	return a.fallback.Next(ctx, userID, date)
}
