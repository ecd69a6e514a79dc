package port

import "context"

// GSTRateEntry represents a single HSN/SAC code entry with its GST rate.
type GSTRateEntry struct {
	Code        string  `db:"code"`
	Description string  `db:"description"`
	GSTRate     float64 `db:"gst_rate"`
}

// RateRepository defines the contract for GST rate master data access.
type RateRepository interface {
	LoadAll(ctx context.Context) ([]GSTRateEntry, error)
}
