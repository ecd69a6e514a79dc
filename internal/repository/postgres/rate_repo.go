package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"gstbill/internal/port"
)

type rateRepo struct {
	db *sqlx.DB
}

// NewRateRepo creates a new PostgreSQL-backed RateRepository.
func NewRateRepo(db *sqlx.DB) port.RateRepository {
	return &rateRepo{db: db}
}

func (r *rateRepo) LoadAll(ctx context.Context) ([]port.GSTRateEntry, error) {
	var entries []port.GSTRateEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT code, description, gst_rate
		 FROM gst_rates
		 WHERE effective_to IS NULL OR effective_to >= CURRENT_DATE
		 ORDER BY code, gst_rate`)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
