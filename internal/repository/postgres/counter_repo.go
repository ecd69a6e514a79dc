package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstbill/internal/port"
)

type counterRepo struct {
	db *sqlx.DB
}

// NewCounterRepo creates a new PostgreSQL-backed CounterRepository.
func NewCounterRepo(db *sqlx.DB) port.CounterRepository {
	return &counterRepo{db: db}
}

// IncrementAndGet bumps the scope's counter in a single upsert. The
// ON CONFLICT increment and RETURNING happen in one statement, so two
// concurrent callers serialize on the row lock and always see distinct
// post-increment values.
func (r *counterRepo) IncrementAndGet(ctx context.Context, userID uuid.UUID, year, month int) (int64, error) {
	scopeKey := fmt.Sprintf("%s_%04d%02d", userID, year, month)

	var value int64
	err := r.db.GetContext(ctx, &value, `
		INSERT INTO invoice_counters (scope_key, user_id, year, month, last_value, updated_at)
		VALUES ($1, $2, $3, $4, 1, NOW())
		ON CONFLICT (scope_key)
		DO UPDATE SET
			last_value = invoice_counters.last_value + 1,
			updated_at = NOW()
		RETURNING last_value`,
		scopeKey, userID, year, month)
	if err != nil {
		return 0, fmt.Errorf("counterRepo.IncrementAndGet scope %s: %w", scopeKey, err)
	}
	return value, nil
}
