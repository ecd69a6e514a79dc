package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstbill/internal/domain"
	"gstbill/internal/port"
)

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, inv *domain.Invoice) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO invoices (
			id, user_id, invoice_number, invoice_date,
			customer_name, customer_gstin, customer_address, customer_state,
			seller_state, status, items,
			subtotal, total_discount, taxable_amount,
			total_cgst, total_sgst, total_igst, total_tax, grand_total,
			integrity_hash, created_at, updated_at
		) VALUES (
			:id, :user_id, :invoice_number, :invoice_date,
			:customer_name, :customer_gstin, :customer_address, :customer_state,
			:seller_state, :status, :items,
			:subtotal, :total_discount, :taxable_amount,
			:total_cgst, :total_sgst, :total_igst, :total_tax, :grand_total,
			:integrity_hash, :created_at, :updated_at
		)`, inv)
	if err != nil {
		return fmt.Errorf("invoiceRepo.Create %s: %w", inv.InvoiceNumber, err)
	}
	return nil
}

func (r *invoiceRepo) GetByID(ctx context.Context, userID, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv,
		`SELECT * FROM invoices WHERE id = $1 AND user_id = $2`,
		invoiceID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("invoiceRepo.GetByID %s: %w", invoiceID, err)
	}
	return &inv, nil
}

func (r *invoiceRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.Invoice, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM invoices WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListByUser count: %w", err)
	}

	var invoices []domain.Invoice
	err := r.db.SelectContext(ctx, &invoices,
		`SELECT * FROM invoices
		 WHERE user_id = $1
		 ORDER BY invoice_date DESC, invoice_number DESC
		 OFFSET $2 LIMIT $3`,
		userID, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("invoiceRepo.ListByUser: %w", err)
	}
	return invoices, total, nil
}

func (r *invoiceRepo) UpdateHash(ctx context.Context, userID, invoiceID uuid.UUID, hash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE invoices SET integrity_hash = $1, updated_at = NOW()
		 WHERE id = $2 AND user_id = $3`,
		hash, invoiceID, userID)
	if err != nil {
		return fmt.Errorf("invoiceRepo.UpdateHash %s: %w", invoiceID, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// MaxSequence extracts the numeric suffix of existing invoice numbers for
// the scope and returns the maximum, or 0 when the scope has no invoices.
// This read underpins the scan-based allocation fallback only.
func (r *invoiceRepo) MaxSequence(ctx context.Context, userID uuid.UUID, year, month int) (int64, error) {
	prefix := fmt.Sprintf("INV-%04d%02d-", year, month)

	var max sql.NullInt64
	err := r.db.GetContext(ctx, &max,
		`SELECT MAX(CAST(split_part(invoice_number, '-', 3) AS BIGINT))
		 FROM invoices
		 WHERE user_id = $1 AND invoice_number LIKE $2 || '%'`,
		userID, prefix)
	if err != nil {
		return 0, fmt.Errorf("invoiceRepo.MaxSequence scope %s%s: %w", userID, prefix, err)
	}
	if !max.Valid {
		return 0, nil
	}
	return max.Int64, nil
}
