package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gstbill/internal/domain"
	"gstbill/internal/integrity"
	"gstbill/internal/port"
	"gstbill/internal/sequence"
	"gstbill/internal/tax"
)

// FinalizeInput is the DTO for finalizing an invoice.
type FinalizeInput struct {
	UserID      uuid.UUID         `json:"user_id"`
	InvoiceDate time.Time         `json:"invoice_date"`
	SellerState string            `json:"seller_state"`
	Customer    domain.Customer   `json:"customer"`
	Items       []domain.LineItem `json:"items"`
}

// InvoiceService defines the invoice engine contract. ComputeTotals is pure;
// Finalize is the only side-effecting operation and runs the full pipeline:
// compute totals, allocate a unique number, seal with an integrity hash,
// persist.
type InvoiceService interface {
	ComputeTotals(items []domain.LineItem, sellerState, buyerState string) (*domain.InvoiceCalculation, error)
	Finalize(ctx context.Context, input FinalizeInput) (*FinalizedInvoice, error)
	Verify(ctx context.Context, userID, invoiceID uuid.UUID) error
	Rehash(ctx context.Context, userID, invoiceID uuid.UUID) (*FinalizedInvoice, error)
}

// FinalizedInvoice wraps an invoice record that is guaranteed to carry an
// integrity hash matching its current fields. The wrapped record is only
// reachable through this type, and every constructor computes the hash, so
// a finalized invoice cannot exist in a hash-missing or hash-stale state.
type FinalizedInvoice struct {
	record domain.Invoice
}

// Record returns a copy of the sealed invoice record.
func (f *FinalizedInvoice) Record() domain.Invoice { return f.record }

// Number returns the allocated invoice number.
func (f *FinalizedInvoice) Number() string { return f.record.InvoiceNumber }

// Hash returns the integrity digest.
func (f *FinalizedInvoice) Hash() string { return f.record.IntegrityHash }

// seal computes the integrity hash over the record's canonical view and
// stamps it. It is the only place a hash is ever assigned.
func seal(inv domain.Invoice) (*FinalizedInvoice, error) {
	view, err := integrity.ViewFromInvoice(&inv)
	if err != nil {
		return nil, err
	}
	inv.IntegrityHash = integrity.Compute(view)
	return &FinalizedInvoice{record: inv}, nil
}

type invoiceService struct {
	rates     *tax.RateTable
	allocator sequence.Allocator
	invoices  port.InvoiceRepository
	log       *zap.Logger
}

// NewInvoiceService creates a new InvoiceService implementation. The
// allocator decides the numbering strategy: callers wire the atomic
// counter allocator normally, and may explicitly substitute the scan
// fallback when degraded operation is an acceptable trade.
func NewInvoiceService(
	rates *tax.RateTable,
	allocator sequence.Allocator,
	invoices port.InvoiceRepository,
	log *zap.Logger,
) InvoiceService {
	return &invoiceService{
		rates:     rates,
		allocator: allocator,
		invoices:  invoices,
		log:       log.Named("invoice.service"),
	}
}

func (s *invoiceService) ComputeTotals(items []domain.LineItem, sellerState, buyerState string) (*domain.InvoiceCalculation, error) {
	return tax.ComputeInvoiceTotals(items, s.rates, sellerState, buyerState)
}

func (s *invoiceService) Finalize(ctx context.Context, input FinalizeInput) (*FinalizedInvoice, error) {
	calc, err := tax.ComputeInvoiceTotals(input.Items, s.rates, input.SellerState, input.Customer.State)
	if err != nil {
		return nil, err
	}

	number, err := s.allocator.Next(ctx, input.UserID, input.InvoiceDate)
	if err != nil {
		return nil, err
	}

	itemsJSON, err := json.Marshal(calc.Items)
	if err != nil {
		return nil, fmt.Errorf("marshaling computed items: %w", err)
	}

	now := time.Now().UTC()
	sealed, err := seal(domain.Invoice{
		ID:              uuid.New(),
		UserID:          input.UserID,
		InvoiceNumber:   number,
		InvoiceDate:     input.InvoiceDate,
		CustomerName:    input.Customer.Name,
		CustomerGSTIN:   input.Customer.GSTIN,
		CustomerAddress: input.Customer.Address,
		CustomerState:   input.Customer.State,
		SellerState:     input.SellerState,
		Status:          domain.InvoiceStatusFinalized,
		Items:           itemsJSON,
		Subtotal:        calc.Totals.Subtotal,
		TotalDiscount:   calc.Totals.TotalDiscount,
		TaxableAmount:   calc.Totals.TaxableAmount,
		TotalCGST:       calc.Totals.TotalCGST,
		TotalSGST:       calc.Totals.TotalSGST,
		TotalIGST:       calc.Totals.TotalIGST,
		TotalTax:        calc.Totals.TotalTax,
		GrandTotal:      calc.Totals.GrandTotal,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		return nil, err
	}

	record := sealed.Record()
	if err := s.invoices.Create(ctx, &record); err != nil {
		// The allocated number is burned: the counter was already
		// incremented and is never rolled back, so a retry produces a gap,
		// not a duplicate.
		return nil, fmt.Errorf("persisting invoice %s: %w", number, err)
	}

	s.log.Info("invoice finalized",
		zap.String("invoice_id", record.ID.String()),
		zap.String("invoice_number", record.InvoiceNumber),
		zap.String("user_id", record.UserID.String()),
		zap.String("grand_total", record.GrandTotal.StringFixed(2)),
	)
	return sealed, nil
}

func (s *invoiceService) Verify(ctx context.Context, userID, invoiceID uuid.UUID) error {
	inv, err := s.invoices.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	if err := integrity.Verify(inv); err != nil {
		s.log.Warn("invoice integrity check failed",
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// Rehash rebuilds the integrity hash for an invoice whose hashed fields were
// edited after finalization and persists the fresh digest.
func (s *invoiceService) Rehash(ctx context.Context, userID, invoiceID uuid.UUID) (*FinalizedInvoice, error) {
	inv, err := s.invoices.GetByID(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	sealed, err := seal(*inv)
	if err != nil {
		return nil, err
	}
	if err := s.invoices.UpdateHash(ctx, userID, invoiceID, sealed.Hash()); err != nil {
		return nil, err
	}

	s.log.Info("invoice rehashed",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("hash", sealed.Hash()),
	)
	return sealed, nil
}
