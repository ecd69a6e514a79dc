package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer identifies the billed party on an invoice.
type Customer struct {
	Name    string `db:"customer_name" json:"name"`
	GSTIN   string `db:"customer_gstin" json:"gstin"`
	Address string `db:"customer_address" json:"address"`
	State   string `db:"customer_state" json:"state"`
}

// LineItem is a single raw line supplied by the caller. It is never mutated
// by the engine.
type LineItem struct {
	Description     string          `json:"description"`
	HSNSACCode      string          `json:"hsn_sac_code"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// ComputedLineItem is a line item after rate resolution, tax splitting, and
// rounding. All amounts are fixed to two decimal places.
type ComputedLineItem struct {
	Description    string          `json:"description"`
	HSNSACCode     string          `json:"hsn_sac_code"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	CGSTRate       decimal.Decimal `json:"cgst_rate"`
	CGSTAmount     decimal.Decimal `json:"cgst_amount"`
	SGSTRate       decimal.Decimal `json:"sgst_rate"`
	SGSTAmount     decimal.Decimal `json:"sgst_amount"`
	IGSTRate       decimal.Decimal `json:"igst_rate"`
	IGSTAmount     decimal.Decimal `json:"igst_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// InvoiceTotals holds invoice-level sums of already-rounded line values.
// GrandTotal = TaxableAmount + TotalTax.
type InvoiceTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TaxableAmount decimal.Decimal `json:"taxable_amount"`
	TotalCGST     decimal.Decimal `json:"total_cgst"`
	TotalSGST     decimal.Decimal `json:"total_sgst"`
	TotalIGST     decimal.Decimal `json:"total_igst"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
}

// InvoiceCalculation is the result of the computation pipeline: the computed
// lines in caller order plus the aggregated totals.
type InvoiceCalculation struct {
	Items  []ComputedLineItem `json:"items"`
	Totals InvoiceTotals      `json:"totals"`
}

// SequenceCounter is one row of the invoice_counters table: a single
// monotonic integer per (user, year, month) scope. It is mutated only by
// atomic increment-and-fetch.
type SequenceCounter struct {
	ScopeKey  string    `db:"scope_key" json:"scope_key"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Year      int       `db:"year" json:"year"`
	Month     int       `db:"month" json:"month"`
	LastValue int64     `db:"last_value" json:"last_value"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Invoice is a finalized, persisted invoice record. InvoiceNumber and
// IntegrityHash are assigned once at finalization; the hash must be
// recomputed whenever any hashed field is edited afterwards.
type Invoice struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"user_id"`
	InvoiceNumber   string          `db:"invoice_number" json:"invoice_number"`
	InvoiceDate     time.Time       `db:"invoice_date" json:"invoice_date"`
	CustomerName    string          `db:"customer_name" json:"customer_name"`
	CustomerGSTIN   string          `db:"customer_gstin" json:"customer_gstin"`
	CustomerAddress string          `db:"customer_address" json:"customer_address"`
	CustomerState   string          `db:"customer_state" json:"customer_state"`
	SellerState     string          `db:"seller_state" json:"seller_state"`
	Status          InvoiceStatus   `db:"status" json:"status"`
	Items           json.RawMessage `db:"items" json:"items"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	TotalDiscount   decimal.Decimal `db:"total_discount" json:"total_discount"`
	TaxableAmount   decimal.Decimal `db:"taxable_amount" json:"taxable_amount"`
	TotalCGST       decimal.Decimal `db:"total_cgst" json:"total_cgst"`
	TotalSGST       decimal.Decimal `db:"total_sgst" json:"total_sgst"`
	TotalIGST       decimal.Decimal `db:"total_igst" json:"total_igst"`
	TotalTax        decimal.Decimal `db:"total_tax" json:"total_tax"`
	GrandTotal      decimal.Decimal `db:"grand_total" json:"grand_total"`
	IntegrityHash   string          `db:"integrity_hash" json:"integrity_hash"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// Customer assembles the embedded customer columns into a Customer value.
func (i *Invoice) Customer() Customer {
	return Customer{
		Name:    i.CustomerName,
		GSTIN:   i.CustomerGSTIN,
		Address: i.CustomerAddress,
		State:   i.CustomerState,
	}
}
