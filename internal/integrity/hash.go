// Package integrity computes and verifies the tamper-evidence digest stored
// on finalized invoices. The digest is a SHA-256 over a canonical,
// fixed-order projection of the invoice: reproducing the exact byte string
// is what makes the hash stable, so the serialization here must never change
// shape without a migration of stored hashes.
package integrity

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gstbill/internal/domain"
)

// ItemView is the hashed projection of one line item.
type ItemView struct {
	Description string
	HSNSACCode  string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TotalAmount decimal.Decimal
}

// View is the canonical field projection an invoice digest is computed over.
type View struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	UserID        uuid.UUID
	CustomerName  string
	CustomerGSTIN string
	Items         []ItemView
	GrandTotal    decimal.Decimal
}

// canonical serializes the view as a pipe-delimited string in fixed field
// order, with dates as YYYY-MM-DD and amounts at exactly two decimals.
func (v *View) canonical() string {
	var b strings.Builder
	b.WriteString(v.InvoiceNumber)
	b.WriteByte('|')
	b.WriteString(v.InvoiceDate.Format("2006-01-02"))
	b.WriteByte('|')
	b.WriteString(v.UserID.String())
	b.WriteByte('|')
	b.WriteString(v.CustomerName)
	b.WriteByte('|')
	b.WriteString(v.CustomerGSTIN)
	for idx := range v.Items {
		item := &v.Items[idx]
		b.WriteByte('|')
		b.WriteString(item.Description)
		b.WriteByte('|')
		b.WriteString(item.HSNSACCode)
		b.WriteByte('|')
		b.WriteString(item.Quantity.String())
		b.WriteByte('|')
		b.WriteString(item.UnitPrice.StringFixed(2))
		b.WriteByte('|')
		b.WriteString(item.TotalAmount.StringFixed(2))
	}
	b.WriteByte('|')
	b.WriteString(v.GrandTotal.StringFixed(2))
	return b.String()
}

// Compute returns the hex SHA-256 digest of the view's canonical form.
func Compute(v View) string {
	sum := sha256.Sum256([]byte(v.canonical()))
	return hex.EncodeToString(sum[:])
}

// ViewFromInvoice rebuilds the canonical view from a stored invoice record.
func ViewFromInvoice(inv *domain.Invoice) (View, error) {
	var items []domain.ComputedLineItem
	if len(inv.Items) > 0 {
		if err := json.Unmarshal(inv.Items, &items); err != nil {
			return View{}, fmt.Errorf("unmarshaling invoice %s items: %w", inv.ID, err)
		}
	}

	itemViews := make([]ItemView, 0, len(items))
	for idx := range items {
		item := &items[idx]
		itemViews = append(itemViews, ItemView{
			Description: item.Description,
			HSNSACCode:  item.HSNSACCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalAmount: item.TotalAmount,
		})
	}

	return View{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		UserID:        inv.UserID,
		CustomerName:  inv.CustomerName,
		CustomerGSTIN: inv.CustomerGSTIN,
		Items:         itemViews,
		GrandTotal:    inv.GrandTotal,
	}, nil
}

// Verify recomputes the digest for a stored invoice and compares it to the
// stored hash. A mismatch is returned as a domain.IntegrityError — a tamper
// or corruption signal the caller must surface, never repair.
func Verify(inv *domain.Invoice) error {
	view, err := ViewFromInvoice(inv)
	if err != nil {
		return err
	}
	actual := Compute(view)
	if subtle.ConstantTimeCompare([]byte(actual), []byte(inv.IntegrityHash)) != 1 {
		return &domain.IntegrityError{
			InvoiceID: inv.ID,
			Expected:  inv.IntegrityHash,
			Actual:    actual,
		}
	}
	return nil
}
