package tax

import (
	"github.com/shopspring/decimal"

	"gstbill/internal/domain"
)

// ComputeInvoiceTotals runs the full computation pipeline for one invoice:
// resolve rates per line, compute and round each line, then sum the
// already-rounded per-line values into invoice totals. The
// round-per-line-then-sum ordering is load-bearing for cent-level parity
// and must not be collapsed into a single final rounding step.
func ComputeInvoiceTotals(items []domain.LineItem, table *RateTable, sellerState, buyerState string) (*domain.InvoiceCalculation, error) {
	if len(items) == 0 {
		return nil, &domain.ValidationError{ItemIndex: -1, Message: domain.ErrEmptyInvoice.Error()}
	}

	interState := InterState(sellerState, buyerState)

	computed := make([]domain.ComputedLineItem, 0, len(items))
	for idx := range items {
		item := &items[idx]
		rate := table.Resolve(item.HSNSACCode, interState)
		line, err := ComputeLineItem(idx, item, rate)
		if err != nil {
			return nil, err
		}
		computed = append(computed, line)
	}

	return &domain.InvoiceCalculation{
		Items:  computed,
		Totals: sumLines(computed),
	}, nil
}

func sumLines(items []domain.ComputedLineItem) domain.InvoiceTotals {
	var t domain.InvoiceTotals
	t.Subtotal = decimal.Zero
	t.TotalDiscount = decimal.Zero
	t.TaxableAmount = decimal.Zero
	t.TotalCGST = decimal.Zero
	t.TotalSGST = decimal.Zero
	t.TotalIGST = decimal.Zero

	for idx := range items {
		item := &items[idx]
		t.Subtotal = t.Subtotal.Add(item.GrossAmount)
		t.TotalDiscount = t.TotalDiscount.Add(item.DiscountAmount)
		t.TaxableAmount = t.TaxableAmount.Add(item.TaxableAmount)
		t.TotalCGST = t.TotalCGST.Add(item.CGSTAmount)
		t.TotalSGST = t.TotalSGST.Add(item.SGSTAmount)
		t.TotalIGST = t.TotalIGST.Add(item.IGSTAmount)
	}

	t.TotalTax = t.TotalCGST.Add(t.TotalSGST).Add(t.TotalIGST)
	t.GrandTotal = t.TaxableAmount.Add(t.TotalTax)
	return t
}
