package tax

import (
	"github.com/shopspring/decimal"

	"gstbill/internal/domain"
)

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func validateLineItem(idx int, item *domain.LineItem) error {
	if item.Quantity.IsNegative() {
		return domain.NewValidationError(idx, "quantity", "must not be negative")
	}
	if item.UnitPrice.IsNegative() {
		return domain.NewValidationError(idx, "unit_price", "must not be negative")
	}
	if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(hundred) {
		return domain.NewValidationError(idx, "discount_percent", "must be between 0 and 100")
	}
	return nil
}

// ComputeLineItem turns one raw line item and its resolved rate into a fully
// rounded ComputedLineItem. Each tax component is rounded independently from
// the taxable amount rather than derived by splitting a pre-rounded total,
// which keeps per-line audit accuracy. The line total is a sum of already
// 2-decimal terms and needs no further rounding.
func ComputeLineItem(idx int, item *domain.LineItem, rate ResolvedRate) (domain.ComputedLineItem, error) {
	if err := validateLineItem(idx, item); err != nil {
		return domain.ComputedLineItem{}, err
	}

	gross := item.Quantity.Mul(item.UnitPrice)
	discountAmount := gross.Mul(item.DiscountPercent).Div(hundred)
	taxable := round2(gross.Sub(discountAmount))

	cgst := round2(taxable.Mul(rate.CGSTRate).Div(hundred))
	sgst := round2(taxable.Mul(rate.SGSTRate).Div(hundred))
	igst := round2(taxable.Mul(rate.IGSTRate).Div(hundred))

	return domain.ComputedLineItem{
		Description:    item.Description,
		HSNSACCode:     item.HSNSACCode,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		GrossAmount:    round2(gross),
		DiscountAmount: round2(discountAmount),
		TaxableAmount:  taxable,
		CGSTRate:       rate.CGSTRate,
		CGSTAmount:     cgst,
		SGSTRate:       rate.SGSTRate,
		SGSTAmount:     sgst,
		IGSTRate:       rate.IGSTRate,
		IGSTAmount:     igst,
		TotalAmount:    taxable.Add(cgst).Add(sgst).Add(igst),
	}, nil
}
