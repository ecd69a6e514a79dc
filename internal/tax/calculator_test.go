package tax

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstbill/internal/domain"
)

func TestComputeLineItem_WorkedExample_IntraState(t *testing.T) {
	item := domain.LineItem{
		Description: "Widget",
		HSNSACCode:  "8517",
		Quantity:    dec("2"),
		UnitPrice:   dec("100"),
	}
	rate := ResolvedRate{CGSTRate: dec("9"), SGSTRate: dec("9")}

	got, err := ComputeLineItem(0, &item, rate)
	require.NoError(t, err)

	assert.Equal(t, "200.00", got.TaxableAmount.StringFixed(2))
	assert.Equal(t, "18.00", got.CGSTAmount.StringFixed(2))
	assert.Equal(t, "18.00", got.SGSTAmount.StringFixed(2))
	assert.Equal(t, "0.00", got.IGSTAmount.StringFixed(2))
	assert.Equal(t, "236.00", got.TotalAmount.StringFixed(2))
}

func TestComputeLineItem_WorkedExample_InterState(t *testing.T) {
	item := domain.LineItem{
		Description: "Widget",
		HSNSACCode:  "8517",
		Quantity:    dec("2"),
		UnitPrice:   dec("100"),
	}
	rate := ResolvedRate{IGSTRate: dec("18")}

	got, err := ComputeLineItem(0, &item, rate)
	require.NoError(t, err)

	assert.Equal(t, "0.00", got.CGSTAmount.StringFixed(2))
	assert.Equal(t, "0.00", got.SGSTAmount.StringFixed(2))
	assert.Equal(t, "36.00", got.IGSTAmount.StringFixed(2))
	// Grand total is identical regardless of split.
	assert.Equal(t, "236.00", got.TotalAmount.StringFixed(2))
}

func TestComputeLineItem_Discount(t *testing.T) {
	item := domain.LineItem{
		Description:     "Service",
		HSNSACCode:      "9983",
		Quantity:        dec("1"),
		UnitPrice:       dec("1000"),
		DiscountPercent: dec("10"),
	}
	rate := ResolvedRate{CGSTRate: dec("9"), SGSTRate: dec("9")}

	got, err := ComputeLineItem(0, &item, rate)
	require.NoError(t, err)

	assert.Equal(t, "1000.00", got.GrossAmount.StringFixed(2))
	assert.Equal(t, "100.00", got.DiscountAmount.StringFixed(2))
	assert.Equal(t, "900.00", got.TaxableAmount.StringFixed(2))
	assert.Equal(t, "81.00", got.CGSTAmount.StringFixed(2))
	assert.Equal(t, "1062.00", got.TotalAmount.StringFixed(2))
}

// Each tax component is rounded independently, not derived from a
// pre-rounded total, so the line total is always the exact sum of its
// rounded parts.
func TestComputeLineItem_TotalIsSumOfRoundedComponents(t *testing.T) {
	tests := []struct {
		name     string
		quantity string
		price    string
		discount string
		cgst     string
		sgst     string
		igst     string
	}{
		{"fractional price intra", "3", "33.33", "0", "9", "9", "0"},
		{"fractional price inter", "3", "33.33", "0", "0", "0", "18"},
		{"odd rate", "7", "19.99", "5", "2.5", "2.5", "0"},
		{"sub-cent tax", "1", "0.01", "0", "9", "9", "0"},
		{"free item", "10", "0", "0", "9", "9", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := domain.LineItem{
				Quantity:        dec(tt.quantity),
				UnitPrice:       dec(tt.price),
				DiscountPercent: dec(tt.discount),
			}
			rate := ResolvedRate{
				CGSTRate: dec(tt.cgst),
				SGSTRate: dec(tt.sgst),
				IGSTRate: dec(tt.igst),
			}

			got, err := ComputeLineItem(0, &item, rate)
			require.NoError(t, err)

			sum := got.TaxableAmount.
				Add(got.CGSTAmount).
				Add(got.SGSTAmount).
				Add(got.IGSTAmount)
			assert.True(t, got.TotalAmount.Equal(sum),
				"total %s != sum %s", got.TotalAmount, sum)

			// Every amount is a 2-decimal value.
			assert.True(t, got.TaxableAmount.Equal(got.TaxableAmount.Round(2)))
			assert.True(t, got.CGSTAmount.Equal(got.CGSTAmount.Round(2)))
			assert.True(t, got.TotalAmount.Equal(got.TotalAmount.Round(2)))
		})
	}
}

func TestComputeLineItem_Validation(t *testing.T) {
	rate := ResolvedRate{CGSTRate: dec("9"), SGSTRate: dec("9")}

	tests := []struct {
		name      string
		item      domain.LineItem
		wantField string
	}{
		{
			name:      "negative quantity",
			item:      domain.LineItem{Quantity: dec("-1"), UnitPrice: dec("10")},
			wantField: "quantity",
		},
		{
			name:      "negative unit price",
			item:      domain.LineItem{Quantity: dec("1"), UnitPrice: dec("-10")},
			wantField: "unit_price",
		},
		{
			name:      "discount below range",
			item:      domain.LineItem{Quantity: dec("1"), UnitPrice: dec("10"), DiscountPercent: dec("-1")},
			wantField: "discount_percent",
		},
		{
			name:      "discount above range",
			item:      domain.LineItem{Quantity: dec("1"), UnitPrice: dec("10"), DiscountPercent: dec("101")},
			wantField: "discount_percent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeLineItem(3, &tt.item, rate)
			require.Error(t, err)

			var vErr *domain.ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, 3, vErr.ItemIndex)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestComputeLineItem_BoundaryDiscounts(t *testing.T) {
	rate := ResolvedRate{CGSTRate: dec("9"), SGSTRate: dec("9")}

	zero := domain.LineItem{Quantity: dec("1"), UnitPrice: dec("100"), DiscountPercent: dec("0")}
	got, err := ComputeLineItem(0, &zero, rate)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.TaxableAmount.StringFixed(2))

	full := domain.LineItem{Quantity: dec("1"), UnitPrice: dec("100"), DiscountPercent: dec("100")}
	got, err = ComputeLineItem(0, &full, rate)
	require.NoError(t, err)
	assert.Equal(t, "0.00", got.TaxableAmount.StringFixed(2))
	assert.Equal(t, "0.00", got.TotalAmount.StringFixed(2))
}
