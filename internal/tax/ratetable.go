package tax

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gstbill/internal/port"
)

var two = decimal.NewFromInt(2)

// ResolvedRate is the GST percentage split for one line item. Exactly one of
// the two shapes is ever produced: CGST = SGST with IGST zero for intra-state
// supplies, or IGST alone for inter-state supplies.
type ResolvedRate struct {
	CGSTRate decimal.Decimal
	SGSTRate decimal.Decimal
	IGSTRate decimal.Decimal
}

// TotalRate returns the combined percentage regardless of split.
func (r ResolvedRate) TotalRate() decimal.Decimal {
	return r.CGSTRate.Add(r.SGSTRate).Add(r.IGSTRate)
}

// RateTable maps HSN/SAC classification codes to total GST percentages.
// It is immutable after construction and safe for concurrent use. Unknown
// codes resolve to the default rate so invoice creation is never blocked by
// a missing rate-table entry.
type RateTable struct {
	byCode      map[string]decimal.Decimal
	defaultRate decimal.Decimal
}

// NewRateTable builds a RateTable from rate rows loaded from the rate master.
// When the same code appears more than once the first row wins, matching the
// code-then-rate ordering of the loader query.
func NewRateTable(entries []port.GSTRateEntry, defaultRate decimal.Decimal) *RateTable {
	m := make(map[string]decimal.Decimal, len(entries))
	for idx := range entries {
		e := &entries[idx]
		code := strings.TrimSpace(e.Code)
		if code == "" {
			continue
		}
		if _, ok := m[code]; !ok {
			m[code] = decimal.NewFromFloat(e.GSTRate)
		}
	}
	return &RateTable{byCode: m, defaultRate: defaultRate}
}

// LoadRateTable reads the active rate rows from storage and builds a
// RateTable over them.
func LoadRateTable(ctx context.Context, rates port.RateRepository, defaultRate decimal.Decimal) (*RateTable, error) {
	entries, err := rates.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading GST rates: %w", err)
	}
	return NewRateTable(entries, defaultRate), nil
}

// NewRateTableFromMap builds a RateTable from an explicit code→rate map.
// Useful for tests and for callers that load rates from configuration.
func NewRateTableFromMap(rates map[string]decimal.Decimal, defaultRate decimal.Decimal) *RateTable {
	m := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		m[strings.TrimSpace(code)] = rate
	}
	return &RateTable{byCode: m, defaultRate: defaultRate}
}

// TotalRate looks up the total GST percentage for a classification code using
// longest-prefix matching: the full code first, then successively shorter
// prefixes. Codes with no matching entry fall back to the default rate.
func (t *RateTable) TotalRate(code string) decimal.Decimal {
	code = strings.TrimSpace(code)
	for l := len(code); l > 0; l-- {
		if rate, ok := t.byCode[code[:l]]; ok {
			return rate
		}
	}
	return t.defaultRate
}

// Resolve splits the total rate for a classification code into its statutory
// components: IGST alone for inter-state supplies, an equal CGST/SGST split
// otherwise.
func (t *RateTable) Resolve(code string, interState bool) ResolvedRate {
	total := t.TotalRate(code)
	if interState {
		return ResolvedRate{
			CGSTRate: decimal.Zero,
			SGSTRate: decimal.Zero,
			IGSTRate: total,
		}
	}
	half := total.Div(two)
	return ResolvedRate{
		CGSTRate: half,
		SGSTRate: half,
		IGSTRate: decimal.Zero,
	}
}

// InterState reports whether a supply crosses state lines. State names are
// compared case-insensitively after trimming surrounding whitespace.
func InterState(sellerState, buyerState string) bool {
	normalize := func(s string) string {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return normalize(sellerState) != normalize(buyerState)
}
