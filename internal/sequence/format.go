package sequence

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var invoiceNumberRe = regexp.MustCompile(`^INV-(\d{4})(\d{2})-(\d+)$`)

// ScopeKey builds the composite counter key identifying one independent
// numbering sequence per user and calendar month.
func ScopeKey(userID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("%s_%s", userID, date.Format("200601"))
}

// FormatInvoiceNumber renders a sequence number as INV-{YYYY}{MM}-{seq}.
// The sequence is zero-padded to four digits but not truncated, so the
// 10000th invoice of a month formats as INV-YYYYMM-10000.
func FormatInvoiceNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("INV-%s-%04d", date.Format("200601"), seq)
}

// ParseSequence extracts the numeric sequence from a formatted invoice
// number. It returns 0 and false for numbers that do not match the
// INV-YYYYMM-NNNN shape.
func ParseSequence(invoiceNumber string) (int64, bool) {
	m := invoiceNumberRe.FindStringSubmatch(invoiceNumber)
	if m == nil {
		return 0, false
	}
	seq, err := strconv.ParseInt(m[3], 10, 64)
	if err != nil {
		return 0, false
	}
	return seq, true
}
