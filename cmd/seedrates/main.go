// Command seedrates converts the GST HSN/SAC rate Excel master into a SQL
// seed file for the gst_rates table. It reads the goods sheet (HSN_Master)
// and the services sheet (SAC_Master).
// Usage: go run ./cmd/seedrates <master.xlsx>
// Output: db/seeds/gst_rates.sql
package main

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

const batchSize = 500

type rateEntry struct {
	code        string
	description string
	gstRate     float64
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: seedrates <master.xlsx>")
	}
	xlsxPath := os.Args[1]
	outPath := "db/seeds/gst_rates.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	seen := make(map[string]bool)
	var entries []rateEntry

	hsnEntries, err := parseHSNSheet(f, seen)
	if err != nil {
		return fmt.Errorf("parse HSN sheet: %w", err)
	}
	entries = append(entries, hsnEntries...)
	log.Printf("HSN sheet: %d entries", len(hsnEntries))

	sacEntries, err := parseSACSheet(f, seen)
	if err != nil {
		return fmt.Errorf("parse SAC sheet: %w", err)
	}
	entries = append(entries, sacEntries...)
	log.Printf("SAC sheet: %d entries", len(sacEntries))

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if _, err := fmt.Fprintf(out,
		"-- GST rate seed data generated from the HSN/SAC Excel master.\n-- %d entries in batches of %d.\nBEGIN;\n\n",
		len(entries), batchSize); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i := 0; i < len(entries); i += batchSize {
		end := i + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := writeBatch(out, entries[i:end]); err != nil {
			return fmt.Errorf("write batch at offset %d: %w", i, err)
		}
	}

	if _, err := fmt.Fprintln(out, "\nCOMMIT;"); err != nil {
		return fmt.Errorf("write footer: %w", err)
	}

	log.Printf("Generated %d total entries in %s", len(entries), outPath)
	return nil
}

// parseHSNSheet reads the goods sheet (index 0). Columns: F(5)=4-digit code,
// H(7)=4-digit desc, I(8)=6-digit code, J(9)=6-digit desc, K(10)=8-digit
// code, M(12)=8-digit desc, N(13)=GST rate. Data starts at row index 5.
func parseHSNSheet(f *excelize.File, seen map[string]bool) ([]rateEntry, error) {
	sheetName := f.GetSheetName(0)
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, err
	}

	var entries []rateEntry
	for i := 5; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 14 {
			continue
		}

		rateStr := strings.TrimSuffix(strings.TrimSpace(cellVal(row, 13)), "%")
		if rateStr == "" {
			continue
		}
		var rate float64
		if _, serr := fmt.Sscanf(rateStr, "%f", &rate); serr != nil {
			continue
		}

		for _, col := range []struct{ code, desc int }{{10, 12}, {8, 9}, {5, 7}} {
			if code := strings.TrimSpace(cellVal(row, col.code)); code != "" && isNumeric(code) {
				entries = addEntry(entries, seen, code, strings.TrimSpace(cellVal(row, col.desc)), rate)
			}
		}
	}
	return entries, nil
}

// parseSACSheet reads the services sheet. Columns: A(0)=4-digit SAC,
// B(1)=desc, C(2)=6-digit SAC, D(3)=desc, E(4)=rate as free text
// ("18%", "Exempt", "12%-18%"). Data starts at row index 3.
func parseSACSheet(f *excelize.File, seen map[string]bool) ([]rateEntry, error) {
	rows, err := f.GetRows("SAC_Master")
	if err != nil {
		return nil, err
	}

	var entries []rateEntry
	for i := 3; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 5 {
			continue
		}

		rates := parseSACRate(strings.TrimSpace(cellVal(row, 4)))
		if len(rates) == 0 {
			continue
		}

		for _, rate := range rates {
			if code := strings.TrimSpace(cellVal(row, 2)); code != "" && isNumeric(code) {
				entries = addEntry(entries, seen, code, strings.TrimSpace(cellVal(row, 3)), rate)
			}
			if code := strings.TrimSpace(cellVal(row, 0)); code != "" && isNumeric(code) {
				entries = addEntry(entries, seen, code, strings.TrimSpace(cellVal(row, 1)), rate)
			}
		}
	}
	return entries, nil
}

var ratePattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%`)

// parseSACRate extracts GST rate(s) from free-text SAC rate strings.
func parseSACRate(s string) []float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	lower := strings.ToLower(s)
	if lower == "exempt" || lower == "nil" {
		return []float64{0}
	}

	matches := ratePattern.FindAllStringSubmatch(s, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[float64]bool)
	var rates []float64
	for _, m := range matches {
		var rate float64
		if _, err := fmt.Sscanf(m[1], "%f", &rate); err == nil && !seen[rate] {
			seen[rate] = true
			rates = append(rates, rate)
		}
	}
	return rates
}

func addEntry(entries []rateEntry, seen map[string]bool, code, description string, gstRate float64) []rateEntry {
	key := fmt.Sprintf("%s|%.2f", code, gstRate)
	if seen[key] {
		return entries
	}
	seen[key] = true
	return append(entries, rateEntry{code: code, description: description, gstRate: gstRate})
}

func writeBatch(out *os.File, batch []rateEntry) error {
	if len(batch) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("INSERT INTO gst_rates (code, description, gst_rate, effective_from) VALUES\n")

	for i := range batch {
		e := &batch[i]
		if i > 0 {
			b.WriteString(",\n")
		}
		fmt.Fprintf(&b, "  ('%s', '%s', %.2f, '2017-07-01')",
			escapeSQL(e.code), escapeSQL(e.description), e.gstRate)
	}

	b.WriteString("\nON CONFLICT (code, gst_rate, effective_from) DO NOTHING;\n")

	_, err := out.WriteString(b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
