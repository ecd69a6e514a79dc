package csvexport

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"gstbill/internal/port"
)

// exportPageSize bounds how many invoices are pulled per repository call.
const exportPageSize = 500

// ExportRegister streams a user's invoice register to w as CSV, prefixed
// with the UTF-8 BOM. Invoices are fetched in pages so the export does not
// hold a user's full history in memory.
func ExportRegister(ctx context.Context, invoices port.InvoiceRepository, userID uuid.UUID, w io.Writer) error {
	if _, err := w.Write(BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}

	cw := NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for offset := 0; ; {
		batch, total, err := invoices.ListByUser(ctx, userID, offset, exportPageSize)
		if err != nil {
			return fmt.Errorf("listing invoices at offset %d: %w", offset, err)
		}
		if err := cw.WriteInvoices(batch); err != nil {
			return fmt.Errorf("writing rows at offset %d: %w", offset, err)
		}

		offset += len(batch)
		if len(batch) == 0 || offset >= total {
			break
		}
	}

	cw.Flush()
	return cw.Error()
}
