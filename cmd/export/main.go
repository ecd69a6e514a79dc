// Command export writes a user's invoice register to a CSV file.
// Usage: export <user-uuid> [output.csv]
// Without an output argument the file name is derived from the user id and
// today's date.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"gstbill/internal/app"
	"gstbill/internal/csvexport"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		return fmt.Errorf("usage: export <user-uuid> [output.csv]")
	}

	userID, err := uuid.Parse(os.Args[1])
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", os.Args[1], err)
	}

	outPath := csvexport.BuildFilename("invoice_register_" + userID.String())
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	ctx := context.Background()
	a, err := app.New(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer func() { _ = out.Close() }()

	if err := csvexport.ExportRegister(ctx, a.Invoices, userID, out); err != nil {
		return fmt.Errorf("exporting register: %w", err)
	}

	log.Printf("invoice register written to %s", outPath)
	return nil
}
