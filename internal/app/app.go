// Package app assembles the invoice engine: configuration, logging, the
// database pool, repositories, the rate table, and the invoice service.
// Binaries and embedding callers go through New instead of wiring the
// pieces by hand.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gstbill/internal/config"
	"gstbill/internal/logger"
	"gstbill/internal/port"
	"gstbill/internal/repository/postgres"
	"gstbill/internal/sequence"
	"gstbill/internal/service"
	"gstbill/internal/tax"
)

// App holds the wired engine and the resources it owns.
type App struct {
	Config   *config.Config
	Log      *zap.Logger
	DB       *sqlx.DB
	Invoices port.InvoiceRepository
	Service  service.InvoiceService
}

// New loads configuration and builds the full engine on top of it.
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	counterRepo := postgres.NewCounterRepo(db)
	invoiceRepo := postgres.NewInvoiceRepo(db)
	rateRepo := postgres.NewRateRepo(db)

	// Load the rate table once at startup; unknown codes fall back to the
	// configured default rate.
	rates, err := tax.LoadRateTable(ctx, rateRepo, decimal.NewFromFloat(cfg.Invoice.DefaultGSTRate))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load rate table: %w", err)
	}

	allocator := NewAllocator(&cfg.Invoice, counterRepo, invoiceRepo, log)
	svc := service.NewInvoiceService(rates, allocator, invoiceRepo, log)

	return &App{
		Config:   cfg,
		Log:      log,
		DB:       db,
		Invoices: invoiceRepo,
		Service:  svc,
	}, nil
}

// Close releases the resources the app owns.
func (a *App) Close() error {
	_ = a.Log.Sync()
	return a.DB.Close()
}

// NewAllocator selects the numbering strategy from configuration. The
// default is the atomic counter alone; AllowScanFallback chains the racy
// scan allocator behind it, used only when the counter store fails.
func NewAllocator(
	cfg *config.InvoiceConfig,
	counters port.CounterRepository,
	invoices port.InvoiceRepository,
	log *zap.Logger,
) sequence.Allocator {
	primary := sequence.NewCounterAllocator(counters, log)
	if !cfg.AllowScanFallback {
		return primary
	}
	return sequence.NewFallbackAllocator(primary, sequence.NewScanAllocator(invoices, log), log)
}
