package csvexport

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gstbill/internal/domain"
	"gstbill/mocks"
)

func registerInvoice(number string) domain.Invoice {
	return domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: number,
		InvoiceDate:   time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC),
		Status:        domain.InvoiceStatusFinalized,
		CreatedAt:     time.Date(2024, 7, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestExportRegister(t *testing.T) {
	userID := uuid.New()
	invoices := new(mocks.MockInvoiceRepo)
	invoices.On("ListByUser", mock.Anything, userID, 0, exportPageSize).
		Return([]domain.Invoice{
			registerInvoice("INV-202407-0001"),
			registerInvoice("INV-202407-0002"),
		}, 2, nil)

	var buf bytes.Buffer
	require.NoError(t, ExportRegister(context.Background(), invoices, userID, &buf))

	out := buf.Bytes()
	require.True(t, bytes.HasPrefix(out, BOM))

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, BOM)))
	rows, err := r.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "INV-202407-0001", rows[1][0])
	assert.Equal(t, "INV-202407-0002", rows[2][0])
	invoices.AssertExpectations(t)
}

func TestExportRegister_Paginates(t *testing.T) {
	userID := uuid.New()
	invoices := new(mocks.MockInvoiceRepo)
	invoices.On("ListByUser", mock.Anything, userID, 0, exportPageSize).
		Return([]domain.Invoice{registerInvoice("INV-202407-0001")}, 2, nil)
	invoices.On("ListByUser", mock.Anything, userID, 1, exportPageSize).
		Return([]domain.Invoice{registerInvoice("INV-202407-0002")}, 2, nil)

	var buf bytes.Buffer
	require.NoError(t, ExportRegister(context.Background(), invoices, userID, &buf))

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), BOM)))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	invoices.AssertExpectations(t)
}

func TestExportRegister_Empty(t *testing.T) {
	userID := uuid.New()
	invoices := new(mocks.MockInvoiceRepo)
	invoices.On("ListByUser", mock.Anything, userID, 0, exportPageSize).
		Return([]domain.Invoice{}, 0, nil)

	var buf bytes.Buffer
	require.NoError(t, ExportRegister(context.Background(), invoices, userID, &buf))

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(buf.Bytes(), BOM)))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1) // header only
}

func TestExportRegister_StorageFailure(t *testing.T) {
	userID := uuid.New()
	invoices := new(mocks.MockInvoiceRepo)
	invoices.On("ListByUser", mock.Anything, userID, 0, exportPageSize).
		Return(nil, 0, errors.New("connection refused"))

	var buf bytes.Buffer
	assert.Error(t, ExportRegister(context.Background(), invoices, userID, &buf))
}
