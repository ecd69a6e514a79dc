package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gstbill/internal/port"
)

// MockRateRepo is a mock implementation of port.RateRepository.
type MockRateRepo struct {
	mock.Mock
}

func (m *MockRateRepo) LoadAll(ctx context.Context) ([]port.GSTRateEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.GSTRateEntry), args.Error(1)
}
