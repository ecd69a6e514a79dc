package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockCounterRepo is a mock implementation of port.CounterRepository.
type MockCounterRepo struct {
	mock.Mock
}

func (m *MockCounterRepo) IncrementAndGet(ctx context.Context, userID uuid.UUID, year, month int) (int64, error) {
	args := m.Called(ctx, userID, year, month)
	return args.Get(0).(int64), args.Error(1)
}
