package sequence

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"gstbill/internal/domain"
	"gstbill/mocks"
)

// memCounterRepo is an in-memory CounterRepository with the same atomicity
// guarantee as the SQL upsert: increment and read happen under one lock.
type memCounterRepo struct {
	mu       sync.Mutex
	counters map[string]int64
	failWith error
}

func newMemCounterRepo() *memCounterRepo {
	return &memCounterRepo{counters: make(map[string]int64)}
}

func (r *memCounterRepo) IncrementAndGet(_ context.Context, userID uuid.UUID, year, month int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return 0, r.failWith
	}
	key := fmt.Sprintf("%s_%04d%02d", userID, year, month)
	r.counters[key]++
	return r.counters[key], nil
}

func TestCounterAllocator_SequentialNumbers(t *testing.T) {
	repo := newMemCounterRepo()
	alloc := NewCounterAllocator(repo, zap.NewNop())

	userID := uuid.New()
	date := time.Date(2024, 7, 15, 0, 0, 0, 0, time.UTC)

	first, err := alloc.Next(context.Background(), userID, date)
	require.NoError(t, err)
	assert.Equal(t, "INV-202407-0001", first)

	second, err := alloc.Next(context.Background(), userID, date)
	require.NoError(t, err)
	assert.Equal(t, "INV-202407-0002", second)
}

func TestCounterAllocator_ScopesAreIndependent(t *testing.T) {
	repo := newMemCounterRepo()
	alloc := NewCounterAllocator(repo, zap.NewNop())

	userA := uuid.New()
	userB := uuid.New()
	july := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	august := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	n1, err := alloc.Next(context.Background(), userA, july)
	require.NoError(t, err)
	n2, err := alloc.Next(context.Background(), userB, july)
	require.NoError(t, err)
	n3, err := alloc.Next(context.Background(), userA, august)
	require.NoError(t, err)

	// Each (user, month) scope starts its own sequence at 1.
	assert.Equal(t, "INV-202407-0001", n1)
	assert.Equal(t, "INV-202407-0001", n2)
	assert.Equal(t, "INV-202408-0001", n3)
}

func TestCounterAllocator_ConcurrentAllocationsAreDistinctAndGapless(t *testing.T) {
	const callers = 100

	repo := newMemCounterRepo()
	alloc := NewCounterAllocator(repo, zap.NewNop())

	userID := uuid.New()
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	results := make(chan string, callers)
	errs := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := alloc.Next(context.Background(), userID, date)
			if err != nil {
				errs <- err
				return
			}
			results <- number
		}()
	}
	wg.Wait()
	close(results)
	close(errs)

	for err := range errs {
		t.Fatalf("allocation failed: %v", err)
	}

	var seqs []int64
	seen := make(map[string]bool)
	for number := range results {
		require.False(t, seen[number], "duplicate invoice number %s", number)
		seen[number] = true

		seq, ok := ParseSequence(number)
		require.True(t, ok, "unparseable number %s", number)
		seqs = append(seqs, seq)
	}

	require.Len(t, seqs, callers)
	sort.Slice(seqs, func(i, j int) bool { return seqs[i] < seqs[j] })
	for i, seq := range seqs {
		assert.Equal(t, int64(i+1), seq, "sequence gap at position %d", i)
	}
}

func TestCounterAllocator_StorageFailure(t *testing.T) {
	repo := newMemCounterRepo()
	repo.failWith = errors.New("connection refused")
	alloc := NewCounterAllocator(repo, zap.NewNop())

	userID := uuid.New()
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	_, err := alloc.Next(context.Background(), userID, date)
	require.Error(t, err)

	var aErr *domain.AllocationError
	require.True(t, errors.As(err, &aErr))
	assert.Equal(t, ScopeKey(userID, date), aErr.ScopeKey)
	assert.ErrorContains(t, err, "connection refused")
}

func TestScanAllocator_NextIsMaxPlusOne(t *testing.T) {
	userID := uuid.New()
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	invoices := new(mocks.MockInvoiceRepo)
	invoices.On("MaxSequence", context.Background(), userID, 2024, 7).Return(int64(41), nil)

	alloc := NewScanAllocator(invoices, zap.NewNop())
	number, err := alloc.Next(context.Background(), userID, date)
	require.NoError(t, err)
	assert.Equal(t, "INV-202407-0042", number)
	invoices.AssertExpectations(t)
}

func TestScanAllocator_EmptyScopeStartsAtOne(t *testing.T) {
	userID := uuid.New()
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	invoices := new(mocks.MockInvoiceRepo)
	invoices.On("MaxSequence", context.Background(), userID, 2024, 7).Return(int64(0), nil)

	alloc := NewScanAllocator(invoices, zap.NewNop())
	number, err := alloc.Next(context.Background(), userID, date)
	require.NoError(t, err)
	assert.Equal(t, "INV-202407-0001", number)
}

func TestScanAllocator_StorageFailure(t *testing.T) {
	userID := uuid.New()
	date := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

	invoices := new(mocks.MockInvoiceRepo)
	invoices.On("MaxSequence", context.Background(), userID, 2024, 7).
		Return(int64(0), errors.New("relation does not exist"))

	alloc := NewScanAllocator(invoices, zap.NewNop())
	_, err := alloc.Next(context.Background(), userID, date)

	var aErr *domain.AllocationError
	require.True(t, errors.As(err, &aErr))
	assert.Equal(t, ScopeKey(userID, date), aErr.ScopeKey)
}
