package runner

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobcore/internal/domain"
	"lobcore/internal/engine"
)

func newTestRunner() *BookRunner {
	return New(func(symbol string) *engine.Engine { return engine.New(symbol) })
}

func testOrder(id uint64, side domain.Side, price int64, qty uint64) *domain.Order {
	return &domain.Order{
		ID:                id,
		Side:              side,
		Kind:              domain.Limit,
		Price:             price,
		OriginalQuantity:  qty,
		RemainingQuantity: qty,
	}
}

func TestSubmit_RoutesBySymbol(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	_, err := r.Submit(ctx, "AAA", testOrder(1, domain.Buy, 100, 5))
	require.NoError(t, err)
	_, err = r.Submit(ctx, "BBB", testOrder(1, domain.Sell, 200, 5))
	require.NoError(t, err)

	bidAAA, ok := r.Engine("AAA").Book.BestBid()
	require.True(t, ok)
	assert.Equal(t, int64(100), bidAAA)

	askBBB, ok := r.Engine("BBB").Book.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(200), askBBB)
}

func TestSubmit_SameSymbolOrdersAreSequential(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	_, err := r.Submit(ctx, "AAA", testOrder(1, domain.Sell, 100, 10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]*domain.Trade, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			trades, err := r.Submit(ctx, "AAA", testOrder(uint64(10+i), domain.Buy, 100, 2))
			require.NoError(t, err)
			results[i] = trades
		}(i)
	}
	wg.Wait()

	total := uint64(0)
	for _, trades := range results {
		for _, tr := range trades {
			total += tr.Quantity
		}
	}
	assert.Equal(t, uint64(10), total)
}

func TestStop_RejectsFurtherSubmissions(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)

	require.NoError(t, r.Stop())

	_, err := r.Submit(ctx, "AAA", testOrder(1, domain.Buy, 100, 5))
	assert.ErrorIs(t, err, ErrStopped)
}

func TestCancel_RoundTrip(t *testing.T) {
	r := newTestRunner()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	_, err := r.Submit(ctx, "AAA", testOrder(1, domain.Buy, 100, 5))
	require.NoError(t, err)

	ok, err := r.Cancel(ctx, "AAA", 1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Cancel(ctx, "AAA", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}
