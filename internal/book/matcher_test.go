package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lobcore/internal/domain"
)

// --- Helpers -----------------------------------------------------------

func limitOrder(id uint64, side domain.Side, price int64, qty uint64) *domain.Order {
	return &domain.Order{
		ID:                id,
		Symbol:            "TEST",
		Side:              side,
		Kind:              domain.Limit,
		Price:             price,
		OriginalQuantity:  qty,
		RemainingQuantity: qty,
	}
}

func marketOrder(id uint64, side domain.Side, qty uint64) *domain.Order {
	return &domain.Order{
		ID:                id,
		Symbol:            "TEST",
		Side:              side,
		Kind:              domain.Market,
		OriginalQuantity:  qty,
		RemainingQuantity: qty,
	}
}

// --- Scenario tests -------------------------------------------------------

func TestProcessOrder_S1_SimpleCross(t *testing.T) {
	b := New("TEST")

	_, err := b.ProcessOrder(limitOrder(1, domain.Buy, 10000, 2))
	require.NoError(t, err)
	_, err = b.ProcessOrder(limitOrder(2, domain.Sell, 10200, 1))
	require.NoError(t, err)

	trades, err := b.ProcessOrder(marketOrder(3, domain.Buy, 1))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(2), trades[0].MakerOrderID)
	assert.Equal(t, uint64(3), trades[0].TakerOrderID)
	assert.Equal(t, int64(10200), trades[0].Price)
	assert.Equal(t, uint64(1), trades[0].Quantity)

	bid, ok := b.BestBid()
	assert.True(t, ok)
	assert.Equal(t, int64(10000), bid)
	_, ok = b.BestAsk()
	assert.False(t, ok)
}

func TestProcessOrder_S2_PartialFillAndRest(t *testing.T) {
	b := New("TEST")

	_, err := b.ProcessOrder(limitOrder(10, domain.Sell, 500, 5))
	require.NoError(t, err)

	trades, err := b.ProcessOrder(limitOrder(11, domain.Buy, 500, 3))
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(10), trades[0].MakerOrderID)
	assert.Equal(t, uint64(11), trades[0].TakerOrderID)
	assert.Equal(t, int64(500), trades[0].Price)
	assert.Equal(t, uint64(3), trades[0].Quantity)

	ask, ok := b.BestAsk()
	assert.True(t, ok)
	assert.Equal(t, int64(500), ask)
	_, ok = b.BestBid()
	assert.False(t, ok)

	bids, asks := b.Depth(5)
	assert.Empty(t, bids)
	require.Len(t, asks, 1)
	assert.Equal(t, uint64(2), asks[0].Quantity)
}

func TestProcessOrder_S3_FIFOAtOneLevel(t *testing.T) {
	b := New("TEST")

	o20 := limitOrder(20, domain.Sell, 100, 1)
	o20.Timestamp = 1
	o21 := limitOrder(21, domain.Sell, 100, 1)
	o21.Timestamp = 2

	_, err := b.ProcessOrder(o20)
	require.NoError(t, err)
	_, err = b.ProcessOrder(o21)
	require.NoError(t, err)

	trades, err := b.ProcessOrder(marketOrder(22, domain.Buy, 2))
	require.NoError(t, err)

	require.Len(t, trades, 2)
	assert.Equal(t, uint64(20), trades[0].MakerOrderID)
	assert.Equal(t, uint64(21), trades[1].MakerOrderID)
	assert.Equal(t, int64(100), trades[0].Price)
	assert.Equal(t, int64(100), trades[1].Price)
}

func TestProcessOrder_S4_IOCLeavesNoResidual(t *testing.T) {
	b := New("TEST")

	_, err := b.ProcessOrder(limitOrder(30, domain.Sell, 1000, 1))
	require.NoError(t, err)

	ioc := limitOrder(31, domain.Buy, 1000, 3)
	ioc.Kind = domain.IOC

	trades, err := b.ProcessOrder(ioc)
	require.NoError(t, err)

	require.Len(t, trades, 1)
	assert.Equal(t, uint64(1), trades[0].Quantity)
	assert.Equal(t, domain.Cancelled, ioc.Status)
	assert.Equal(t, uint64(2), ioc.RemainingQuantity)

	_, ok := b.BestBid()
	assert.False(t, ok)
}

func TestProcessOrder_S5_FOKKill(t *testing.T) {
	b := New("TEST")

	_, err := b.ProcessOrder(limitOrder(40, domain.Sell, 50, 1))
	require.NoError(t, err)

	fok := limitOrder(41, domain.Buy, 50, 2)
	fok.Kind = domain.FOK

	statsBefore := b.Stats()

	trades, err := b.ProcessOrder(fok)
	require.ErrorIs(t, err, ErrUnfillable)
	assert.Empty(t, trades)
	assert.Equal(t, domain.Rejected, fok.Status)

	statsAfter := b.Stats()
	assert.Equal(t, statsBefore, statsAfter)
}

func TestProcessOrder_S6_StopTriggerChain(t *testing.T) {
	b := New("TEST")

	_, err := b.ProcessOrder(limitOrder(50, domain.Sell, 200, 10))
	require.NoError(t, err)

	stop := &domain.Order{
		ID:                51,
		Symbol:            "TEST",
		Side:              domain.Buy,
		Kind:              domain.Stop,
		StopPrice:         150,
		OriginalQuantity:  1,
		RemainingQuantity: 1,
	}
	_, err = b.ProcessOrder(stop)
	require.NoError(t, err)

	trades, err := b.ProcessOrder(marketOrder(52, domain.Buy, 1))
	require.NoError(t, err)

	require.Len(t, trades, 2)
	assert.Equal(t, uint64(52), trades[0].TakerOrderID)
	assert.Equal(t, int64(200), trades[0].Price)
	assert.Equal(t, uint64(51), trades[1].TakerOrderID)
	assert.Equal(t, int64(200), trades[1].Price)
}

func TestProcessOrder_StopTriggersOnIntermediatePriceMidSweep(t *testing.T) {
	b := New("TEST")

	_, err := b.ProcessOrder(limitOrder(60, domain.Buy, 300, 1))
	require.NoError(t, err)
	_, err = b.ProcessOrder(limitOrder(61, domain.Buy, 100, 1))
	require.NoError(t, err)
	// Liquidity for the triggered stop (a Buy Stop re-enters as Market Buy,
	// which needs resting asks, not bids) to actually trade against once fired.
	// It sits above the best bid (300) so it rests instead of crossing.
	_, err = b.ProcessOrder(limitOrder(80, domain.Sell, 350, 1))
	require.NoError(t, err)

	stop := &domain.Order{
		ID:                70,
		Symbol:            "TEST",
		Side:              domain.Buy,
		Kind:              domain.Stop,
		StopPrice:         200,
		OriginalQuantity:  1,
		RemainingQuantity: 1,
	}
	_, err = b.ProcessOrder(stop)
	require.NoError(t, err)

	// Sweeping 2 units sell-side trades 1@300 then 1@100. The first trade
	// alone brings last_trade_price to 300, which already satisfies the
	// stop's trigger (>=200) — it must fire right then, interleaved into the
	// sweep, rather than be judged only against the sweep's final price of
	// 100, which would never trigger it and would leave it parked forever.
	trades, err := b.ProcessOrder(marketOrder(71, domain.Sell, 2))
	require.NoError(t, err)

	require.Len(t, trades, 3)
	assert.Equal(t, int64(300), trades[0].Price)
	assert.Equal(t, uint64(71), trades[0].TakerOrderID)
	assert.Equal(t, uint64(70), trades[1].TakerOrderID)
	assert.Equal(t, uint64(80), trades[1].MakerOrderID)
	assert.Equal(t, int64(350), trades[1].Price)
	assert.Equal(t, int64(100), trades[2].Price)
	assert.Equal(t, uint64(71), trades[2].TakerOrderID)

	_, ok := b.BestBid()
	assert.False(t, ok)
	_, ok = b.BestAsk()
	assert.False(t, ok)
}

// --- Additional kind/edge-case coverage ----------------------------------

func TestProcessOrder_MarketRejectsOnEmptyOppositeSide(t *testing.T) {
	b := New("TEST")

	trades, err := b.ProcessOrder(marketOrder(1, domain.Buy, 1))
	require.ErrorIs(t, err, ErrInsufficientLiquidity)
	assert.Empty(t, trades)
}

func TestProcessOrder_RejectLeavesBookUnchanged(t *testing.T) {
	b := New("TEST")
	_, err := b.ProcessOrder(limitOrder(1, domain.Buy, 100, 5))
	require.NoError(t, err)

	before := b.Stats()

	malformed := limitOrder(2, domain.Buy, 0, 5)
	_, err = b.ProcessOrder(malformed)
	require.ErrorIs(t, err, ErrMalformedOrder)
	assert.Equal(t, domain.Rejected, malformed.Status)

	assert.Equal(t, before, b.Stats())
}

func TestProcessOrder_DuplicateIDRejected(t *testing.T) {
	b := New("TEST")
	_, err := b.ProcessOrder(limitOrder(1, domain.Buy, 100, 5))
	require.NoError(t, err)

	_, err = b.ProcessOrder(limitOrder(1, domain.Buy, 100, 5))
	assert.ErrorIs(t, err, ErrDuplicateOrder)
}

func TestCancel_UnknownIDIsIdempotent(t *testing.T) {
	b := New("TEST")
	assert.False(t, b.Cancel(999))
	assert.False(t, b.Cancel(999))
}

func TestCancel_RemovesRestingOrder(t *testing.T) {
	b := New("TEST")
	_, err := b.ProcessOrder(limitOrder(1, domain.Buy, 100, 5))
	require.NoError(t, err)

	assert.True(t, b.Cancel(1))
	assert.False(t, b.Cancel(1))

	_, ok := b.BestBid()
	assert.False(t, ok)
}

func TestBookNeverCrosses(t *testing.T) {
	b := New("TEST")
	_, err := b.ProcessOrder(limitOrder(1, domain.Buy, 100, 5))
	require.NoError(t, err)
	_, err = b.ProcessOrder(limitOrder(2, domain.Sell, 110, 5))
	require.NoError(t, err)

	bid, _ := b.BestBid()
	ask, _ := b.BestAsk()
	assert.Less(t, bid, ask)
}
