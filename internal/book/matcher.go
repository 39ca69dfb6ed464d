package book

import (
	"errors"
	"fmt"

	"lobcore/internal/domain"
)

var (
	// ErrMalformedOrder wraps a domain validation failure: missing price,
	// missing stop price, zero quantity, or an over-filled remainder.
	ErrMalformedOrder = errors.New("book: malformed order")
	// ErrInsufficientLiquidity is returned for a Market order whose opposite
	// side is empty at entry.
	ErrInsufficientLiquidity = errors.New("book: insufficient liquidity")
	// ErrUnfillable is returned for a FOK order whose full quantity cannot be
	// reached at acceptable prices.
	ErrUnfillable = errors.New("book: fill-or-kill cannot be fully filled")
	// ErrDuplicateOrder is returned when an order id is already resting or
	// parked in this book.
	ErrDuplicateOrder = errors.New("book: duplicate order id")
)

// crossPredicate reports whether a resting order at restPrice may trade
// against the incoming order, given that order's side and kind.
type crossPredicate func(restPrice int64) bool

func crossingRule(incoming *domain.Order) crossPredicate {
	if incoming.Kind == domain.Market {
		return func(int64) bool { return true }
	}
	if incoming.Side == domain.Buy {
		return func(restPrice int64) bool { return restPrice <= incoming.Price }
	}
	return func(restPrice int64) bool { return restPrice >= incoming.Price }
}

// match walks the opposite side of the book from best to worst, and within
// each level from head to tail, producing trades until the incoming order is
// filled or the crossing predicate forbids the next level. Every trade can
// move last_trade_price into range of a parked stop, so each one is followed
// by a check of the parked set before the next trade is considered — a stop
// that triggers mid-sweep re-enters (and may itself trade, and may in turn
// trigger further stops) before this loop continues. Caller must hold the
// write lock.
func (b *OrderBook) match(incoming *domain.Order, crosses crossPredicate) []*domain.Trade {
	var trades []*domain.Trade
	opposite := b.sideTree(incoming.Side.Opposite())

	for incoming.RemainingQuantity > 0 {
		level, ok := opposite.Min()
		if !ok || !crosses(level.Price) {
			break
		}
		for incoming.RemainingQuantity > 0 && len(level.Orders) > 0 {
			resting := level.Orders[0]
			qty := min64(incoming.RemainingQuantity, resting.RemainingQuantity)

			incoming.RemainingQuantity -= qty
			resting.RemainingQuantity -= qty
			level.TotalQuantity -= qty

			b.nextTradeID++
			trade := newTrade(b.nextTradeID, incoming, resting, qty)
			trades = append(trades, trade)

			b.lastTradePrice = trade.Price
			b.hasLastTrade = true

			if resting.RemainingQuantity == 0 {
				resting.Status = domain.Filled
				delete(b.index, resting.ID)
			} else {
				resting.Status = domain.PartiallyFilled
			}
			level.popHeadIfFilled()

			trades = append(trades, b.triggerStops()...)
		}
		if level.TotalQuantity == 0 {
			opposite.Delete(level)
		}
	}
	return trades
}

// availableLiquidity sums remaining quantity reachable at acceptable prices
// on the opposite side, stopping early once it covers need. Caller must hold
// at least a read lock.
func (b *OrderBook) availableLiquidity(incoming *domain.Order, crosses crossPredicate, need uint64) uint64 {
	opposite := b.sideTree(incoming.Side.Opposite())
	var available uint64
	opposite.Scan(func(level *PriceLevel) bool {
		if !crosses(level.Price) {
			return false
		}
		available += level.TotalQuantity
		return available < need
	})
	return available
}

func newTrade(id uint64, incoming, resting *domain.Order, qty uint64) *domain.Trade {
	t := &domain.Trade{
		ID:           id,
		Symbol:       resting.Symbol,
		Price:        resting.Price,
		Quantity:     qty,
		Timestamp:    resting.Timestamp,
		MakerOrderID: resting.ID,
		TakerOrderID: incoming.ID,
	}
	if incoming.Side == domain.Buy {
		t.BuyOrderID, t.BuyUserID = incoming.ID, incoming.UserID
		t.SellOrderID, t.SellUserID = resting.ID, resting.UserID
	} else {
		t.SellOrderID, t.SellUserID = incoming.ID, incoming.UserID
		t.BuyOrderID, t.BuyUserID = resting.ID, resting.UserID
	}
	return t
}

func min64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// ProcessOrder is the book's matching entry point: it classifies the
// incoming order by kind, sweeps the opposite side accordingly (triggering
// any parked stop as soon as a trade brings it into range), and applies the
// residual policy for that kind. It either fully applies — mutating the book
// and returning zero or more trades — or rejects and leaves the book byte
// for byte as it was.
func (b *OrderBook) ProcessOrder(o *domain.Order) ([]*domain.Trade, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := o.Validate(); err != nil {
		o.Status = domain.Rejected
		return nil, errWrap(ErrMalformedOrder, err)
	}
	if _, exists := b.index[o.ID]; exists {
		o.Status = domain.Rejected
		return nil, ErrDuplicateOrder
	}

	var trades []*domain.Trade
	switch o.Kind {
	case domain.Limit:
		trades = b.processLimit(o)
	case domain.Market:
		t, err := b.processMarket(o)
		if err != nil {
			return nil, err
		}
		trades = t
	case domain.IOC:
		trades = b.processIOC(o)
	case domain.FOK:
		t, err := b.processFOK(o)
		if err != nil {
			return nil, err
		}
		trades = t
	case domain.Stop:
		b.park(o)
		o.Status = domain.New
		return nil, nil
	}

	// match() already triggers any parked stop as soon as a trade moves
	// last_trade_price into its range, so nothing is left to re-scan here.
	return trades, nil
}

func (b *OrderBook) processLimit(o *domain.Order) []*domain.Trade {
	trades := b.match(o, crossingRule(o))
	b.settleResidual(o, len(trades) > 0)
	if o.RemainingQuantity > 0 {
		b.restInsert(o)
	}
	return trades
}

func (b *OrderBook) processMarket(o *domain.Order) ([]*domain.Trade, error) {
	opposite := b.sideTree(o.Side.Opposite())
	if opposite.Len() == 0 {
		o.Status = domain.Rejected
		return nil, ErrInsufficientLiquidity
	}
	trades := b.match(o, crossingRule(o))
	b.settleResidual(o, len(trades) > 0)
	// Market orders never rest: any residual simply stays unfilled.
	return trades, nil
}

func (b *OrderBook) processIOC(o *domain.Order) []*domain.Trade {
	trades := b.match(o, crossingRule(o))
	if o.RemainingQuantity > 0 {
		o.Status = domain.Cancelled
	} else {
		o.Status = domain.Filled
	}
	return trades
}

func (b *OrderBook) processFOK(o *domain.Order) ([]*domain.Trade, error) {
	crosses := crossingRule(o)
	if b.availableLiquidity(o, crosses, o.RemainingQuantity) < o.RemainingQuantity {
		o.Status = domain.Rejected
		return nil, ErrUnfillable
	}
	trades := b.match(o, crosses)
	// The pre-scan guarantees full coverage, so the residual is always 0.
	o.Status = domain.Filled
	return trades, nil
}

func (b *OrderBook) settleResidual(o *domain.Order, traded bool) {
	switch {
	case o.RemainingQuantity == 0:
		o.Status = domain.Filled
	case traded:
		o.Status = domain.PartiallyFilled
	default:
		o.Status = domain.New
	}
}

// triggerStops scans parked stops against the current last trade price,
// re-submitting any that trigger as Market orders. Triggering one stop may
// move the last trade price again and trigger another; the loop runs to a
// fixpoint bounded by the number of parked stops so a triggers-triggers
// chain is guaranteed to terminate.
func (b *OrderBook) triggerStops() []*domain.Trade {
	var trades []*domain.Trade
	if !b.hasLastTrade {
		return trades
	}
	bound := len(b.stops)
	for i := 0; i < bound; i++ {
		triggered := b.nextTriggeredStop()
		if triggered == nil {
			break
		}
		triggered.Kind = domain.Market
		opposite := b.sideTree(triggered.Side.Opposite())
		if opposite.Len() == 0 {
			triggered.Status = domain.Rejected
			continue
		}
		t := b.match(triggered, crossingRule(triggered))
		b.settleResidual(triggered, len(t) > 0)
		trades = append(trades, t...)
	}
	return trades
}

// nextTriggeredStop picks the lowest-id stop whose trigger condition holds
// against the current last trade price. Map iteration order in Go is
// randomized, but matching has to produce the same trades on every run given
// the same inputs, so ties among simultaneously-triggered stops are always
// broken by ascending id rather than by iteration order.
func (b *OrderBook) nextTriggeredStop() *domain.Order {
	var chosen *domain.Order
	for id, o := range b.stops {
		triggered := (o.Side == domain.Buy && b.lastTradePrice >= o.StopPrice) ||
			(o.Side == domain.Sell && b.lastTradePrice <= o.StopPrice)
		if !triggered {
			continue
		}
		if chosen == nil || id < chosen.ID {
			chosen = o
		}
	}
	if chosen == nil {
		return nil
	}
	delete(b.stops, chosen.ID)
	delete(b.index, chosen.ID)
	return chosen
}

func errWrap(sentinel, cause error) error {
	return fmt.Errorf("%w: %v", sentinel, cause)
}
