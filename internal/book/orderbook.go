// Package book implements the price-time priority limit order book: the
// bid/ask price indices, the per-order lookup index, the parked stop set,
// and the matcher that walks them to produce trades.
package book

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/btree"

	"lobcore/internal/domain"
)

// levels is the ordered map of price -> PriceLevel backing one side of the
// book. Bids and asks are both *btree.BTreeG[*PriceLevel], differing only in
// the less-function supplied at construction (descending vs ascending).
type levels = btree.BTreeG[*PriceLevel]

// location records where a resting or parked order can be found, enough to
// reach it in O(log P) plus O(k) within its level.
type location struct {
	side   domain.Side
	price  int64
	parked bool
}

// OrderBook is the exclusive owner of all resting orders for one symbol.
// It is safe for concurrent use: mutating operations (ProcessOrder, Cancel)
// take an exclusive lock spanning the whole call; read-only queries take a
// shared lock so they never observe a torn index/level disagreement.
type OrderBook struct {
	mu sync.RWMutex

	Symbol string

	bids *levels // descending by price: best bid first
	asks *levels // ascending by price: best ask first

	index map[uint64]location
	stops map[uint64]*domain.Order

	lastTradePrice int64
	hasLastTrade   bool
	nextTradeID    uint64
}

// New constructs an empty order book for the given symbol.
func New(symbol string) *OrderBook {
	return &OrderBook{
		Symbol: symbol,
		bids: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price > b.Price // descending: highest bid sorts first
		}),
		asks: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.Price < b.Price // ascending: lowest ask sorts first
		}),
		index: make(map[uint64]location),
		stops: make(map[uint64]*domain.Order),
	}
}

func (b *OrderBook) sideTree(side domain.Side) *levels {
	if side == domain.Buy {
		return b.bids
	}
	return b.asks
}

// restInsert appends a resting order to the tail of its price level,
// creating the level if necessary, and records its location in the index.
// Caller must hold the write lock.
func (b *OrderBook) restInsert(o *domain.Order) {
	tree := b.sideTree(o.Side)
	pivot := &PriceLevel{Price: o.Price}
	level, ok := tree.Get(pivot)
	if !ok {
		level = newPriceLevel(o.Price)
		tree.Set(level)
	}
	level.push(o)
	b.index[o.ID] = location{side: o.Side, price: o.Price}
}

// restRemove deletes an order from its resting level by id, erasing the
// level if it becomes empty. Caller must hold the write lock.
func (b *OrderBook) restRemove(id uint64) (*domain.Order, bool) {
	loc, ok := b.index[id]
	if !ok {
		return nil, false
	}
	tree := b.sideTree(loc.side)
	pivot := &PriceLevel{Price: loc.price}
	level, ok := tree.Get(pivot)
	if !ok {
		delete(b.index, id)
		return nil, false
	}
	order, ok := level.remove(id)
	if !ok {
		delete(b.index, id)
		return nil, false
	}
	delete(b.index, id)
	if level.TotalQuantity == 0 {
		tree.Delete(pivot)
	}
	return order, true
}

// park records a Stop order in the parked set without placing it on either
// side's price index. Caller must hold the write lock.
func (b *OrderBook) park(o *domain.Order) {
	b.stops[o.ID] = o
	b.index[o.ID] = location{parked: true}
}

func (b *OrderBook) unpark(id uint64) (*domain.Order, bool) {
	o, ok := b.stops[id]
	if !ok {
		return nil, false
	}
	delete(b.stops, id)
	delete(b.index, id)
	return o, true
}

// Cancel removes a resting or parked order by id. It returns false, not an
// error, if the id is unknown or the order has already left the book.
func (b *OrderBook) Cancel(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	loc, ok := b.index[id]
	if !ok {
		return false
	}
	if loc.parked {
		o, ok := b.unpark(id)
		if ok {
			o.Status = domain.Cancelled
			o.RemainingQuantity = 0
		}
		return ok
	}
	o, ok := b.restRemove(id)
	if ok {
		o.Status = domain.Cancelled
	}
	return ok
}

// BestBid returns the highest resting bid price, if any.
func (b *OrderBook) BestBid() (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	level, ok := b.bids.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (b *OrderBook) BestAsk() (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	level, ok := b.asks.Min()
	if !ok {
		return 0, false
	}
	return level.Price, true
}

// Spread returns best ask minus best bid, or false if either side is empty.
func (b *OrderBook) Spread() (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bid, bidOK := b.bids.Min()
	ask, askOK := b.asks.Min()
	if !bidOK || !askOK {
		return 0, false
	}
	return ask.Price - bid.Price, true
}

// LevelView is an introspection-only snapshot of one price level.
type LevelView struct {
	Price    int64
	Quantity uint64
	Orders   int
}

// Depth returns up to n levels from each side, best first.
func (b *OrderBook) Depth(n int) (bids, asks []LevelView) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	bids = scanLevels(b.bids, n)
	asks = scanLevels(b.asks, n)
	return bids, asks
}

func scanLevels(tree *levels, n int) []LevelView {
	if n <= 0 {
		return nil
	}
	out := make([]LevelView, 0, n)
	tree.Scan(func(level *PriceLevel) bool {
		out = append(out, LevelView{
			Price:    level.Price,
			Quantity: level.TotalQuantity,
			Orders:   len(level.Orders),
		})
		return len(out) < n
	})
	return out
}

// Slippage simulates sweeping qty immediately against the opposite side of
// side without mutating the book, returning the volume-weighted average
// execution price (floor-divided, since the core does no floating point).
// It returns false if the opposite side cannot cover qty.
func (b *OrderBook) Slippage(side domain.Side, qty uint64) (int64, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	tree := b.sideTree(side.Opposite())
	var filled uint64
	var cost uint64
	tree.Scan(func(level *PriceLevel) bool {
		remaining := qty - filled
		take := level.TotalQuantity
		if take > remaining {
			take = remaining
		}
		cost += take * uint64(level.Price)
		filled += take
		return filled < qty
	})
	if filled < qty {
		return 0, false
	}
	return int64(cost / qty), true
}

// Stats is a point-in-time summary of book-wide counters.
type Stats struct {
	Symbol          string
	BidOrders       int
	AskOrders       int
	BidQuantity     uint64
	AskQuantity     uint64
	BestBid         int64
	HasBestBid      bool
	BestAsk         int64
	HasBestAsk      bool
	LastTradePrice  int64
	HasLastTrade    bool
	SpreadValue     int64
	HasSpread       bool
	ParkedStopCount int
}

// Stats reports aggregate counts per side, total resting volume, best
// prices, and the last trade price.
func (b *OrderBook) Stats() Stats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s := Stats{
		Symbol:          b.Symbol,
		LastTradePrice:  b.lastTradePrice,
		HasLastTrade:    b.hasLastTrade,
		ParkedStopCount: len(b.stops),
	}
	b.bids.Scan(func(level *PriceLevel) bool {
		s.BidOrders += len(level.Orders)
		s.BidQuantity += level.TotalQuantity
		return true
	})
	b.asks.Scan(func(level *PriceLevel) bool {
		s.AskOrders += len(level.Orders)
		s.AskQuantity += level.TotalQuantity
		return true
	})
	if bid, ok := b.bids.Min(); ok {
		s.BestBid, s.HasBestBid = bid.Price, true
	}
	if ask, ok := b.asks.Min(); ok {
		s.BestAsk, s.HasBestAsk = ask.Price, true
	}
	if s.HasBestBid && s.HasBestAsk {
		s.SpreadValue, s.HasSpread = s.BestAsk-s.BestBid, true
	}
	return s
}

// PrintBook renders the top n levels of each side as aligned text columns
// for human inspection. It performs no mutation.
func (b *OrderBook) PrintBook(n int) string {
	bids, asks := b.Depth(n)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s order book (top %d)\n", b.Symbol, n)
	fmt.Fprintf(&sb, "%-12s %-10s %-6s | %-12s %-10s %-6s\n", "BID PRICE", "QTY", "ORDS", "ASK PRICE", "QTY", "ORDS")
	max := len(bids)
	if len(asks) > max {
		max = len(asks)
	}
	for i := 0; i < max; i++ {
		var bidCol, askCol string
		if i < len(bids) {
			bidCol = fmt.Sprintf("%-12d %-10d %-6d", bids[i].Price, bids[i].Quantity, bids[i].Orders)
		} else {
			bidCol = fmt.Sprintf("%-12s %-10s %-6s", "-", "-", "-")
		}
		if i < len(asks) {
			askCol = fmt.Sprintf("%-12d %-10d %-6d", asks[i].Price, asks[i].Quantity, asks[i].Orders)
		} else {
			askCol = fmt.Sprintf("%-12s %-10s %-6s", "-", "-", "-")
		}
		fmt.Fprintf(&sb, "%s | %s\n", bidCol, askCol)
	}
	return sb.String()
}
