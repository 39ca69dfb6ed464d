// Package engine is the matching core's façade: it owns one symbol's
// OrderBook, wires the external order-store/trade-store/clock/metrics
// collaborators the book never talks to directly, and is the entry point
// callers submit orders through.
package engine

import (
	"time"

	"github.com/rs/zerolog/log"

	"lobcore/internal/book"
	"lobcore/internal/domain"
)

// Engine is the façade in front of one symbol's OrderBook.
type Engine struct {
	Symbol string
	Book   *book.OrderBook

	clock   Clock
	orders  OrderStore
	trades  TradeStore
	metrics Metrics
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithClock overrides the default system clock.
func WithClock(c Clock) Option { return func(e *Engine) { e.clock = c } }

// WithOrderStore wires an order-persistence collaborator.
func WithOrderStore(s OrderStore) Option { return func(e *Engine) { e.orders = s } }

// WithTradeStore wires a trade-persistence collaborator.
func WithTradeStore(s TradeStore) Option { return func(e *Engine) { e.trades = s } }

// WithMetrics wires a metrics collaborator.
func WithMetrics(m Metrics) Option { return func(e *Engine) { e.metrics = m } }

// New constructs an Engine for symbol with an empty book, the system clock,
// and no-op stores and metrics, which Option values can then override.
func New(symbol string, opts ...Option) *Engine {
	e := &Engine{
		Symbol:  symbol,
		Book:    book.New(symbol),
		clock:   systemClock{},
		orders:  NoopOrderStore{},
		trades:  NoopTradeStore{},
		metrics: NoopMetrics{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WarmStart replays every non-terminal order the order store returns from
// LoadAll back through the book, in the order the store returns them
// (Filled, Cancelled and Rejected orders are skipped), so a freshly
// constructed Engine can resume from where a prior one left off.
func (e *Engine) WarmStart() error {
	previous, err := e.orders.LoadAll()
	if err != nil {
		return err
	}
	for _, o := range previous {
		if o.Status.Terminal() {
			continue
		}
		if _, err := e.Book.ProcessOrder(o); err != nil {
			log.Warn().Err(err).Uint64("orderID", o.ID).Msg("warm start: order replay rejected")
		}
	}
	return nil
}

// Submit is the façade's process_order entry point. If the caller left
// Timestamp unset, it is stamped from the engine's clock before validation.
func (e *Engine) Submit(o *domain.Order) ([]*domain.Trade, error) {
	start := time.Now()
	e.metrics.IncOrdersReceived()
	defer func() { e.metrics.Observe("submit", time.Since(start)) }()

	if o.Timestamp == 0 {
		o.Timestamp = e.clock.NowNanos()
	}
	o.Symbol = e.Symbol

	trades, err := e.Book.ProcessOrder(o)
	if err != nil {
		e.metrics.IncRejected(err.Error())
		log.Warn().Err(err).Uint64("orderID", o.ID).Str("symbol", e.Symbol).Msg("order rejected")
		e.orders.OnOrderSubmitted(o)
		return nil, err
	}

	e.orders.OnOrderSubmitted(o)
	e.orders.OnOrderUpdated(o)
	e.metrics.IncTradesExecuted(len(trades))

	for _, t := range trades {
		e.trades.OnTrade(t)
		log.Debug().
			Uint64("tradeID", t.ID).
			Str("symbol", t.Symbol).
			Int64("price", t.Price).
			Uint64("qty", t.Quantity).
			Uint64("maker", t.MakerOrderID).
			Uint64("taker", t.TakerOrderID).
			Msg("trade")
	}
	log.Info().
		Uint64("orderID", o.ID).
		Str("symbol", e.Symbol).
		Str("status", o.Status.String()).
		Int("trades", len(trades)).
		Msg("order processed")

	return trades, nil
}

// Cancel removes a resting or parked order by id.
func (e *Engine) Cancel(id uint64) bool {
	ok := e.Book.Cancel(id)
	if ok {
		e.metrics.IncCancelled()
		log.Info().Uint64("orderID", id).Str("symbol", e.Symbol).Msg("order cancelled")
	}
	return ok
}
