package engine

import (
	"time"

	"lobcore/internal/domain"
)

// OrderStore is the external order-persistence collaborator. The core never
// reads or writes durable storage itself; it only calls out to whatever
// implementation the caller wires in.
type OrderStore interface {
	OnOrderSubmitted(o *domain.Order)
	OnOrderUpdated(o *domain.Order)
	LoadAll() ([]*domain.Order, error)
}

// TradeStore is the external trade-persistence collaborator, called once per
// produced Trade.
type TradeStore interface {
	OnTrade(t *domain.Trade)
}

// Clock sources timestamps for orders the caller constructs. The matching
// core never consults it directly; only Engine.Submit does, when the caller
// hasn't already stamped the order.
type Clock interface {
	NowNanos() uint64
}

// Metrics is the sink the façade reports to at entry and exit of order
// processing, plus the event counters a deployment typically wants.
type Metrics interface {
	Observe(label string, d time.Duration)
	IncOrdersReceived()
	IncTradesExecuted(n int)
	IncRejected(reason string)
	IncCancelled()
}

// systemClock is the default Clock, wrapping time.Now().
type systemClock struct{}

func (systemClock) NowNanos() uint64 { return uint64(time.Now().UnixNano()) }

// NoopMetrics satisfies Metrics without recording anything, for callers that
// don't want the prometheus dependency wired in.
type NoopMetrics struct{}

func (NoopMetrics) Observe(string, time.Duration) {}
func (NoopMetrics) IncOrdersReceived()            {}
func (NoopMetrics) IncTradesExecuted(int)         {}
func (NoopMetrics) IncRejected(string)            {}
func (NoopMetrics) IncCancelled()                 {}

// NoopOrderStore and NoopTradeStore satisfy the persistence interfaces
// without retaining anything, for tests that don't care about warm start.
type NoopOrderStore struct{}

func (NoopOrderStore) OnOrderSubmitted(*domain.Order)    {}
func (NoopOrderStore) OnOrderUpdated(*domain.Order)      {}
func (NoopOrderStore) LoadAll() ([]*domain.Order, error) { return nil, nil }

type NoopTradeStore struct{}

func (NoopTradeStore) OnTrade(*domain.Trade) {}
