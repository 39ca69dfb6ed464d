// Package runner implements the BookRunner: one goroutine per symbol, each
// bound to its own engine.Engine/OrderBook, supervised by a single
// gopkg.in/tomb.v2 tomb. This is the direct generalization of a single
// instrument's core to a multi-instrument deployment — the same
// tomb-supervised dispatch idiom this codebase's lineage already used for
// its TCP worker pool, repurposed here to dispatch orders to per-symbol
// books instead of connections to handler goroutines.
package runner

import (
	"context"
	"errors"
	"sync"

	tomb "gopkg.in/tomb.v2"

	"lobcore/internal/domain"
	"lobcore/internal/engine"
)

// ErrStopped is returned by Submit/Cancel once the runner has been stopped.
var ErrStopped = errors.New("runner: stopped")

type submission struct {
	order *domain.Order
	reply chan submitResult
}

type submitResult struct {
	trades []*domain.Trade
	err    error
}

type cancellation struct {
	id    uint64
	reply chan bool
}

// worker dispatches submissions and cancellations to exactly one Engine,
// one at a time, so orders for that symbol are always applied in the order
// they were submitted.
type worker struct {
	engine *engine.Engine
	orders chan submission
	cancel chan cancellation
}

// NewEngine constructs the Engine a BookRunner should use for a newly seen
// symbol. Callers typically wire in their own Clock/OrderStore/TradeStore/
// Metrics via a closure over engine.New's options.
type NewEngine func(symbol string) *engine.Engine

// BookRunner owns a pool of per-symbol workers supervised by one tomb.
type BookRunner struct {
	t         tomb.Tomb
	newEngine NewEngine

	mu      sync.Mutex
	workers map[string]*worker
	started bool
}

// New constructs a BookRunner. Start must be called before Submit/Cancel.
func New(newEngine NewEngine) *BookRunner {
	return &BookRunner{
		newEngine: newEngine,
		workers:   make(map[string]*worker),
	}
}

// Start begins supervising worker goroutines under ctx. Cancelling ctx
// begins a graceful shutdown: in-flight submissions drain before the tomb
// dies.
func (r *BookRunner) Start(ctx context.Context) {
	r.mu.Lock()
	r.started = true
	r.mu.Unlock()
	r.t.Go(func() error {
		select {
		case <-ctx.Done():
			r.t.Kill(nil)
		case <-r.t.Dying():
		}
		return nil
	})
}

// Stop tears down every worker and waits for them to exit.
func (r *BookRunner) Stop() error {
	r.t.Kill(nil)
	return r.t.Wait()
}

func (r *BookRunner) workerFor(symbol string) *worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[symbol]
	if ok {
		return w
	}
	w = &worker{
		engine: r.newEngine(symbol),
		orders: make(chan submission),
		cancel: make(chan cancellation),
	}
	r.workers[symbol] = w
	r.t.Go(func() error { return r.runWorker(w) })
	return w
}

func (r *BookRunner) runWorker(w *worker) error {
	for {
		select {
		case <-r.t.Dying():
			return nil
		case sub := <-w.orders:
			trades, err := w.engine.Submit(sub.order)
			sub.reply <- submitResult{trades: trades, err: err}
		case c := <-w.cancel:
			c.reply <- w.engine.Cancel(c.id)
		}
	}
}

// Submit dispatches an order to its symbol's dedicated worker and blocks
// until that worker has applied it (or ctx is cancelled first). Orders for
// different symbols may be in flight concurrently; orders for the same
// symbol are always applied in the order Submit was called.
func (r *BookRunner) Submit(ctx context.Context, symbol string, o *domain.Order) ([]*domain.Trade, error) {
	select {
	case <-r.t.Dying():
		return nil, ErrStopped
	default:
	}

	w := r.workerFor(symbol)
	reply := make(chan submitResult, 1)
	select {
	case w.orders <- submission{order: o, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.t.Dying():
		return nil, ErrStopped
	}

	select {
	case res := <-reply:
		return res.trades, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Cancel dispatches a cancellation to symbol's worker.
func (r *BookRunner) Cancel(ctx context.Context, symbol string, id uint64) (bool, error) {
	select {
	case <-r.t.Dying():
		return false, ErrStopped
	default:
	}

	w := r.workerFor(symbol)
	reply := make(chan bool, 1)
	select {
	case w.cancel <- cancellation{id: id, reply: reply}:
	case <-ctx.Done():
		return false, ctx.Err()
	case <-r.t.Dying():
		return false, ErrStopped
	}

	select {
	case ok := <-reply:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Engine returns the Engine backing symbol, constructing it if this is the
// first time the symbol has been seen. Intended for read-only introspection
// (queries) from the demonstration program; mutating calls should go
// through Submit/Cancel so ordering is preserved.
func (r *BookRunner) Engine(symbol string) *engine.Engine {
	return r.workerFor(symbol).engine
}
