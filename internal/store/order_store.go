// Package store implements the external order-store and trade-store
// collaborators the façade talks to: a mutex-guarded in-memory index for
// O(1) lookup by id, backed by an append-only JSON-lines log (one flat,
// self-describing record per line) used to warm start a freshly constructed
// engine. Durable storage proper is outside the matching core's scope; this
// package is the small adapter the façade talks to only through the
// engine.OrderStore/TradeStore interfaces.
package store

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lobcore/internal/domain"
)

// OrderLog is an in-memory index of every order ever submitted, optionally
// mirrored to an append-only JSON-lines file for warm start.
type OrderLog struct {
	mu   sync.Mutex
	byID map[uint64]*domain.Order
	file *os.File
}

// NewOrderLog constructs an OrderLog. If path is empty, the log is
// in-memory only (no warm start across process restarts).
func NewOrderLog(path string) (*OrderLog, error) {
	l := &OrderLog{byID: make(map[uint64]*domain.Order)}
	if path == "" {
		return l, nil
	}
	if err := l.loadFrom(path); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l.file = f
	return l, nil
}

func (l *OrderLog) loadFrom(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var o domain.Order
		if err := json.Unmarshal(scanner.Bytes(), &o); err != nil {
			log.Warn().Err(err).Msg("order log: skipping malformed record")
			continue
		}
		if o.ClientID == "" {
			o.ClientID = uuid.NewString()
		}
		cp := o
		l.byID[o.ID] = &cp
	}
	return scanner.Err()
}

func (l *OrderLog) append(o *domain.Order) {
	l.byID[o.ID] = o
	if l.file == nil {
		return
	}
	line, err := json.Marshal(o)
	if err != nil {
		log.Error().Err(err).Uint64("orderID", o.ID).Msg("order log: marshal failed")
		return
	}
	line = append(line, '\n')
	if _, err := l.file.Write(line); err != nil {
		log.Error().Err(err).Uint64("orderID", o.ID).Msg("order log: write failed")
	}
}

// OnOrderSubmitted implements engine.OrderStore.
func (l *OrderLog) OnOrderSubmitted(o *domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.append(o)
}

// OnOrderUpdated implements engine.OrderStore. Each record is the order's
// full current state, so replaying the log in order and keeping only the
// last record per id reconstructs the latest state.
func (l *OrderLog) OnOrderUpdated(o *domain.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.append(o)
}

// LoadAll implements engine.OrderStore, returning every order currently
// known to the log in original arrival order. Map iteration order is
// randomized, but a warm-started book must rest equal-price orders in the
// same order across restarts, so the result is sorted by Timestamp (and by
// id to break ties between orders stamped in the same nanosecond).
func (l *OrderLog) LoadAll() ([]*domain.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*domain.Order, 0, len(l.byID))
	for _, o := range l.byID {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close releases the underlying file handle, if any.
func (l *OrderLog) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
