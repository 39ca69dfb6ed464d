package store

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"lobcore/internal/domain"
)

// TradeLog is the trade-store collaborator: an append-only JSON-lines file
// plus a bounded in-memory ring of the most recent trades for quick
// introspection by the demonstration program.
type TradeLog struct {
	mu    sync.Mutex
	ring  []*domain.Trade
	limit int
	file  *os.File
}

// NewTradeLog constructs a TradeLog keeping at most ringLimit trades
// in memory; a ringLimit of zero or less keeps every trade. If path is
// empty, trades are kept in memory only.
func NewTradeLog(path string, ringLimit int) (*TradeLog, error) {
	l := &TradeLog{limit: ringLimit}
	if path == "" {
		return l, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l.file = f
	return l, nil
}

// OnTrade implements engine.TradeStore.
func (l *TradeLog) OnTrade(t *domain.Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.ring = append(l.ring, t)
	if l.limit > 0 && len(l.ring) > l.limit {
		l.ring = l.ring[len(l.ring)-l.limit:]
	}

	if l.file == nil {
		return
	}
	line, err := json.Marshal(t)
	if err != nil {
		log.Error().Err(err).Uint64("tradeID", t.ID).Msg("trade log: marshal failed")
		return
	}
	line = append(line, '\n')
	if _, err := l.file.Write(line); err != nil {
		log.Error().Err(err).Uint64("tradeID", t.ID).Msg("trade log: write failed")
	}
}

// Recent returns a copy of the most recently recorded trades, oldest first.
func (l *TradeLog) Recent() []*domain.Trade {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]*domain.Trade, len(l.ring))
	copy(out, l.ring)
	return out
}

// Close releases the underlying file handle, if any.
func (l *TradeLog) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
