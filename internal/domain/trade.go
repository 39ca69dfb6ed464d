package domain

import "fmt"

// Trade is the immutable record produced when two orders cross. Price is
// always the maker's (resting order's) price, never the taker's.
type Trade struct {
	ID           uint64
	Symbol       string
	Price        int64
	Quantity     uint64
	BuyOrderID   uint64
	SellOrderID  uint64
	BuyUserID    uint64
	SellUserID   uint64
	Timestamp    uint64
	MakerOrderID uint64
	TakerOrderID uint64
}

func (t *Trade) String() string {
	return fmt.Sprintf(
		"Trade[id=%d symbol=%s price=%d qty=%d maker=%d taker=%d]",
		t.ID, t.Symbol, t.Price, t.Quantity, t.MakerOrderID, t.TakerOrderID,
	)
}
