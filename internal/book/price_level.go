package book

import "lobcore/internal/domain"

// PriceLevel is a FIFO queue of resting orders sharing one price. Orders are
// appended at the tail on arrival and consumed from the head during
// matching, which is what gives price-time priority its time component.
type PriceLevel struct {
	Price         int64
	Orders        []*domain.Order
	TotalQuantity uint64
}

func newPriceLevel(price int64) *PriceLevel {
	return &PriceLevel{Price: price}
}

func (l *PriceLevel) push(o *domain.Order) {
	l.Orders = append(l.Orders, o)
	l.TotalQuantity += o.RemainingQuantity
}

// popHeadIfFilled removes orders from the head while they have no remaining
// quantity, advancing the queue. TotalQuantity is left as is: the removed
// orders contribute nothing to it.
func (l *PriceLevel) popHeadIfFilled() {
	for len(l.Orders) > 0 && l.Orders[0].RemainingQuantity == 0 {
		l.Orders = l.Orders[1:]
	}
}

// remove deletes the order with the given id from anywhere in the level
// (used by explicit cancellation, not by matching, which always drains from
// the head). Returns the removed order and whether it was found.
func (l *PriceLevel) remove(id uint64) (*domain.Order, bool) {
	for i, o := range l.Orders {
		if o.ID == id {
			l.TotalQuantity -= o.RemainingQuantity
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			return o, true
		}
	}
	return nil, false
}
