// Package domain holds the flat, collaborator-agnostic data entities the
// matching core consumes and produces: orders, trades, and the small
// enumerations that classify them.
package domain

import (
	"errors"
	"fmt"
)

// Side identifies which book an order rests on or sweeps.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the side an order of this side matches against.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Kind is the order type, which determines how aggressively the engine
// sweeps the opposite side and what happens to any unfilled remainder.
type Kind int

const (
	Limit Kind = iota
	Market
	Stop
	IOC
	FOK
)

func (k Kind) String() string {
	switch k {
	case Limit:
		return "LIMIT"
	case Market:
		return "MARKET"
	case Stop:
		return "STOP"
	case IOC:
		return "IOC"
	case FOK:
		return "FOK"
	default:
		return "UNKNOWN"
	}
}

// Status is the terminal-or-not lifecycle state of an order.
type Status int

const (
	New Status = iota
	PartiallyFilled
	Filled
	Cancelled
	Rejected
)

func (s Status) String() string {
	switch s {
	case New:
		return "NEW"
	case PartiallyFilled:
		return "PARTIALLY_FILLED"
	case Filled:
		return "FILLED"
	case Cancelled:
		return "CANCELLED"
	case Rejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition is legal from this status.
func (s Status) Terminal() bool {
	return s == Filled || s == Cancelled || s == Rejected
}

var (
	// ErrMissingPrice is returned when a Limit order carries a non-positive price.
	ErrMissingPrice = errors.New("domain: limit order requires a positive price")
	// ErrMissingStopPrice is returned when a Stop order carries a non-positive stop price.
	ErrMissingStopPrice = errors.New("domain: stop order requires a positive stop price")
	// ErrZeroQuantity is returned when an order's original quantity is not positive.
	ErrZeroQuantity = errors.New("domain: order quantity must be positive")
	// ErrBadRemaining is returned when remaining quantity is inconsistent with original.
	ErrBadRemaining = errors.New("domain: remaining quantity exceeds original quantity")
)

// Order is the immutable descriptor of an intent to trade plus the mutable
// RemainingQuantity field the matcher decrements as fills occur.
type Order struct {
	ID                uint64
	ClientID          string
	Symbol            string
	Side              Side
	Kind              Kind
	Price             int64
	StopPrice         int64
	OriginalQuantity  uint64
	RemainingQuantity uint64
	UserID            uint64
	Timestamp         uint64
	Status            Status
}

// Validate checks the structural invariants an order must satisfy before it
// may be submitted. It never inspects book state.
func (o *Order) Validate() error {
	if o.Kind == Limit && o.Price <= 0 {
		return ErrMissingPrice
	}
	if o.Kind == Stop && o.StopPrice <= 0 {
		return ErrMissingStopPrice
	}
	if o.OriginalQuantity == 0 {
		return ErrZeroQuantity
	}
	if o.RemainingQuantity > o.OriginalQuantity {
		return ErrBadRemaining
	}
	return nil
}

// Filled reports whether the order has no remaining quantity.
func (o *Order) Filled() bool {
	return o.RemainingQuantity == 0
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"Order[id=%d symbol=%s side=%s kind=%s price=%d qty=%d/%d status=%s]",
		o.ID, o.Symbol, o.Side, o.Kind, o.Price, o.RemainingQuantity, o.OriginalQuantity, o.Status,
	)
}
