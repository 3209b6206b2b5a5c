package domain

import (
	"time"
)

type Side string
type OrderStatus string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"

	Active          OrderStatus = "ACTIVE"
	PartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	Filled          OrderStatus = "FILLED"
	Cancelled       OrderStatus = "CANCELLED"
)

// Order is a limit order resting in, or passing through, a market's book.
// Price and quantities are integers in smallest units; Seq is the
// engine-wide submission counter used for FIFO tie-breaking.
type Order struct {
	ID        string
	TraderID  string
	Market    Market
	Side      Side
	Price     int64
	Quantity  int64
	Remaining int64
	Status    OrderStatus
	Seq       int64
	CreatedAt time.Time
}

// Open reports whether the order can still match or be cancelled.
func (o *Order) Open() bool {
	return o.Status == Active || o.Status == PartiallyFilled
}

// EscrowAmount is what the trader currently has locked against this order:
// currency for a buy, item units for a sell.
func (o *Order) EscrowAmount() int64 {
	if o.Side == Buy {
		return o.Price * o.Remaining
	}
	return o.Remaining
}

// Fill reduces the remaining quantity by qty and advances the status.
func (o *Order) Fill(qty int64) {
	o.Remaining -= qty
	if o.Remaining <= 0 {
		o.Remaining = 0
		o.Status = Filled
	} else {
		o.Status = PartiallyFilled
	}
}
