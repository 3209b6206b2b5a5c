package domain

import "time"

// Transaction is the append-only record of one executed match.
// It is created once at execution time and never mutated.
type Transaction struct {
	ID          string
	Market      Market
	BuyerID     string
	SellerID    string
	BuyOrderID  string
	SellOrderID string
	Quantity    int64
	Price       int64 // execution price, always the resting order's limit
	Total       int64 // Quantity * Price
	ExecutedAt  time.Time
}
