package dto

import (
	"time"
)

type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

type SubmitOrderRequest struct {
	TraderID string `json:"trader_id" binding:"required"`
	Market   string `json:"market" binding:"required"` // "ITEM@LOCATION"
	Side     Side   `json:"side" binding:"required"`
	Price    int64  `json:"price" binding:"required"`
	Quantity int64  `json:"quantity" binding:"required"`
}

type SubmitOrderResponse struct {
	RestingOrder *Order        `json:"resting_order,omitempty"`
	Transactions []Transaction `json:"transactions"`
}

type CancelOrderRequest struct {
	OrderID  string `json:"order_id" binding:"required"`
	TraderID string `json:"trader_id" binding:"required"`
}

type CancelOrderResponse struct {
	Order Order `json:"order"`
}

type GetOrderResponse struct {
	Order Order `json:"order"`
}

type ListOrdersResponse struct {
	Orders []Order `json:"orders"`
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
}

type GetBookResponse struct {
	Market    string    `json:"market"`
	Bids      []Order   `json:"bids"`
	Asks      []Order   `json:"asks"`
	Timestamp time.Time `json:"timestamp"`
}

type Order struct {
	ID        string    `json:"id"`
	TraderID  string    `json:"trader_id"`
	Market    string    `json:"market"`
	Side      Side      `json:"side"`
	Price     int64     `json:"price"`
	Quantity  int64     `json:"quantity"`
	Remaining int64     `json:"remaining"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Transaction struct {
	ID          string    `json:"id"`
	Market      string    `json:"market"`
	BuyerID     string    `json:"buyer_id"`
	SellerID    string    `json:"seller_id"`
	BuyOrderID  string    `json:"buy_order_id"`
	SellOrderID string    `json:"sell_order_id"`
	Quantity    int64     `json:"quantity"`
	Price       int64     `json:"price"`
	Total       int64     `json:"total"`
	ExecutedAt  time.Time `json:"executed_at"`
}
