package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emberhollow/tradepost/internal/api/dto"
	"github.com/emberhollow/tradepost/internal/core"
	"github.com/emberhollow/tradepost/internal/domain"
	"github.com/emberhollow/tradepost/internal/metrics"
	"github.com/emberhollow/tradepost/internal/middleware"
)

type HTTPServer struct {
	Eng       *core.Engine
	RateLimit time.Duration
}

func NewHTTPServer(eng *core.Engine, rateLimit time.Duration) *HTTPServer {
	return &HTTPServer{Eng: eng, RateLimit: rateLimit}
}

func (s *HTTPServer) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/")
	if s.RateLimit > 0 {
		rl := middleware.NewRateLimiter(s.RateLimit)
		api.Use(rl.Middleware())
	}
	api.POST("/orders", s.submitOrder)
	api.POST("/orders/cancel", s.cancelOrder)
	api.GET("/orders/:id", s.getOrder)
	api.GET("/markets/:market/orders", s.listMarketOrders)
	api.GET("/markets/:market/transactions", s.listTransactions)
	api.GET("/markets/:market/book", s.getBook)
	api.GET("/traders/:trader/orders", s.listTraderOrders)

	return r
}

func (s *HTTPServer) Run(addr string) error {
	return s.Router().Run(addr)
}

func (s *HTTPServer) submitOrder(c *gin.Context) {
	var req dto.SubmitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	market, err := domain.ParseMarket(req.Market)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be ITEM@LOCATION"})
		return
	}

	resting, txns, err := s.Eng.SubmitOrder(c.Request.Context(), req.TraderID, market, domain.Side(req.Side), req.Price, req.Quantity)
	if err != nil {
		abortWith(c, err)
		return
	}

	resp := dto.SubmitOrderResponse{Transactions: convertTransactions(txns)}
	if resting != nil {
		o := convertOrder(resting)
		resp.RestingOrder = &o
	}
	c.JSON(http.StatusOK, resp)
}

func (s *HTTPServer) cancelOrder(c *gin.Context) {
	var req dto.CancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	o, err := s.Eng.CancelOrder(c.Request.Context(), req.OrderID, req.TraderID)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.CancelOrderResponse{Order: convertOrder(o)})
}

func (s *HTTPServer) getOrder(c *gin.Context) {
	o, err := s.Eng.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GetOrderResponse{Order: convertOrder(o)})
}

func (s *HTTPServer) listMarketOrders(c *gin.Context) {
	market, err := domain.ParseMarket(c.Param("market"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be ITEM@LOCATION"})
		return
	}
	orders := s.Eng.OrdersForMarket(c.Request.Context(), market)
	c.JSON(http.StatusOK, dto.ListOrdersResponse{Orders: convertOrders(orders)})
}

func (s *HTTPServer) listTraderOrders(c *gin.Context) {
	orders := s.Eng.OrdersForTrader(c.Request.Context(), c.Param("trader"))
	c.JSON(http.StatusOK, dto.ListOrdersResponse{Orders: convertOrders(orders)})
}

func (s *HTTPServer) listTransactions(c *gin.Context) {
	market, err := domain.ParseMarket(c.Param("market"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be ITEM@LOCATION"})
		return
	}
	txns, err := s.Eng.TransactionsForMarket(c.Request.Context(), market, 100)
	if err != nil {
		abortWith(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: convertTransactions(txns)})
}

func (s *HTTPServer) getBook(c *gin.Context) {
	market, err := domain.ParseMarket(c.Param("market"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "market must be ITEM@LOCATION"})
		return
	}
	snap, err := s.Eng.BookFor(c.Request.Context(), market)
	if err != nil {
		abortWith(c, err)
		return
	}
	resp := dto.GetBookResponse{
		Market:    snap.Market,
		Bids:      make([]dto.Order, len(snap.Bids)),
		Asks:      make([]dto.Order, len(snap.Asks)),
		Timestamp: snap.Timestamp,
	}
	for i := range snap.Bids {
		resp.Bids[i] = convertOrder(&snap.Bids[i])
	}
	for i := range snap.Asks {
		resp.Asks[i] = convertOrder(&snap.Asks[i])
	}
	c.JSON(http.StatusOK, resp)
}

func abortWith(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientFunds),
		errors.Is(err, domain.ErrInsufficientInventory):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrNotCancellable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func convertOrder(o *domain.Order) dto.Order {
	return dto.Order{
		ID:        o.ID,
		TraderID:  o.TraderID,
		Market:    o.Market.String(),
		Side:      dto.Side(o.Side),
		Price:     o.Price,
		Quantity:  o.Quantity,
		Remaining: o.Remaining,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

func convertOrders(orders []*domain.Order) []dto.Order {
	res := make([]dto.Order, len(orders))
	for i, o := range orders {
		res[i] = convertOrder(o)
	}
	return res
}

func convertTransactions(txns []*domain.Transaction) []dto.Transaction {
	res := make([]dto.Transaction, len(txns))
	for i, t := range txns {
		res[i] = dto.Transaction{
			ID:          t.ID,
			Market:      t.Market.String(),
			BuyerID:     t.BuyerID,
			SellerID:    t.SellerID,
			BuyOrderID:  t.BuyOrderID,
			SellOrderID: t.SellOrderID,
			Quantity:    t.Quantity,
			Price:       t.Price,
			Total:       t.Total,
			ExecutedAt:  t.ExecutedAt,
		}
	}
	return res
}
