package port

import (
	"context"

	"github.com/emberhollow/tradepost/internal/domain"
)

// Repository is the durable store for orders and the transaction log.
type Repository interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	SaveTransaction(ctx context.Context, t *domain.Transaction) error
	LoadOrder(ctx context.Context, orderID string) (*domain.Order, error)
	LoadOpenOrders(ctx context.Context, market domain.Market) ([]*domain.Order, error)
	LoadMarkets(ctx context.Context) ([]domain.Market, error)
	LoadTransactions(ctx context.Context, market domain.Market, limit int) ([]*domain.Transaction, error)
	MaxSeq(ctx context.Context) (int64, error)
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx applies a group of writes atomically. Settlement uses it to commit
// both orders' state changes and the transaction append as one unit.
type Tx interface {
	SaveOrder(ctx context.Context, o *domain.Order) error
	SaveTransaction(ctx context.Context, t *domain.Transaction) error

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
