package in_memory

import (
	"context"
	"sort"
	"sync"

	"github.com/emberhollow/tradepost/internal/domain"
	"github.com/emberhollow/tradepost/internal/port"
)

var _ port.Repository = (*MemoryRepo)(nil)

// MemoryRepo keeps orders and the transaction log in process memory. It
// backs tests and standalone runs; durability comes from the pg adapter.
type MemoryRepo struct {
	mu           sync.Mutex
	orders       map[string]*domain.Order
	transactions map[string][]*domain.Transaction // market key -> log
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		orders:       make(map[string]*domain.Order),
		transactions: make(map[string][]*domain.Transaction),
	}
}

func (r *MemoryRepo) SaveOrder(ctx context.Context, o *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *MemoryRepo) SaveTransaction(ctx context.Context, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	key := t.Market.String()
	r.transactions[key] = append(r.transactions[key], &cp)
	return nil
}

func (r *MemoryRepo) LoadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *MemoryRepo) LoadOpenOrders(ctx context.Context, market domain.Market) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*domain.Order
	for _, o := range r.orders {
		if o.Market == market && o.Open() {
			cp := *o
			res = append(res, &cp)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Seq < res[j].Seq })
	return res, nil
}

func (r *MemoryRepo) LoadMarkets(ctx context.Context) ([]domain.Market, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[domain.Market]struct{})
	var res []domain.Market
	for _, o := range r.orders {
		if !o.Open() {
			continue
		}
		if _, ok := seen[o.Market]; ok {
			continue
		}
		seen[o.Market] = struct{}{}
		res = append(res, o.Market)
	}
	return res, nil
}

func (r *MemoryRepo) LoadTransactions(ctx context.Context, market domain.Market, limit int) ([]*domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log := r.transactions[market.String()]
	res := make([]*domain.Transaction, 0, len(log))
	for i := len(log) - 1; i >= 0 && (limit <= 0 || len(res) < limit); i-- {
		cp := *log[i]
		res = append(res, &cp)
	}
	return res, nil
}

func (r *MemoryRepo) MaxSeq(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int64
	for _, o := range r.orders {
		if o.Seq > max {
			max = o.Seq
		}
	}
	return max, nil
}

// BeginTx buffers writes and applies them on Commit. Memory writes cannot
// fail halfway, so this only mirrors the pg adapter's contract.
func (r *MemoryRepo) BeginTx(ctx context.Context) (port.Tx, error) {
	return &memoryTx{repo: r}, nil
}

type memoryTx struct {
	repo   *MemoryRepo
	orders []*domain.Order
	txns   []*domain.Transaction
}

func (t *memoryTx) SaveOrder(ctx context.Context, o *domain.Order) error {
	cp := *o
	t.orders = append(t.orders, &cp)
	return nil
}

func (t *memoryTx) SaveTransaction(ctx context.Context, txn *domain.Transaction) error {
	cp := *txn
	t.txns = append(t.txns, &cp)
	return nil
}

func (t *memoryTx) Commit(ctx context.Context) error {
	for _, o := range t.orders {
		if err := t.repo.SaveOrder(ctx, o); err != nil {
			return err
		}
	}
	for _, txn := range t.txns {
		if err := t.repo.SaveTransaction(ctx, txn); err != nil {
			return err
		}
	}
	return nil
}

func (t *memoryTx) Rollback(ctx context.Context) error {
	t.orders = nil
	t.txns = nil
	return nil
}
