package pg

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/emberhollow/tradepost/internal/domain"
	"github.com/emberhollow/tradepost/internal/port"
)

var _ port.Repository = (*Repo)(nil)

// Repo persists orders and the transaction log in Postgres.
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo creates the repository; call Close when done.
func NewRepo(ctx context.Context, dsn string) (*Repo, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "pg: create pool")
	}
	return &Repo{pool: pool}, nil
}

func NewRepoWithPool(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func saveOrder(ctx context.Context, ex execer, o *domain.Order) error {
	if o == nil {
		return errors.New("nil order")
	}
	_, err := ex.Exec(ctx, `
INSERT INTO orders(id, trader_id, item, location, side, price, quantity, remaining, status, seq, created_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  remaining = EXCLUDED.remaining,
  status = EXCLUDED.status
`, o.ID, o.TraderID, o.Market.Item, o.Market.Location, string(o.Side),
		o.Price, o.Quantity, o.Remaining, string(o.Status), o.Seq, o.CreatedAt)
	return errors.Wrap(err, "pg: save order")
}

// saveTransaction appends to the trade log; conflicts are ignored so the
// log stays immutable.
func saveTransaction(ctx context.Context, ex execer, t *domain.Transaction) error {
	if t == nil {
		return errors.New("nil transaction")
	}
	_, err := ex.Exec(ctx, `
INSERT INTO transactions(id, item, location, buyer_id, seller_id, buy_order, sell_order, quantity, price, total, executed_at)
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO NOTHING
`, t.ID, t.Market.Item, t.Market.Location, t.BuyerID, t.SellerID,
		t.BuyOrderID, t.SellOrderID, t.Quantity, t.Price, t.Total, t.ExecutedAt)
	return errors.Wrap(err, "pg: save transaction")
}

func (r *Repo) SaveOrder(ctx context.Context, o *domain.Order) error {
	return saveOrder(ctx, r.pool, o)
}

func (r *Repo) SaveTransaction(ctx context.Context, t *domain.Transaction) error {
	return saveTransaction(ctx, r.pool, t)
}

// LoadOrder fetches one order by id regardless of status.
func (r *Repo) LoadOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var (
		o            domain.Order
		side, status string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, trader_id, item, location, side, price, quantity, remaining, status, seq, created_at
FROM orders
WHERE id = $1
`, orderID).Scan(&o.ID, &o.TraderID, &o.Market.Item, &o.Market.Location, &side,
		&o.Price, &o.Quantity, &o.Remaining, &status, &o.Seq, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "pg: load order")
	}
	o.Side = domain.Side(side)
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

// LoadOpenOrders returns the market's open orders ordered by seq ASC.
func (r *Repo) LoadOpenOrders(ctx context.Context, market domain.Market) ([]*domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, trader_id, item, location, side, price, quantity, remaining, status, seq, created_at
FROM orders
WHERE item = $1 AND location = $2 AND status IN ('ACTIVE', 'PARTIALLY_FILLED')
ORDER BY seq ASC
`, market.Item, market.Location)
	if err != nil {
		return nil, errors.Wrap(err, "pg: load open orders")
	}
	defer rows.Close()

	var res []*domain.Order
	for rows.Next() {
		var (
			o            domain.Order
			side, status string
		)
		if err := rows.Scan(&o.ID, &o.TraderID, &o.Market.Item, &o.Market.Location, &side,
			&o.Price, &o.Quantity, &o.Remaining, &status, &o.Seq, &o.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "pg: scan order")
		}
		o.Side = domain.Side(side)
		o.Status = domain.OrderStatus(status)
		res = append(res, &o)
	}
	return res, rows.Err()
}

// LoadMarkets returns every market that still has open orders.
func (r *Repo) LoadMarkets(ctx context.Context) ([]domain.Market, error) {
	rows, err := r.pool.Query(ctx, `
SELECT DISTINCT item, location FROM orders WHERE status IN ('ACTIVE', 'PARTIALLY_FILLED')
`)
	if err != nil {
		return nil, errors.Wrap(err, "pg: load markets")
	}
	defer rows.Close()

	var res []domain.Market
	for rows.Next() {
		var m domain.Market
		if err := rows.Scan(&m.Item, &m.Location); err != nil {
			return nil, errors.Wrap(err, "pg: scan market")
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// LoadTransactions returns the market's trade history, newest first.
func (r *Repo) LoadTransactions(ctx context.Context, market domain.Market, limit int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, item, location, buyer_id, seller_id, buy_order, sell_order, quantity, price, total, executed_at
FROM transactions
WHERE item = $1 AND location = $2
ORDER BY executed_at DESC
LIMIT $3
`, market.Item, market.Location, limit)
	if err != nil {
		return nil, errors.Wrap(err, "pg: load transactions")
	}
	defer rows.Close()

	var res []*domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		if err := rows.Scan(&t.ID, &t.Market.Item, &t.Market.Location, &t.BuyerID, &t.SellerID,
			&t.BuyOrderID, &t.SellOrderID, &t.Quantity, &t.Price, &t.Total, &t.ExecutedAt); err != nil {
			return nil, errors.Wrap(err, "pg: scan transaction")
		}
		res = append(res, &t)
	}
	return res, rows.Err()
}

func (r *Repo) MaxSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(seq), 0) FROM orders`).Scan(&seq)
	return seq, errors.Wrap(err, "pg: max seq")
}

func (r *Repo) BeginTx(ctx context.Context) (port.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "pg: begin tx")
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) SaveOrder(ctx context.Context, o *domain.Order) error {
	return saveOrder(ctx, t.tx, o)
}

func (t *pgTx) SaveTransaction(ctx context.Context, txn *domain.Transaction) error {
	return saveTransaction(ctx, t.tx, txn)
}

func (t *pgTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}
