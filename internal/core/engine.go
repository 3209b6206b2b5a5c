package core

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/emberhollow/tradepost/internal/domain"
	"github.com/emberhollow/tradepost/internal/metrics"
	"github.com/emberhollow/tradepost/internal/port"
	"github.com/emberhollow/tradepost/pkg/logger"
)

// marketState is everything one market owns: its book, every order ever
// submitted to it, and the mutex that serializes all matching, settlement
// and cancellation for the market. Distinct markets never contend.
type marketState struct {
	mu     sync.Mutex
	book   *Book
	orders map[string]*domain.Order
}

// Engine implements the exchange: submission with escrow, price-time
// matching, settlement against the resource ledger, and cancellation.
type Engine struct {
	repo     port.Repository
	ledger   port.Ledger
	cache    port.Cache
	log      *logger.Logger
	currency string

	mu      sync.Mutex
	markets map[string]*marketState
	index   map[string]string // order id -> market key
	seq     atomic.Int64
}

func NewEngine(repo port.Repository, ledger port.Ledger, cache port.Cache, log *logger.Logger, currency string) *Engine {
	if log == nil {
		log = logger.New("engine", nil)
	}
	return &Engine{
		repo:     repo,
		ledger:   ledger,
		cache:    cache,
		log:      log,
		currency: currency,
		markets:  make(map[string]*marketState),
		index:    make(map[string]string),
	}
}

// LoadState restores open orders and the submission counter from the
// repository (used on startup).
func (e *Engine) LoadState(ctx context.Context) error {
	markets, err := e.repo.LoadMarkets(ctx)
	if err != nil {
		return err
	}
	for _, m := range markets {
		orders, err := e.repo.LoadOpenOrders(ctx, m)
		if err != nil {
			return err
		}
		ms := e.market(m)
		ms.mu.Lock()
		for _, o := range orders {
			ms.orders[o.ID] = o
			ms.book.Insert(o)
			e.mu.Lock()
			e.index[o.ID] = m.String()
			e.mu.Unlock()
		}
		ms.mu.Unlock()
	}
	maxSeq, err := e.repo.MaxSeq(ctx)
	if err != nil {
		return err
	}
	e.seq.Store(maxSeq)
	return nil
}

// SubmitOrder validates, escrows, matches and persists a limit order.
// It returns the resting remainder (nil if the order fully matched) and
// the transactions executed against the book, in match order.
func (e *Engine) SubmitOrder(ctx context.Context, traderID string, market domain.Market, side domain.Side, price, qty int64) (*domain.Order, []*domain.Transaction, error) {
	if price <= 0 || qty <= 0 || !market.Valid() || (side != domain.Buy && side != domain.Sell) {
		return nil, nil, domain.ErrValidation
	}
	// price*qty must not wrap: a wrapped escrow debit would turn into a
	// credit and mint currency. Rejecting here also bounds every
	// downstream q*price, since execution totals never exceed one side's
	// price*qty.
	if qty > math.MaxInt64/price {
		return nil, nil, domain.ErrValidation
	}

	ms := e.market(market)
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if err := e.escrow(ctx, traderID, market, side, price, qty); err != nil {
		metrics.IncOrdersRejected(market.String())
		return nil, nil, err
	}

	o := &domain.Order{
		ID:        uuid.NewString(),
		TraderID:  traderID,
		Market:    market,
		Side:      side,
		Price:     price,
		Quantity:  qty,
		Remaining: qty,
		Status:    domain.Active,
		Seq:       e.seq.Add(1),
		CreatedAt: time.Now(),
	}

	start := time.Now()
	var txns []*domain.Transaction

	// Walk the opposing side in price-time order. The book only ever
	// holds open orders, so every head entry is a live candidate until
	// prices stop crossing. A trader may take their own resting order;
	// settlement then just moves their escrow between resources.
	opp := ms.book.Opposing(side)
	for o.Remaining > 0 && len(opp) > 0 && crosses(o, opp[0]) {
		cand := opp[0]
		q := min(o.Remaining, cand.Remaining)
		txn, err := e.settle(ctx, o, cand, q)
		if err != nil {
			e.log.WithError(err).WithField("order", o.ID).Error("settlement failed after escrow")
			return nil, txns, err
		}
		txns = append(txns, txn)
		metrics.IncTradesExecuted(market.String(), q)
		if cand.Remaining == 0 {
			ms.book.PopBest(side)
			opp = ms.book.Opposing(side)
		}
	}
	metrics.ObserveMatchDuration(time.Since(start))

	if err := e.repo.SaveOrder(ctx, o); err != nil {
		if len(txns) > 0 {
			// fills already committed; the taker order record is now stale
			return nil, txns, errors.Wrap(domain.ErrSettlement, err.Error())
		}
		// nothing matched yet: unwind escrow, the submission never happened
		if rerr := e.ledger.Modify(ctx, traderID, e.escrowResource(o), o.EscrowAmount()); rerr != nil {
			return nil, nil, errors.Wrap(domain.ErrSettlement, rerr.Error())
		}
		return nil, nil, errors.Wrap(err, "persist order")
	}

	e.mu.Lock()
	e.index[o.ID] = market.String()
	e.mu.Unlock()
	ms.orders[o.ID] = o

	var resting *domain.Order
	if o.Remaining > 0 {
		ms.book.Insert(o)
		resting = o
	}

	e.publishBook(ctx, ms)
	metrics.IncOrdersSubmitted(market.String())
	e.log.WithField("order", o.ID).
		WithField("market", market.String()).
		WithField("side", string(side)).
		WithField("fills", len(txns)).
		Info("order submitted")
	return resting, txns, nil
}

// CancelOrder refunds the escrow for the order's remaining quantity and
// marks it cancelled. It shares the market lock with matching, so any
// unit of quantity is either matched or refunded, never both.
func (e *Engine) CancelOrder(ctx context.Context, orderID, traderID string) (*domain.Order, error) {
	ms, ok := e.lookup(orderID)
	if !ok {
		// Terminal orders are not reloaded at restart but still exist in
		// the durable store; they must fail as uncancellable, not unknown.
		o, err := e.repo.LoadOrder(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if o.TraderID != traderID {
			return nil, domain.ErrNotOwner
		}
		return nil, domain.ErrNotCancellable
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	o, ok := ms.orders[orderID]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	if o.TraderID != traderID {
		return nil, domain.ErrNotOwner
	}
	if !o.Open() {
		return nil, domain.ErrNotCancellable
	}

	if err := e.ledger.Modify(ctx, o.TraderID, e.escrowResource(o), o.EscrowAmount()); err != nil {
		e.log.WithError(err).WithField("order", o.ID).Error("escrow refund failed")
		return nil, errors.Wrap(domain.ErrSettlement, err.Error())
	}
	o.Status = domain.Cancelled
	ms.book.Remove(o.ID)
	if err := e.repo.SaveOrder(ctx, o); err != nil {
		return nil, errors.Wrap(domain.ErrSettlement, err.Error())
	}

	e.publishBook(ctx, ms)
	metrics.IncOrdersCancelled(o.Market.String())
	e.log.WithField("order", o.ID).WithField("market", o.Market.String()).Info("order cancelled")
	return o, nil
}

// settle executes one match of q units between the incoming (taker) order
// and a resting (maker) candidate: distribute the escrowed resources,
// refund the taker's price improvement, append the transaction, and commit
// both orders' state changes with it as one unit. Both sides were fully
// escrowed at submission, so a ledger failure here is an invariant
// violation, never an insufficiency.
func (e *Engine) settle(ctx context.Context, taker, maker *domain.Order, q int64) (*domain.Transaction, error) {
	buy, sell := taker, maker
	if taker.Side == domain.Sell {
		buy, sell = maker, taker
	}
	price := maker.Price // execution always at the resting order's limit
	total := q * price

	if err := e.ledger.Modify(ctx, buy.TraderID, maker.Market.Item, q); err != nil {
		return nil, errors.Wrap(domain.ErrSettlement, err.Error())
	}
	if err := e.ledger.Modify(ctx, sell.TraderID, e.currency, total); err != nil {
		return nil, errors.Wrap(domain.ErrSettlement, err.Error())
	}
	// A buy-side taker escrowed at its own limit but pays the maker's
	// price; the difference goes back. A sell-side taker's improvement is
	// already inside the total credited above.
	if taker.Side == domain.Buy && taker.Price > price {
		if err := e.ledger.Modify(ctx, taker.TraderID, e.currency, (taker.Price-price)*q); err != nil {
			return nil, errors.Wrap(domain.ErrSettlement, err.Error())
		}
	}

	txn := &domain.Transaction{
		ID:          uuid.NewString(),
		Market:      maker.Market,
		BuyerID:     buy.TraderID,
		SellerID:    sell.TraderID,
		BuyOrderID:  buy.ID,
		SellOrderID: sell.ID,
		Quantity:    q,
		Price:       price,
		Total:       total,
		ExecutedAt:  time.Now(),
	}
	taker.Fill(q)
	maker.Fill(q)

	err := withTx(ctx, e.repo, func(tx port.Tx) error {
		if err := tx.SaveOrder(ctx, taker); err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, maker); err != nil {
			return err
		}
		return tx.SaveTransaction(ctx, txn)
	})
	if err != nil {
		return nil, errors.Wrap(domain.ErrSettlement, err.Error())
	}
	return txn, nil
}

// escrow debits the full obligation of a new order from the trader's free
// balance, pre-checking so an insufficiency has zero side effects.
func (e *Engine) escrow(ctx context.Context, traderID string, market domain.Market, side domain.Side, price, qty int64) error {
	resource := e.currency
	amount := price * qty
	insufficient := domain.ErrInsufficientFunds
	if side == domain.Sell {
		resource = market.Item
		amount = qty
		insufficient = domain.ErrInsufficientInventory
	}
	bal, err := e.ledger.Balance(ctx, traderID, resource)
	if err != nil {
		return err
	}
	if bal < amount {
		return insufficient
	}
	return e.ledger.Modify(ctx, traderID, resource, -amount)
}

func (e *Engine) escrowResource(o *domain.Order) string {
	if o.Side == domain.Buy {
		return e.currency
	}
	return o.Market.Item
}

// GetOrder serves from memory and falls back to the durable store, so
// filled and cancelled orders stay visible across restarts.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	ms, ok := e.lookup(orderID)
	if !ok {
		return e.repo.LoadOrder(ctx, orderID)
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	o, ok := ms.orders[orderID]
	if !ok {
		return e.repo.LoadOrder(ctx, orderID)
	}
	cp := *o
	return &cp, nil
}

// OrdersForMarket lists the market's resting orders, bids first, each
// side in price-time order.
func (e *Engine) OrdersForMarket(ctx context.Context, market domain.Market) []*domain.Order {
	ms := e.market(market)
	ms.mu.Lock()
	defer ms.mu.Unlock()
	var out []*domain.Order
	for _, o := range ms.book.Orders() {
		cp := *o
		out = append(out, &cp)
	}
	return out
}

// OrdersForTrader lists a trader's open orders across all markets.
func (e *Engine) OrdersForTrader(ctx context.Context, traderID string) []*domain.Order {
	e.mu.Lock()
	states := make([]*marketState, 0, len(e.markets))
	for _, ms := range e.markets {
		states = append(states, ms)
	}
	e.mu.Unlock()

	var out []*domain.Order
	for _, ms := range states {
		ms.mu.Lock()
		for _, o := range ms.book.Orders() {
			if o.TraderID == traderID {
				cp := *o
				out = append(out, &cp)
			}
		}
		ms.mu.Unlock()
	}
	return out
}

// TransactionsForMarket reads the append-only trade log, newest first.
func (e *Engine) TransactionsForMarket(ctx context.Context, market domain.Market, limit int) ([]*domain.Transaction, error) {
	return e.repo.LoadTransactions(ctx, market, limit)
}

// BookFor returns a snapshot of the market's book, from cache when fresh.
func (e *Engine) BookFor(ctx context.Context, market domain.Market) (*domain.BookSnapshot, error) {
	if e.cache != nil {
		if snap, err := e.cache.GetBook(ctx, market.String()); err == nil && snap != nil {
			return snap, nil
		}
	}
	ms := e.market(market)
	ms.mu.Lock()
	snap := ms.book.Snapshot()
	ms.mu.Unlock()
	if e.cache != nil {
		_ = e.cache.SetBook(ctx, market.String(), snap.DeepCopy())
	}
	return snap, nil
}

func (e *Engine) publishBook(ctx context.Context, ms *marketState) {
	if e.cache == nil {
		return
	}
	snap := ms.book.Snapshot()
	if err := e.cache.SetBook(ctx, snap.Market, snap); err != nil {
		_ = e.cache.Invalidate(ctx, snap.Market)
	}
}

func (e *Engine) market(m domain.Market) *marketState {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := m.String()
	ms, ok := e.markets[key]
	if !ok {
		ms = &marketState{
			book:   NewBook(m),
			orders: make(map[string]*domain.Order),
		}
		e.markets[key] = ms
	}
	return ms
}

func (e *Engine) lookup(orderID string) (*marketState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key, ok := e.index[orderID]
	if !ok {
		return nil, false
	}
	ms, ok := e.markets[key]
	return ms, ok
}
