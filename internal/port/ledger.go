package port

import "context"

// Ledger is the game's resource ledger: free balances of currency and
// commodities per trader. The engine escrows by debiting here before an
// order enters the book, so settlement never re-checks balances.
//
// Modify with a debit that exceeds the free balance fails with
// domain.ErrInsufficientFunds (currency) or domain.ErrInsufficientInventory
// (anything else); the ledger does not re-derive any other business rule.
type Ledger interface {
	Balance(ctx context.Context, traderID, resource string) (int64, error)
	Modify(ctx context.Context, traderID, resource string, delta int64) error
}
