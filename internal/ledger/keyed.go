package ledger

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/emberhollow/tradepost/internal/port"
)

var _ port.Ledger = (*KeyedLedger)(nil)

// KeyedLedger stores every resource, currency included, in one
// (trader_id, resource) -> quantity table. Non-negativity is enforced in
// the UPDATE's WHERE clause so a losing debit touches zero rows.
type KeyedLedger struct {
	db       *sql.DB
	currency string
}

func NewKeyedLedger(db *sql.DB, currency string) *KeyedLedger {
	return &KeyedLedger{db: db, currency: currency}
}

func (l *KeyedLedger) Balance(ctx context.Context, traderID, resource string) (int64, error) {
	var qty int64
	err := l.db.QueryRowContext(ctx,
		`SELECT quantity FROM resources WHERE trader_id = $1 AND resource = $2`,
		traderID, resource).Scan(&qty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "ledger: balance")
	}
	return qty, nil
}

func (l *KeyedLedger) Modify(ctx context.Context, traderID, resource string, delta int64) error {
	if delta >= 0 {
		_, err := l.db.ExecContext(ctx, `
INSERT INTO resources(trader_id, resource, quantity)
VALUES($1, $2, $3)
ON CONFLICT (trader_id, resource) DO UPDATE SET quantity = resources.quantity + EXCLUDED.quantity
`, traderID, resource, delta)
		return errors.Wrap(err, "ledger: credit")
	}
	res, err := l.db.ExecContext(ctx, `
UPDATE resources SET quantity = quantity + $3
WHERE trader_id = $1 AND resource = $2 AND quantity + $3 >= 0
`, traderID, resource, delta)
	if err != nil {
		return errors.Wrap(err, "ledger: debit")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "ledger: debit")
	}
	if n == 0 {
		return insufficiency(resource, l.currency)
	}
	return nil
}
