package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/emberhollow/tradepost/internal/port"
)

var _ port.Ledger = (*ColumnLedger)(nil)

// ColumnLedger is the storage strategy where currency lives in a
// dedicated column on the traders table while item holdings sit in a
// keyed holdings table. The split is decided once here, at the interface
// boundary, instead of per call site.
type ColumnLedger struct {
	db       *sql.DB
	currency string
	column   string // quoted currency column on traders
}

func NewColumnLedger(db *sql.DB, currency string) *ColumnLedger {
	return &ColumnLedger{
		db:       db,
		currency: currency,
		column:   pq.QuoteIdentifier(currency),
	}
}

func (l *ColumnLedger) Balance(ctx context.Context, traderID, resource string) (int64, error) {
	var (
		qty int64
		err error
	)
	if resource == l.currency {
		err = l.db.QueryRowContext(ctx,
			fmt.Sprintf(`SELECT %s FROM traders WHERE id = $1`, l.column),
			traderID).Scan(&qty)
	} else {
		err = l.db.QueryRowContext(ctx,
			`SELECT quantity FROM holdings WHERE trader_id = $1 AND item = $2`,
			traderID, resource).Scan(&qty)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "ledger: balance")
	}
	return qty, nil
}

func (l *ColumnLedger) Modify(ctx context.Context, traderID, resource string, delta int64) error {
	if resource == l.currency {
		return l.modifyCurrency(ctx, traderID, delta)
	}
	return l.modifyItem(ctx, traderID, resource, delta)
}

func (l *ColumnLedger) modifyCurrency(ctx context.Context, traderID string, delta int64) error {
	res, err := l.db.ExecContext(ctx, fmt.Sprintf(`
UPDATE traders SET %[1]s = %[1]s + $2
WHERE id = $1 AND %[1]s + $2 >= 0
`, l.column), traderID, delta)
	if err != nil {
		return errors.Wrap(err, "ledger: currency")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "ledger: currency")
	}
	if n == 0 {
		return insufficiency(l.currency, l.currency)
	}
	return nil
}

func (l *ColumnLedger) modifyItem(ctx context.Context, traderID, item string, delta int64) error {
	if delta >= 0 {
		_, err := l.db.ExecContext(ctx, `
INSERT INTO holdings(trader_id, item, quantity)
VALUES($1, $2, $3)
ON CONFLICT (trader_id, item) DO UPDATE SET quantity = holdings.quantity + EXCLUDED.quantity
`, traderID, item, delta)
		return errors.Wrap(err, "ledger: item credit")
	}
	res, err := l.db.ExecContext(ctx, `
UPDATE holdings SET quantity = quantity + $3
WHERE trader_id = $1 AND item = $2 AND quantity + $3 >= 0
`, traderID, item, delta)
	if err != nil {
		return errors.Wrap(err, "ledger: item debit")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "ledger: item debit")
	}
	if n == 0 {
		return insufficiency(item, l.currency)
	}
	return nil
}
