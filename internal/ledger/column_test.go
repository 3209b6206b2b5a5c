package ledger

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhollow/tradepost/internal/domain"
)

func TestColumnLedger_CurrencyUsesTraderColumn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT "gold" FROM traders`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"gold"}).AddRow(80))

	l := NewColumnLedger(db, "gold")
	bal, err := l.Balance(context.Background(), "alice", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(80), bal)
}

func TestColumnLedger_ItemsUseHoldingsTable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT quantity FROM holdings").
		WithArgs("alice", "IRON").
		WillReturnRows(sqlmock.NewRows([]string{"quantity"}).AddRow(12))

	l := NewColumnLedger(db, "gold")
	bal, err := l.Balance(context.Background(), "alice", "IRON")
	require.NoError(t, err)
	assert.Equal(t, int64(12), bal)
}

func TestColumnLedger_CurrencyDebitBelowZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`UPDATE traders SET "gold"`).
		WithArgs("alice", int64(-500)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	l := NewColumnLedger(db, "gold")
	err = l.Modify(context.Background(), "alice", "gold", -500)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
}

func TestColumnLedger_ItemCreditUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO holdings").
		WithArgs("alice", "IRON", int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	l := NewColumnLedger(db, "gold")
	require.NoError(t, l.Modify(context.Background(), "alice", "IRON", 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnLedger_ItemDebitBelowZero(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE holdings SET quantity").
		WithArgs("alice", "IRON", int64(-4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	l := NewColumnLedger(db, "gold")
	err = l.Modify(context.Background(), "alice", "IRON", -4)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)
}
