package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhollow/tradepost/internal/domain"
)

func TestMemory_ModifyAndBalance(t *testing.T) {
	m := NewMemory("gold")
	ctx := context.Background()
	m.Set("alice", "gold", 100)

	require.NoError(t, m.Modify(ctx, "alice", "gold", -60))
	bal, err := m.Balance(ctx, "alice", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(40), bal)

	err = m.Modify(ctx, "alice", "gold", -41)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	err = m.Modify(ctx, "alice", "IRON", -1)
	assert.ErrorIs(t, err, domain.ErrInsufficientInventory)

	bal, err = m.Balance(ctx, "alice", "gold")
	require.NoError(t, err)
	assert.Equal(t, int64(40), bal, "failed debit leaves the balance untouched")
}

func TestMemory_Total(t *testing.T) {
	m := NewMemory("gold")
	m.Set("a", "gold", 10)
	m.Set("b", "gold", 15)
	m.Set("b", "IRON", 3)
	assert.Equal(t, int64(25), m.Total("gold"))
	assert.Equal(t, int64(3), m.Total("IRON"))
}
