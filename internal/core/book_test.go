package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhollow/tradepost/internal/domain"
)

func order(id string, side domain.Side, price, seq int64) *domain.Order {
	return &domain.Order{
		ID:        id,
		Market:    ironPort,
		Side:      side,
		Price:     price,
		Quantity:  10,
		Remaining: 10,
		Status:    domain.Active,
		Seq:       seq,
	}
}

func TestBook_AskOrdering(t *testing.T) {
	b := NewBook(ironPort)
	b.Insert(order("a", domain.Sell, 7, 1))
	b.Insert(order("b", domain.Sell, 5, 2))
	b.Insert(order("c", domain.Sell, 5, 3))
	b.Insert(order("d", domain.Sell, 6, 4))

	asks := b.Opposing(domain.Buy)
	require.Len(t, asks, 4)
	ids := []string{asks[0].ID, asks[1].ID, asks[2].ID, asks[3].ID}
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids, "asks ascend by price, FIFO within a level")
}

func TestBook_BidOrdering(t *testing.T) {
	b := NewBook(ironPort)
	b.Insert(order("a", domain.Buy, 5, 1))
	b.Insert(order("b", domain.Buy, 7, 2))
	b.Insert(order("c", domain.Buy, 7, 3))
	b.Insert(order("d", domain.Buy, 6, 4))

	bids := b.Opposing(domain.Sell)
	require.Len(t, bids, 4)
	ids := []string{bids[0].ID, bids[1].ID, bids[2].ID, bids[3].ID}
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids, "bids descend by price, FIFO within a level")
}

func TestBook_OutOfOrderSeqInsert(t *testing.T) {
	// Restart rebuilds books from storage, so inserts may arrive with
	// arbitrary sequence numbers.
	b := NewBook(ironPort)
	b.Insert(order("late", domain.Sell, 5, 9))
	b.Insert(order("early", domain.Sell, 5, 2))

	asks := b.Opposing(domain.Buy)
	require.Len(t, asks, 2)
	assert.Equal(t, "early", asks[0].ID)
}

func TestBook_Remove(t *testing.T) {
	b := NewBook(ironPort)
	b.Insert(order("bid", domain.Buy, 5, 1))
	b.Insert(order("ask", domain.Sell, 9, 2))

	assert.True(t, b.Remove("bid"))
	assert.False(t, b.Remove("bid"), "already removed")
	assert.False(t, b.Remove("missing"))
	assert.Equal(t, 0, b.BidCount())
	assert.Equal(t, 1, b.AskCount())
}

func TestBook_Snapshot(t *testing.T) {
	b := NewBook(ironPort)
	b.Insert(order("bid", domain.Buy, 5, 1))
	b.Insert(order("ask", domain.Sell, 9, 2))

	snap := b.Snapshot()
	assert.Equal(t, ironPort.String(), snap.Market)
	require.Len(t, snap.Bids, 1)
	require.Len(t, snap.Asks, 1)

	// Snapshots are copies; mutating them must not reach the book.
	snap.Bids[0].Remaining = 1
	assert.Equal(t, int64(10), b.Opposing(domain.Sell)[0].Remaining)
}

func TestCrosses(t *testing.T) {
	buy := order("buy", domain.Buy, 6, 1)
	assert.True(t, crosses(buy, order("ask", domain.Sell, 6, 2)))
	assert.True(t, crosses(buy, order("ask", domain.Sell, 5, 2)))
	assert.False(t, crosses(buy, order("ask", domain.Sell, 7, 2)))

	sell := order("sell", domain.Sell, 6, 1)
	assert.True(t, crosses(sell, order("bid", domain.Buy, 6, 2)))
	assert.True(t, crosses(sell, order("bid", domain.Buy, 7, 2)))
	assert.False(t, crosses(sell, order("bid", domain.Buy, 5, 2)))
}
