package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhollow/tradepost/internal/domain"
)

func newTestCache(t *testing.T) *RedisCache {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisCache(mr.Addr(), "", 0, time.Minute)
}

func TestRedisCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	snap := &domain.BookSnapshot{
		Market: "IRON@PORT-AZURE",
		Bids: []domain.Order{{
			ID:        "bid-1",
			TraderID:  "alice",
			Market:    domain.Market{Item: "IRON", Location: "PORT-AZURE"},
			Side:      domain.Buy,
			Price:     5,
			Quantity:  10,
			Remaining: 10,
			Status:    domain.Active,
			Seq:       1,
		}},
		Timestamp: time.Now().UTC(),
	}
	require.NoError(t, c.SetBook(ctx, snap.Market, snap))

	got, err := c.GetBook(ctx, snap.Market)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.Market, got.Market)
	require.Len(t, got.Bids, 1)
	assert.Equal(t, "bid-1", got.Bids[0].ID)
	assert.Equal(t, int64(5), got.Bids[0].Price)
	assert.Empty(t, got.Asks)
}

func TestRedisCache_MissAndInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	_, err := c.GetBook(ctx, "OAK@PORT-AZURE")
	assert.Error(t, err, "cache miss surfaces as an error to fall through to the book")

	snap := &domain.BookSnapshot{Market: "OAK@PORT-AZURE"}
	require.NoError(t, c.SetBook(ctx, snap.Market, snap))
	require.NoError(t, c.Invalidate(ctx, snap.Market))

	_, err = c.GetBook(ctx, snap.Market)
	assert.Error(t, err)
}
