package in_memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/emberhollow/tradepost/internal/domain"
	"github.com/emberhollow/tradepost/internal/port"
)

var _ port.Cache = (*Cache)(nil)

// Cache is a TTL-expiring in-process stand-in for the redis cache.
type Cache struct {
	store *gocache.Cache
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: gocache.New(ttl, 2*ttl)}
}

func (c *Cache) SetBook(ctx context.Context, market string, snap *domain.BookSnapshot) error {
	c.store.Set(market, snap.DeepCopy(), gocache.DefaultExpiration)
	return nil
}

func (c *Cache) GetBook(ctx context.Context, market string) (*domain.BookSnapshot, error) {
	v, ok := c.store.Get(market)
	if !ok {
		return nil, nil
	}
	snap, ok := v.(*domain.BookSnapshot)
	if !ok {
		return nil, nil
	}
	return snap.DeepCopy(), nil
}

func (c *Cache) Invalidate(ctx context.Context, market string) error {
	c.store.Delete(market)
	return nil
}
