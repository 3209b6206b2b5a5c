package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/emberhollow/tradepost/internal/domain"
	"github.com/emberhollow/tradepost/internal/port"
)

var _ port.Cache = (*RedisCache)(nil)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func key(market string) string { return "book:" + market }

func (c *RedisCache) SetBook(ctx context.Context, market string, snap *domain.BookSnapshot) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(market), b, c.ttl).Err()
}

func (c *RedisCache) GetBook(ctx context.Context, market string) (*domain.BookSnapshot, error) {
	b, err := c.client.Get(ctx, key(market)).Bytes()
	if err != nil {
		return nil, err
	}
	var snap domain.BookSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, market string) error {
	return c.client.Del(ctx, key(market)).Err()
}
