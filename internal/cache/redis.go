package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/order-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 30 * time.Second

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

// RedisCache keeps product records for a short TTL so bursts of orders for the
// same product do not each hit the catalog.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (r RedisCache) Get(ctx context.Context, productID string) (domain.ProductRecord, error) {
	data, err := r.client.Get(ctx, cacheKey(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var record domain.ProductRecord
	if err := dec.Decode(&record); err != nil {
		return nil, fmt.Errorf("unmarshal product failed: %w", err)
	}
	if record == nil {
		return nil, ErrCacheMiss
	}
	return record, nil
}

func (r RedisCache) Set(ctx context.Context, productID string, record domain.ProductRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal product failed: %w", err)
	}

	if err := r.client.Set(ctx, cacheKey(productID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func cacheKey(productID string) string {
	return fmt.Sprintf("product:%s", productID)
}
