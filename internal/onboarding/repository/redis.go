package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

// RedisStateStore keeps snapshots in Redis, refreshing the TTL on every save
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

func (r *RedisStateStore) Save(ctx context.Context, vendorID string, snapshot []byte) error {
	return r.client.Set(ctx, domain.StateKey(vendorID), snapshot, r.ttl).Err()
}

func (r *RedisStateStore) Load(ctx context.Context, vendorID string) ([]byte, error) {
	snapshot, err := r.client.Get(ctx, domain.StateKey(vendorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return snapshot, err
}

func (r *RedisStateStore) Delete(ctx context.Context, vendorID string) error {
	return r.client.Del(ctx, domain.StateKey(vendorID)).Err()
}

func (r *RedisStateStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
