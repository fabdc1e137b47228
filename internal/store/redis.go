package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/playcv/cartd/internal/domain"
)

func NewRedisStorage(client *redis.Client) *RedisStorage {
	return &RedisStorage{
		client:  client,
		baseTTL: 24 * time.Hour,
	}
}

// RedisStorage persists cart snapshots per session key. TTL gets a little
// jitter so a burst of sessions does not expire at once.
type RedisStorage struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisStorage) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	data, err := r.client.Get(ctx, storageKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cart domain.Cart
	if err2 := json.Unmarshal(data, &cart); err2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err2)
	}

	return &cart, nil
}

func (r *RedisStorage) Set(ctx context.Context, sessionID string, cart *domain.Cart) error {
	jsonCart, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(30)) * time.Minute
	ttl := r.baseTTL + jitter
	if ret := r.client.Set(ctx, storageKey(sessionID), jsonCart, ttl); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r *RedisStorage) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, storageKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func storageKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
