package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "chatql:session:"

// RedisStore persists table-set pointers so a user's selection survives
// process restarts. Entries expire after the TTL so abandoned sessions do
// not accumulate.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	closed bool
}

// DefaultSessionTTL keeps a selection alive for a month of inactivity.
const DefaultSessionTTL = 30 * 24 * time.Hour

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) GetTableSet(ctx context.Context, tenantID, userID string) (string, bool, error) {
	if r.closed {
		return "", false, fmt.Errorf("session store is closed")
	}
	key := sessionKeyPrefix + tenantID + "/" + userID
	name, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read session for %s/%s: %w", tenantID, userID, err)
	}
	// Refresh TTL on read so an active session never expires.
	r.client.Expire(ctx, key, r.ttl)
	return name, true, nil
}

func (r *RedisStore) SetTableSet(ctx context.Context, tenantID, userID, name string) error {
	if r.closed {
		return fmt.Errorf("session store is closed")
	}
	key := sessionKeyPrefix + tenantID + "/" + userID
	if err := r.client.Set(ctx, key, name, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session for %s/%s: %w", tenantID, userID, err)
	}
	return nil
}

// Close marks the store closed without closing the shared client.
func (r *RedisStore) Close() error {
	r.closed = true
	return nil
}
