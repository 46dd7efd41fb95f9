package recordstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chatql/chatql/internal/core"
)

// RedisStore keeps each table's log as a Redis list: Append is an RPUSH and
// ReadRecent is an LRANGE over the list's tail, so the list order is exactly
// append order.
type RedisStore struct {
	client *redis.Client
	// keyPrefix namespaces log keys, e.g. "chatql:log:".
	keyPrefix  string
	maxRecords int
	closed     bool
	logger     *slog.Logger
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(endpoints []string, password string, db, poolSize, minIdleConns int, dialTimeout, readTimeout, writeTimeout time.Duration, maxRecords int) (*RedisStore, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one endpoint is required")
	}

	// Single-node only; the record log has no cluster story yet.
	opts := &redis.Options{
		Addr:         endpoints[0],
		Password:     password,
		DB:           db,
		PoolSize:     poolSize,
		MinIdleConns: minIdleConns,
		DialTimeout:  dialTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{
		client:     client,
		keyPrefix:  "chatql:log:",
		maxRecords: maxRecords,
		logger:     slog.Default(),
	}, nil
}

func (r *RedisStore) key(tableID string) string {
	return r.keyPrefix + tableID
}

// Append pushes the record onto the tail of the table's list and trims the
// list to the retention cap when one is configured.
func (r *RedisStore) Append(ctx context.Context, tableID string, record string) error {
	if r.closed {
		return fmt.Errorf("record store is closed")
	}

	key := r.key(tableID)
	if err := r.client.RPush(ctx, key, record).Err(); err != nil {
		r.logger.Error("redis append failed", "key", key, "error", err)
		return fmt.Errorf("failed to append to %s: %w", key, err)
	}
	if r.maxRecords > 0 {
		if err := r.client.LTrim(ctx, key, int64(-r.maxRecords), -1).Err(); err != nil {
			r.logger.Warn("redis trim failed", "key", key, "error", err)
		}
	}
	return nil
}

// ReadRecent fetches the tail of the table's list, oldest first.
func (r *RedisStore) ReadRecent(ctx context.Context, tableID string, limit int) ([]string, error) {
	if r.closed {
		return nil, fmt.Errorf("record store is closed")
	}

	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	records, err := r.client.LRange(ctx, r.key(tableID), start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.key(tableID), err)
	}
	return records, nil
}

// DeleteLog removes a table's list. Used by the catalog on drop.
func (r *RedisStore) DeleteLog(ctx context.Context, tableID string) error {
	if r.closed {
		return fmt.Errorf("record store is closed")
	}
	return r.client.Del(ctx, r.key(tableID)).Err()
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.client.Close()
}

// Client exposes the underlying Redis client so sibling stores (catalog,
// session) can share the connection.
func (r *RedisStore) Client() *redis.Client {
	return r.client
}

// RedisFactory implements Factory for the Redis backend.
type RedisFactory struct{}

func (f *RedisFactory) Type() string { return "redis" }

func (f *RedisFactory) Validate(config Config) error {
	if config.Type != "redis" {
		return fmt.Errorf("invalid type for Redis factory: %s", config.Type)
	}
	if len(config.Endpoints) == 0 {
		return fmt.Errorf("at least one endpoint is required for Redis")
	}
	if config.DB < 0 || config.DB > 15 {
		return fmt.Errorf("Redis DB must be between 0 and 15, got: %d", config.DB)
	}
	if config.PoolSize <= 0 {
		return fmt.Errorf("pool_size must be greater than 0, got: %d", config.PoolSize)
	}
	if config.MinIdleConns < 0 {
		return fmt.Errorf("min_idle_conns must be non-negative, got: %d", config.MinIdleConns)
	}
	if config.DialTimeout <= 0 || config.ReadTimeout <= 0 || config.WriteTimeout <= 0 {
		return fmt.Errorf("dial, read and write timeouts must all be greater than 0")
	}
	return nil
}

func (f *RedisFactory) Create(config Config) (core.RecordStore, error) {
	store, err := NewRedisStore(
		config.Endpoints, config.Password, config.DB,
		config.PoolSize, config.MinIdleConns,
		config.DialTimeout, config.ReadTimeout, config.WriteTimeout,
		config.MaxRecords,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis record store: %w", err)
	}
	return store, nil
}

func init() {
	RegisterFactory(&RedisFactory{})
}
