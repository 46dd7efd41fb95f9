package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

const declarationHashKey = "chatql:declarations"

// RedisDeclarationStore keeps all declarations in a single Redis hash,
// field per table ID. It shares a client with the Redis record store.
type RedisDeclarationStore struct {
	client *redis.Client
	closed bool
}

func NewRedisDeclarationStore(client *redis.Client) *RedisDeclarationStore {
	return &RedisDeclarationStore{client: client}
}

func (r *RedisDeclarationStore) PutDeclaration(ctx context.Context, tableID string, declaration string) error {
	if r.closed {
		return fmt.Errorf("declaration store is closed")
	}
	if err := r.client.HSet(ctx, declarationHashKey, tableID, declaration).Err(); err != nil {
		return fmt.Errorf("failed to store declaration for %s: %w", tableID, err)
	}
	return nil
}

func (r *RedisDeclarationStore) GetDeclaration(ctx context.Context, tableID string) (string, bool, error) {
	if r.closed {
		return "", false, fmt.Errorf("declaration store is closed")
	}
	decl, err := r.client.HGet(ctx, declarationHashKey, tableID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read declaration for %s: %w", tableID, err)
	}
	return decl, true, nil
}

func (r *RedisDeclarationStore) DeleteDeclaration(ctx context.Context, tableID string) error {
	if r.closed {
		return fmt.Errorf("declaration store is closed")
	}
	if err := r.client.HDel(ctx, declarationHashKey, tableID).Err(); err != nil {
		return fmt.Errorf("failed to delete declaration for %s: %w", tableID, err)
	}
	return nil
}

func (r *RedisDeclarationStore) ListTables(ctx context.Context) ([]string, error) {
	if r.closed {
		return nil, fmt.Errorf("declaration store is closed")
	}
	tables, err := r.client.HKeys(ctx, declarationHashKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	sort.Strings(tables)
	return tables, nil
}

// Close marks the store closed without closing the shared client; the
// record store owns the connection.
func (r *RedisDeclarationStore) Close() error {
	r.closed = true
	return nil
}
