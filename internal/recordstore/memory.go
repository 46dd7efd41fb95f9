package recordstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/chatql/chatql/internal/core"
)

// MemoryStore keeps each table's log as an in-memory slice. Used in tests and
// single-process deployments where persistence is not required.
type MemoryStore struct {
	mu         sync.RWMutex
	logs       map[string][]string
	maxRecords int
	closed     bool
}

// NewMemoryStore creates an in-memory record store. maxRecords caps each
// log's retained length; zero means unbounded.
func NewMemoryStore(maxRecords int) *MemoryStore {
	return &MemoryStore{
		logs:       make(map[string][]string),
		maxRecords: maxRecords,
	}
}

// Append adds a record to the end of a table's log.
func (m *MemoryStore) Append(_ context.Context, tableID string, record string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("record store is closed")
	}

	log := append(m.logs[tableID], record)
	if m.maxRecords > 0 && len(log) > m.maxRecords {
		log = log[len(log)-m.maxRecords:]
	}
	m.logs[tableID] = log
	return nil
}

// ReadRecent returns up to limit of the newest records, oldest first.
func (m *MemoryStore) ReadRecent(_ context.Context, tableID string, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, fmt.Errorf("record store is closed")
	}

	log := m.logs[tableID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]string, len(log))
	copy(out, log)
	return out, nil
}

// DeleteLog removes a table's log entirely. Used by the catalog when a table
// is dropped.
func (m *MemoryStore) DeleteLog(_ context.Context, tableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.logs, tableID)
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// MemoryFactory implements Factory for the in-memory backend.
type MemoryFactory struct{}

func (f *MemoryFactory) Type() string { return "memory" }

func (f *MemoryFactory) Validate(config Config) error {
	if config.Type != "memory" {
		return fmt.Errorf("invalid type for memory factory: %s", config.Type)
	}
	if config.MaxRecords < 0 {
		return fmt.Errorf("max_records must be non-negative, got: %d", config.MaxRecords)
	}
	return nil
}

func (f *MemoryFactory) Create(config Config) (core.RecordStore, error) {
	return NewMemoryStore(config.MaxRecords), nil
}

func init() {
	RegisterFactory(&MemoryFactory{})
}
