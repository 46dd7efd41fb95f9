package session

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps current table-set pointers in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	sets   map[string]string
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sets: make(map[string]string)}
}

func sessionKey(tenantID, userID string) string {
	return tenantID + "/" + userID
}

func (m *MemoryStore) GetTableSet(_ context.Context, tenantID, userID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, fmt.Errorf("session store is closed")
	}
	name, ok := m.sets[sessionKey(tenantID, userID)]
	return name, ok, nil
}

func (m *MemoryStore) SetTableSet(_ context.Context, tenantID, userID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("session store is closed")
	}
	m.sets[sessionKey(tenantID, userID)] = name
	return nil
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.sets = nil
	return nil
}
