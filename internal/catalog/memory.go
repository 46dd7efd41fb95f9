package catalog

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryDeclarationStore keeps declarations in process memory. It backs
// tests and single-node deployments.
type MemoryDeclarationStore struct {
	mu     sync.RWMutex
	decls  map[string]string
	closed bool
}

func NewMemoryDeclarationStore() *MemoryDeclarationStore {
	return &MemoryDeclarationStore{decls: make(map[string]string)}
}

func (m *MemoryDeclarationStore) PutDeclaration(_ context.Context, tableID string, declaration string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("declaration store is closed")
	}
	m.decls[tableID] = declaration
	return nil
}

func (m *MemoryDeclarationStore) GetDeclaration(_ context.Context, tableID string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, fmt.Errorf("declaration store is closed")
	}
	decl, ok := m.decls[tableID]
	return decl, ok, nil
}

func (m *MemoryDeclarationStore) DeleteDeclaration(_ context.Context, tableID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("declaration store is closed")
	}
	delete(m.decls, tableID)
	return nil
}

func (m *MemoryDeclarationStore) ListTables(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, fmt.Errorf("declaration store is closed")
	}
	tables := make([]string, 0, len(m.decls))
	for id := range m.decls {
		tables = append(tables, id)
	}
	sort.Strings(tables)
	return tables, nil
}

func (m *MemoryDeclarationStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.decls = nil
	return nil
}
