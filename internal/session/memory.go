package session

import (
	"context"
	"sync"
)

// MemoryPersistence はプロセス内の Persistence です（テスト・開発用）。
type MemoryPersistence struct {
	mu    sync.RWMutex
	items map[string]string
}

// NewMemoryPersistence は空の MemoryPersistence を作成します。
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{items: make(map[string]string)}
}

func (m *MemoryPersistence) GetItem(ctx context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok, nil
}

func (m *MemoryPersistence) SetItem(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryPersistence) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}
