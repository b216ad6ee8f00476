package storage

import (
	"context"
	"sync"

	"storefront/internal/domain"
)

type memoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemory returns a process-local Store. Data does not survive a restart.
func NewMemory() Store {
	return &memoryStore{entries: make(map[string][]byte)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *memoryStore) Put(_ context.Context, key string, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.mu.Lock()
	m.entries[key] = v
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) Ping(context.Context) error {
	return nil
}
