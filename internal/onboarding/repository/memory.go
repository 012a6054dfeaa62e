package repository

import (
	"context"
	"sync"

	"github.com/esouk/onboarding/internal/onboarding/domain"
)

// MemoryStateStore keeps snapshots in process memory. Used for local runs and tests.
type MemoryStateStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{data: make(map[string][]byte)}
}

func (m *MemoryStateStore) Save(_ context.Context, vendorID string, snapshot []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[domain.StateKey(vendorID)] = append([]byte(nil), snapshot...)
	return nil
}

func (m *MemoryStateStore) Load(_ context.Context, vendorID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snapshot, ok := m.data[domain.StateKey(vendorID)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), snapshot...), nil
}

func (m *MemoryStateStore) Delete(_ context.Context, vendorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, domain.StateKey(vendorID))
	return nil
}

func (m *MemoryStateStore) Ping(context.Context) error { return nil }
