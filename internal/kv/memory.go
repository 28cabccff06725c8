package kv

import (
	"context"
	"sync"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), value...)

	return nil
}

func (m *MemoryStore) Commit(_ context.Context, batch *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	applyOps(m.data, batch)

	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

func applyOps(data map[string][]byte, batch *Batch) {
	for _, op := range batch.Ops() {
		if op.Value == nil {
			delete(data, op.Key)
			continue
		}
		data[op.Key] = append([]byte(nil), op.Value...)
	}
}
