package storage

import (
	"context"
	"sync"
)

// MemoryKV is an in-process store used in tests and as the fallback when no
// database is configured. State then survives the process only.
type MemoryKV struct {
	mu      sync.RWMutex
	records map[int64][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{records: make(map[int64][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, playerID int64) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.records[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (m *MemoryKV) Put(_ context.Context, playerID int64, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.records[playerID] = cp
	return nil
}
