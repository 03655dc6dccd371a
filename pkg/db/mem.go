package db

import (
	"sync"
)

// MemStorage is an in-memory storage capability. It backs unit tests and the
// node's unsafe dev mode; nothing survives a restart.
type MemStorage struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func NewMemStorage() *MemStorage {
	return &MemStorage{entries: make(map[string][]byte)}
}

func (m *MemStorage) Read(key []byte) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, ok := m.entries[string(key)]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, true, nil
}

func (m *MemStorage) Write(key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[string(key)] = stored
	return nil
}
