package settings

import (
	"sync"
	"time"
)

// MemoryStore is an in-memory settings store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]Settings
	closed bool
}

// NewMemoryStore creates a new in-memory settings store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]Settings),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(projectID string, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	s.UpdatedAt = time.Now().UTC()
	m.data[projectID] = s
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(projectID string) (Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return Settings{}, ErrStoreClosed
	}

	s, ok := m.data[projectID]
	if !ok {
		return Settings{}, ErrNotFound
	}
	return s, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(projectID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.data, projectID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
