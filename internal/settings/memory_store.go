package settings

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory settings store for demo/development mode.
type MemoryStore struct {
	mu      sync.RWMutex
	current *Settings
}

// NewMemoryStore creates a settings store that starts with defaults.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return Defaults(), nil
	}
	cp := *m.current
	return &cp, nil
}

func (m *MemoryStore) Save(_ context.Context, s *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.current = &cp
	return nil
}
