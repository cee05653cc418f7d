// internal/settings/memory.go
package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps settings for the current session only. It is the
// fallback when the database cannot be opened.
type MemoryStore struct {
	mu     sync.Mutex
	saved  map[string]json.RawMessage
	staged map[string]json.RawMessage
	saves  int
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		saved:  make(map[string]json.RawMessage),
		staged: make(map[string]json.RawMessage),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	if v, ok := m.staged[key]; ok {
		return clone(v), nil
	}
	if v, ok := m.saved[key]; ok {
		return clone(v), nil
	}
	return nil, fmt.Errorf("settings: %q: %w", key, ErrNotFound)
}

func (m *MemoryStore) Set(key string, value json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.staged[key] = clone(value)
	return nil
}

func (m *MemoryStore) Save(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	for k, v := range m.staged {
		m.saved[k] = v
	}
	clear(m.staged)
	m.saves++
	return nil
}

// Saves reports how many times Save committed.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func clone(b json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), b...)
}
