package store

import (
	"sort"
	"sync"

	"nickandperla.net/wires/internal/expr"
)

// Memory is an in-memory store for testing.
type Memory struct {
	mu   sync.RWMutex
	data map[string]expr.Gate
}

// NewMemory creates a new in-memory store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]expr.Gate),
	}
}

// Get retrieves a gate by wire name.
func (m *Memory) Get(name string) (expr.Gate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.data[name]; ok {
		return g, nil
	}
	return nil, nil
}

// Put stores a gate by wire name.
func (m *Memory) Put(name string, g expr.Gate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[name] = g
	return nil
}

// Delete removes a wire.
func (m *Memory) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, name)
	return nil
}

// Names lists all stored wires.
func (m *Memory) Names() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.data))
	for name := range m.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Close is a no-op for memory store.
func (m *Memory) Close() error {
	return nil
}
