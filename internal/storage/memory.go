package storage

import "sync"

// Memory is a volatile store, used when no path is configured and in tests.
type Memory struct {
	mu   sync.Mutex
	vals map[string]int
}

func NewMemory() *Memory {
	return &Memory{vals: make(map[string]int)}
}

func (m *Memory) Get(key string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vals[key]
	return v, ok, nil
}

func (m *Memory) Set(key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[key] = value
	return nil
}

func (m *Memory) Close() error {
	return nil
}
