package storage

import "github.com/yndnr/atomstore/pkg/cmap"

// Memory is an in-process adapter. Values live as long as the Memory does.
type Memory struct {
	items *cmap.Map[string]
}

// NewMemory creates an empty in-memory adapter.
func NewMemory() *Memory {
	return &Memory{items: cmap.New[string]()}
}

// GetItem returns the value stored under key.
func (m *Memory) GetItem(key string) (string, bool, error) {
	v, ok := m.items.Get(key)
	return v, ok, nil
}

// SetItem stores value under key.
func (m *Memory) SetItem(key, value string) error {
	m.items.Set(key, value)
	return nil
}

// RemoveItem deletes key.
func (m *Memory) RemoveItem(key string) error {
	m.items.Delete(key)
	return nil
}

// Keys returns the stored keys with the given prefix, sorted.
func (m *Memory) Keys(prefix string) ([]string, error) {
	return m.items.Keys(prefix), nil
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	return m.items.Len()
}

// Clear removes every key.
func (m *Memory) Clear() {
	m.items.Clear()
}
