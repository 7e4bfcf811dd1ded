package kvstore

import (
	"context"
	"encoding/json"
	"sync"
)

// MemoryStore is an in-process Store used by tests and the MCP server,
// where cached schemas only need to live as long as the session.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]json.RawMessage)}
}

// Get implements Store.Get.
func (m *MemoryStore) Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if raw, ok := m.entries[k]; ok {
			result[k] = raw
		}
	}
	return result, nil
}

// Set implements Store.Set.
func (m *MemoryStore) Set(ctx context.Context, entries map[string]json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, v := range entries {
		m.entries[k] = v
	}
	return nil
}

// Remove implements Store.Remove.
func (m *MemoryStore) Remove(ctx context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Clear implements Store.Clear.
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = make(map[string]json.RawMessage)
	return nil
}
