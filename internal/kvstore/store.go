// Package kvstore provides the asynchronous key-value store the engine
// persists through. It mirrors the bulk get/set/remove/clear contract of
// browser extension storage so callers never depend on a concrete backend.
package kvstore

import (
	"context"
	"encoding/json"
)

// Store is the persistence collaborator consumed by the schema cache and
// session tracking. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the entries for the requested keys. Missing keys are
	// simply absent from the result, never an error.
	Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error)

	// Set writes all entries. Last write wins; there is no version check.
	Set(ctx context.Context, entries map[string]json.RawMessage) error

	// Remove deletes the given keys. Removing an absent key is a no-op.
	Remove(ctx context.Context, keys []string) error

	// Clear removes every entry.
	Clear(ctx context.Context) error
}

// GetJSON reads a single key and unmarshals it into out.
// Returns false if the key is absent.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	entries, err := s.Get(ctx, []string{key})
	if err != nil {
		return false, err
	}
	raw, ok := entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, map[string]json.RawMessage{key: raw})
}
