package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists entries as a single JSON object on disk. It is the
// CLI's durable backend; one process owns the file at a time.
type FileStore struct {
	mu   sync.Mutex
	path string
}

var _ Store = (*FileStore)(nil)

// NewFileStore creates a store backed by the JSON file at path.
// Parent directories are created on first write, not here.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// load reads the backing file. A missing file is an empty store.
// Caller must hold the mutex.
func (f *FileStore) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store file: %w", err)
	}

	entries := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("parse store file: %w", err)
		}
	}
	return entries, nil
}

// save writes entries back atomically (write temp file, rename).
// Caller must hold the mutex.
func (f *FileStore) save(entries map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store file: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

// Get implements Store.Get.
func (f *FileStore) Get(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return nil, err
	}

	result := make(map[string]json.RawMessage, len(keys))
	for _, k := range keys {
		if raw, ok := entries[k]; ok {
			result[k] = raw
		}
	}
	return result, nil
}

// Set implements Store.Set.
func (f *FileStore) Set(ctx context.Context, updates map[string]json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	for k, v := range updates {
		entries[k] = v
	}
	return f.save(entries)
}

// Remove implements Store.Remove.
func (f *FileStore) Remove(ctx context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(entries, k)
	}
	return f.save(entries)
}

// Clear implements Store.Clear.
func (f *FileStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.save(make(map[string]json.RawMessage))
}
