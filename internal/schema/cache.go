package schema

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"plansheet/internal/kvstore"
)

// DefaultFreshness is how long a cached schema is trusted before the
// next read forces re-discovery. Stale entries are treated as absent,
// not evicted; the next successful validation overwrites them.
const DefaultFreshness = 24 * time.Hour

// cacheKeyPrefix namespaces cache entries by resource id so schemas for
// different spreadsheets can never bleed into each other.
const cacheKeyPrefix = "schema:"

// Cache persists discovered schemas with a freshness window.
type Cache struct {
	store     kvstore.Store
	freshness time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewCache creates a cache over the given store. freshness <= 0 selects
// DefaultFreshness. If logger is nil, slog.Default() is used.
func NewCache(store kvstore.Store, freshness time.Duration, logger *slog.Logger) *Cache {
	if freshness <= 0 {
		freshness = DefaultFreshness
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		store:     store,
		freshness: freshness,
		now:       time.Now,
		logger:    logger,
	}
}

func cacheKey(resourceID string) string {
	return cacheKeyPrefix + resourceID
}

// Get returns the cached schema for resourceID, or nil if no entry
// exists or the entry is older than the freshness window.
func (c *Cache) Get(ctx context.Context, resourceID string) (*CachedSchema, error) {
	var entry CachedSchema
	found, err := kvstore.GetJSON(ctx, c.store, cacheKey(resourceID), &entry)
	if err != nil {
		return nil, fmt.Errorf("read schema cache: %w", err)
	}
	if !found {
		return nil, nil
	}

	age := c.now().Sub(entry.CachedAt)
	if age >= c.freshness {
		c.logger.Debug("cached schema is stale", "resource", resourceID, "age", age)
		return nil, nil
	}
	return &entry, nil
}

// Put stores a schema for resourceID, stamping it with the current time.
// Concurrent puts race benignly; last write wins.
func (c *Cache) Put(ctx context.Context, resourceID string, s *Schema, resourceTitle string) error {
	entry := CachedSchema{
		Schema:        s,
		ResourceTitle: resourceTitle,
		TabCount:      len(s.Tabs),
		CachedAt:      c.now(),
	}
	if err := kvstore.SetJSON(ctx, c.store, cacheKey(resourceID), entry); err != nil {
		return fmt.Errorf("write schema cache: %w", err)
	}
	c.logger.Debug("schema cached", "resource", resourceID, "tabs", entry.TabCount)
	return nil
}

// Invalidate removes the cached schema for resourceID.
func (c *Cache) Invalidate(ctx context.Context, resourceID string) error {
	if err := c.store.Remove(ctx, []string{cacheKey(resourceID)}); err != nil {
		return fmt.Errorf("invalidate schema cache: %w", err)
	}
	return nil
}
