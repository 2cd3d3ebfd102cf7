// Package cache holds rendered API payloads in process memory so repeated
// reads of the same property or the region table skip the store.
package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// RegionsKey caches the region table payload.
const RegionsKey = "regions"

// PropertyKey returns the cache key of a stored property.
func PropertyKey(propertyID string) string {
	return "property:" + propertyID
}

// ProvenanceKey returns the cache key of a property's provenance report.
func ProvenanceKey(propertyID string) string {
	return "provenance:" + propertyID
}

// Cache wraps go-cache with the invalidation rules of the API.
type Cache struct {
	store *gocache.Cache
}

// New creates a cache. defaultTTL is the lifetime of an entry and
// cleanupInterval how often expired entries are removed from memory.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache.
func (c *Cache) Get(key string) (any, bool) {
	return c.store.Get(key)
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// SetWithTTL stores a value with a custom TTL. gocache.NoExpiration keeps it forever.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// Delete removes a value from the cache.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// InvalidateProperty drops every cached payload derived from propertyID.
func (c *Cache) InvalidateProperty(propertyID string) {
	c.store.Delete(PropertyKey(propertyID))
	c.store.Delete(ProvenanceKey(propertyID))
}

// Clear removes all items from the cache.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of items in the cache.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats returns cache statistics.
type Stats struct {
	ItemCount int `json:"item_count"`
}

// GetStats returns current cache statistics.
func (c *Cache) GetStats() Stats {
	return Stats{
		ItemCount: c.store.ItemCount(),
	}
}
