// Package redis provides a read-through Redis cache in front of a unified store.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/agentstation/propverify/internal/metrics"
	"github.com/agentstation/propverify/internal/store"
	"github.com/agentstation/propverify/pkg/constants"
	"github.com/agentstation/propverify/pkg/logging"
	"github.com/agentstation/propverify/pkg/property"
)

const (
	// KeyPrefix namespaces cached unified records
	KeyPrefix = "propverify:unified:"
)

// Cache caches the records of an underlying store. Writes go to the store
// first and then refresh the cache; cache failures never fail a request.
type Cache struct {
	next    store.Store
	client  *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zerolog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithTTL sets how long cached records live.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMetrics records cache hits and misses.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// WithLogger sets the logger used for cache failures.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New wraps next with a Redis cache. The client lifecycle is managed by the caller.
func New(next store.Store, client *redis.Client, opts ...Option) *Cache {
	c := &Cache{
		next:   next,
		client: client,
		ttl:    constants.CacheTTL,
		logger: logging.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Key returns the cache key of propertyID.
func Key(propertyID string) string {
	return KeyPrefix + propertyID
}

// Upsert writes through to the store and caches the stored record.
func (c *Cache) Upsert(ctx context.Context, p *property.Property) (*property.Property, error) {
	stored, err := c.next.Upsert(ctx, p)
	if err != nil {
		// The store state is unknown; drop any cached copy.
		c.invalidate(ctx, p)
		return nil, err
	}
	c.set(ctx, stored)
	return stored, nil
}

// Get serves from the cache and falls back to the store on a miss.
func (c *Cache) Get(ctx context.Context, propertyID string) (*property.Property, error) {
	data, err := c.client.Get(ctx, Key(propertyID)).Bytes()
	switch {
	case err == nil:
		var p property.Property
		if jerr := json.Unmarshal(data, &p); jerr == nil {
			c.metrics.IncrementCache(true)
			return &p, nil
		}
		c.logger.Warn().Str("property_id", propertyID).Msg("Discarding undecodable cache entry")
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn().Err(err).Str("property_id", propertyID).Msg("Cache read failed")
	}

	c.metrics.IncrementCache(false)
	p, err := c.next.Get(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, p)
	return p, nil
}

// Ping checks Redis and, when supported, the underlying store.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return err
	}
	if p, ok := c.next.(store.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the underlying store.
func (c *Cache) Close() error {
	return c.next.Close()
}

func (c *Cache) set(ctx context.Context, p *property.Property) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, Key(p.PropertyID), data, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("property_id", p.PropertyID).Msg("Cache write failed")
	}
}

func (c *Cache) invalidate(ctx context.Context, p *property.Property) {
	if p == nil || p.PropertyID == "" {
		return
	}
	if err := c.client.Del(ctx, Key(p.PropertyID)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("property_id", p.PropertyID).Msg("Cache invalidation failed")
	}
}
