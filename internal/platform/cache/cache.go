// Package cache provides the read-through entity cache used for reference
// data (doctors, drugs, patients). Redis backs it in production; an
// in-process store serves tests and single-node development.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/pharmascript/pharmascript/internal/platform/metrics"
)

// Store is a byte-oriented key/value store with expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Close() error
}

// Entities caches records of one type by id. A nil *Entities is valid and
// caches nothing.
type Entities[T any] struct {
	store  Store
	prefix string
	entity string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewEntities returns a cache for entity. Keys look like
// "pharmascript:doctor:42".
func NewEntities[T any](store Store, entity string, ttl time.Duration, logger zerolog.Logger) *Entities[T] {
	return &Entities[T]{
		store:  store,
		prefix: "pharmascript:" + entity + ":",
		entity: entity,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *Entities[T]) key(id int64) string {
	return c.prefix + strconv.FormatInt(id, 10)
}

// Get returns the cached record. Store failures are logged and reported as a
// miss so callers fall back to the database.
func (c *Entities[T]) Get(ctx context.Context, id int64) (*T, bool) {
	if c == nil || c.store == nil {
		return nil, false
	}

	raw, ok, err := c.store.Get(ctx, c.key(id))
	if err != nil {
		c.logger.Warn().Err(err).Str("entity", c.entity).Int64("id", id).Msg("cache get failed")
		metrics.CacheRequests.WithLabelValues(c.entity, "error").Inc()
		return nil, false
	}
	if !ok {
		metrics.CacheRequests.WithLabelValues(c.entity, "miss").Inc()
		return nil, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		c.logger.Warn().Err(err).Str("entity", c.entity).Int64("id", id).Msg("cache entry corrupt")
		_ = c.store.Delete(ctx, c.key(id))
		metrics.CacheRequests.WithLabelValues(c.entity, "error").Inc()
		return nil, false
	}
	metrics.CacheRequests.WithLabelValues(c.entity, "hit").Inc()
	return &v, true
}

// Put stores v under id.
func (c *Entities[T]) Put(ctx context.Context, id int64, v *T) {
	if c == nil || c.store == nil || v == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		c.logger.Warn().Err(err).Str("entity", c.entity).Msg("cache encode failed")
		return
	}
	if err := c.store.Set(ctx, c.key(id), raw, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("entity", c.entity).Int64("id", id).Msg("cache set failed")
	}
}

// Evict drops id from the cache.
func (c *Entities[T]) Evict(ctx context.Context, id int64) {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Delete(ctx, c.key(id)); err != nil {
		c.logger.Warn().Err(err).Str("entity", c.entity).Int64("id", id).Msg("cache evict failed")
	}
}
