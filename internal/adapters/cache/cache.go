// Package cache publishes computed rate tables to Redis so downstream
// consumers can read the latest tables without recomputing them.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/bookings/internal/domain/ranking"
	"github.com/okian/bookings/pkg/metrics"
)

// defaultTTL bounds the lifetime of a published table.
const defaultTTL = 2 * time.Hour

// Option applies a configuration option to the TableCache.
type Option func(*TableCache)

// WithTTL sets the expiry on published tables.
func WithTTL(ttl time.Duration) Option {
	return func(c *TableCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// TableCache stores ranked rate tables in Redis, JSON-encoded with a TTL.
type TableCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, addr string, opts ...Option) (*TableCache, error) {
	c := &TableCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    defaultTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// Key builds the Redis key for a statistic's table. An empty season yields
// the unwindowed key, e.g. "rates:cards:all"; otherwise the window edge is
// encoded, e.g. "rates:cards:2324:10".
func Key(stat, season string, gameweek int) string {
	if season == "" {
		return "rates:" + stat + ":all"
	}
	return "rates:" + stat + ":" + season + ":" + strconv.Itoa(gameweek)
}

// Publish stores a ranked table under its statistic key.
func (c *TableCache) Publish(ctx context.Context, stat, season string, gameweek int, rows []ranking.Row) error {
	b, err := json.Marshal(rows)
	if err != nil {
		metrics.RecordCachePublishError()
		return fmt.Errorf("marshal table: %w", err)
	}
	if err := c.client.Set(ctx, Key(stat, season, gameweek), b, c.ttl).Err(); err != nil {
		metrics.RecordCachePublishError()
		return fmt.Errorf("publish table: %w", err)
	}
	return nil
}

// Get reads a previously published table. The daemon only publishes;
// readers outside this process use Get to serve tables without
// recomputing them. A missing key reports ErrMiss.
func (c *TableCache) Get(ctx context.Context, stat, season string, gameweek int) ([]ranking.Row, error) {
	b, err := c.client.Get(ctx, Key(stat, season, gameweek)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheMiss()
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("get table: %w", err)
	}
	var rows []ranking.Row
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, fmt.Errorf("unmarshal table: %w", err)
	}
	metrics.RecordCacheHit()
	return rows, nil
}

// Ping reports whether Redis is reachable.
func (c *TableCache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (c *TableCache) Close() error {
	if err := c.client.Close(); err != nil {
		return fmt.Errorf("close redis: %w", err)
	}
	return nil
}
