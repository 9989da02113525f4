// Package cache implements the Redis response cache. The adapter is
// fail-open: when Redis is down or unconfigured every read is a miss and
// every write is a no-op, so the pipeline never blocks on the cache.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/getlens/lens/pkg/config"
	"github.com/getlens/lens/pkg/logger"
)

// Key namespaces. Every key carries one of these prefixes so operators
// can scan and expire classes of entries independently.
const (
	NamespaceQuery    = "query:"
	NamespaceIntent   = "intent:"
	NamespaceInsights = "insights:"
	NamespaceData     = "data:"
)

// Recorder receives per-operation telemetry, e.g. ("get", "hit").
// Implementations must be safe for concurrent use.
type Recorder interface {
	RecordCacheOp(ctx context.Context, op, outcome string)
}

// Cache wraps a Redis client with per-operation timeouts and hit/miss
// accounting. A nil client is the disabled mode.
type Cache struct {
	client   *redis.Client
	timeout  time.Duration
	ttl      TTLs
	stats    stats
	recorder Recorder
	logger   *slog.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithRecorder attaches a telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Cache) {
		c.recorder = r
	}
}

// TTLs holds the per-namespace expirations.
type TTLs struct {
	Default  time.Duration
	Query    time.Duration
	Intent   time.Duration
	Insights time.Duration
	Data     time.Duration
}

// New connects to Redis per the configuration. An empty URL yields a
// disabled cache rather than an error.
func New(cfg config.CacheConfig, opts ...Option) (*Cache, error) {
	c := &Cache{
		timeout: time.Duration(cfg.TimeoutMs) * time.Millisecond,
		ttl: TTLs{
			Default:  time.Duration(cfg.DefaultTTLSeconds) * time.Second,
			Query:    time.Duration(cfg.QueryTTLSeconds) * time.Second,
			Intent:   time.Duration(cfg.IntentTTLSeconds) * time.Second,
			Insights: time.Duration(cfg.InsightTTLSeconds) * time.Second,
			Data:     time.Duration(cfg.DataTTLSeconds) * time.Second,
		},
		logger: logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if !cfg.Enabled() {
		c.logger.Info("cache disabled, all lookups will miss")
		return c, nil
	}

	redisOpts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	redisOpts.PoolSize = cfg.PoolSize

	c.client = redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.client.Ping(ctx).Err(); err != nil {
		c.logger.Warn("cache unreachable at startup, continuing degraded", "error", err)
	}

	return c, nil
}

// NewWithClient wraps an existing client. Used by tests.
func NewWithClient(client *redis.Client, ttl TTLs, timeout time.Duration, opts ...Option) *Cache {
	c := &Cache{
		client:  client,
		timeout: timeout,
		ttl:     ttl,
		logger:  logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Cache) record(ctx context.Context, op, outcome string) {
	if c.recorder != nil {
		c.recorder.RecordCacheOp(ctx, op, outcome)
	}
}

// Enabled reports whether a Redis client is configured.
func (c *Cache) Enabled() bool {
	return c.client != nil
}

// TTLFor returns the expiration for a namespaced key.
func (c *Cache) TTLFor(key string) time.Duration {
	switch {
	case hasPrefix(key, NamespaceQuery):
		return c.ttl.Query
	case hasPrefix(key, NamespaceIntent):
		return c.ttl.Intent
	case hasPrefix(key, NamespaceInsights):
		return c.ttl.Insights
	case hasPrefix(key, NamespaceData):
		return c.ttl.Data
	default:
		return c.ttl.Default
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// Get returns the value for key, or ("", false) on a miss. Errors count
// as misses and are logged, never surfaced.
func (c *Cache) Get(ctx context.Context, key string) (string, bool) {
	if c.client == nil {
		c.stats.misses.Add(1)
		c.record(ctx, "get", "miss")
		return "", false
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	val, err := c.client.Get(opCtx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.stats.misses.Add(1)
			c.record(ctx, "get", "miss")
		} else {
			c.stats.errors.Add(1)
			c.stats.misses.Add(1)
			c.record(ctx, "get", "error")
			c.logger.Warn("cache get failed", "key", key, "error", err)
		}
		return "", false
	}

	c.stats.hits.Add(1)
	c.record(ctx, "get", "hit")
	return val, true
}

// Set stores a value with the namespace TTL for key. A zero ttl argument
// uses the namespace default, a negative one stores without expiry.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if c.client == nil {
		return
	}

	if ttl == 0 {
		ttl = c.TTLFor(key)
	}
	if ttl < 0 {
		ttl = 0
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Set(opCtx, key, value, ttl).Err(); err != nil {
		c.stats.errors.Add(1)
		c.record(ctx, "set", "error")
		c.logger.Warn("cache set failed", "key", key, "error", err)
		return
	}

	c.stats.sets.Add(1)
	c.record(ctx, "set", "ok")
}

// Delete removes a key.
func (c *Cache) Delete(ctx context.Context, key string) {
	if c.client == nil {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Del(opCtx, key).Err(); err != nil {
		c.stats.errors.Add(1)
		c.record(ctx, "delete", "error")
		c.logger.Warn("cache delete failed", "key", key, "error", err)
		return
	}

	c.stats.deletes.Add(1)
	c.record(ctx, "delete", "ok")
}

// Exists reports whether a key is present. Errors read as absent.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	if c.client == nil {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		c.stats.errors.Add(1)
		c.logger.Warn("cache exists failed", "key", key, "error", err)
		return false
	}
	return n > 0
}

// Close releases the underlying client.
func (c *Cache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
