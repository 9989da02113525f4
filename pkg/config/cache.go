package config

import "fmt"

// CacheConfig configures the Redis cache adapter. An empty URL disables
// caching; every lookup then behaves as a miss.
type CacheConfig struct {
	// URL is the Redis endpoint (redis://host:port/db). Defaults to
	// CACHE_URL.
	URL string `yaml:"url,omitempty"`

	// DefaultTTLSeconds applies when no namespace TTL is set.
	DefaultTTLSeconds int `yaml:"default_ttl_seconds,omitempty"`

	// QueryTTLSeconds, InsightTTLSeconds, IntentTTLSeconds and
	// DataTTLSeconds override per-namespace retention.
	QueryTTLSeconds   int `yaml:"query_ttl_seconds,omitempty"`
	InsightTTLSeconds int `yaml:"insight_ttl_seconds,omitempty"`
	IntentTTLSeconds  int `yaml:"intent_ttl_seconds,omitempty"`
	DataTTLSeconds    int `yaml:"data_ttl_seconds,omitempty"`

	// TimeoutMs caps one cache operation.
	TimeoutMs int `yaml:"timeout_ms,omitempty"`

	// PoolSize bounds concurrent connections.
	PoolSize int `yaml:"pool_size,omitempty"`
}

// Enabled reports whether a cache endpoint is configured.
func (c *CacheConfig) Enabled() bool {
	return c.URL != ""
}

// SetDefaults applies default values and environment fallbacks.
func (c *CacheConfig) SetDefaults() {
	if c.URL == "" {
		c.URL = envOr("CACHE_URL", "")
	}
	if c.DefaultTTLSeconds == 0 {
		c.DefaultTTLSeconds = envInt("CACHE_DEFAULT_TTL_S", 3600)
	}
	if c.QueryTTLSeconds == 0 {
		c.QueryTTLSeconds = 1800
	}
	if c.InsightTTLSeconds == 0 {
		c.InsightTTLSeconds = 7200
	}
	if c.IntentTTLSeconds == 0 {
		c.IntentTTLSeconds = 7200
	}
	if c.DataTTLSeconds == 0 {
		c.DataTTLSeconds = 900
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = 100
	}
	if c.PoolSize == 0 {
		c.PoolSize = 10
	}
}

// Validate checks the cache configuration.
func (c *CacheConfig) Validate() error {
	for name, v := range map[string]int{
		"default_ttl_seconds": c.DefaultTTLSeconds,
		"query_ttl_seconds":   c.QueryTTLSeconds,
		"insight_ttl_seconds": c.InsightTTLSeconds,
		"intent_ttl_seconds":  c.IntentTTLSeconds,
		"data_ttl_seconds":    c.DataTTLSeconds,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative, got %d", name, v)
		}
	}
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be at least 1, got %d", c.PoolSize)
	}
	return nil
}
