package config

import "fmt"

// WarehouseConfig configures read-only access to the analytical store.
// An empty URL disables the adapter; every read then returns empty rows.
type WarehouseConfig struct {
	// URL is the warehouse DSN (postgres://...). Defaults to WAREHOUSE_URL.
	URL string `yaml:"url,omitempty"`

	// MaxConns bounds the connection pool.
	MaxConns int `yaml:"max_conns,omitempty"`

	// TimeoutSeconds caps one read.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// Enabled reports whether a warehouse endpoint is configured.
func (c *WarehouseConfig) Enabled() bool {
	return c.URL != ""
}

// SetDefaults applies default values and environment fallbacks.
func (c *WarehouseConfig) SetDefaults() {
	if c.URL == "" {
		c.URL = envOr("WAREHOUSE_URL", "")
	}
	if c.MaxConns == 0 {
		c.MaxConns = 10
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks the warehouse configuration.
func (c *WarehouseConfig) Validate() error {
	if c.MaxConns < 1 {
		return fmt.Errorf("max_conns must be at least 1, got %d", c.MaxConns)
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", c.TimeoutSeconds)
	}
	return nil
}
