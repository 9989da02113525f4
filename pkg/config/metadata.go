package config

import "fmt"

// MetadataConfig configures the transactional store that owns questions
// and insights. An empty URL disables persistence; questions then live
// only in memory for the duration of a request.
type MetadataConfig struct {
	// URL is the Postgres DSN. Defaults to METADATA_DB_URL.
	URL string `yaml:"url,omitempty"`

	// MaxConns and MaxIdle bound the connection pool.
	MaxConns int `yaml:"max_conns,omitempty"`
	MaxIdle  int `yaml:"max_idle,omitempty"`

	// TimeoutSeconds caps one statement.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
}

// Enabled reports whether a metadata endpoint is configured.
func (c *MetadataConfig) Enabled() bool {
	return c.URL != ""
}

// SetDefaults applies default values and environment fallbacks.
func (c *MetadataConfig) SetDefaults() {
	if c.URL == "" {
		c.URL = envOr("METADATA_DB_URL", "")
	}
	if c.MaxConns == 0 {
		c.MaxConns = 5
	}
	if c.MaxIdle == 0 {
		c.MaxIdle = 2
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 2
	}
}

// Validate checks the metadata configuration.
func (c *MetadataConfig) Validate() error {
	if c.MaxConns < 1 {
		return fmt.Errorf("max_conns must be at least 1, got %d", c.MaxConns)
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout_seconds must be at least 1, got %d", c.TimeoutSeconds)
	}
	return nil
}
