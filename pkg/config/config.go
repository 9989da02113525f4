// Package config loads and validates service configuration from an optional
// YAML file plus environment variables. Every section follows the same
// pattern: yaml-tagged struct, SetDefaults, Validate.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `yaml:"server,omitempty"`
	LLM       LLMConfig       `yaml:"llm,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Warehouse WarehouseConfig `yaml:"warehouse,omitempty"`
	Metadata  MetadataConfig  `yaml:"metadata,omitempty"`
	Pipeline  PipelineConfig  `yaml:"pipeline,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = envOr("LOG_LEVEL", "info")
	}
	if c.Format == "" {
		c.Format = "simple"
	}
}

// Load reads configuration from the given YAML path (optional, "" skips the
// file), expands ${VAR} references, applies environment fallbacks and
// defaults, and validates the result. A .env file in the working directory
// is honored if present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		expanded := expandEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults applies defaults and environment fallbacks to all sections.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.LLM.SetDefaults()
	c.Cache.SetDefaults()
	c.Warehouse.SetDefaults()
	c.Metadata.SetDefaults()
	c.Pipeline.SetDefaults()
	c.Logging.SetDefaults()
}

// Validate checks all sections.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("llm: %w", err)
	}
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Warehouse.Validate(); err != nil {
		return fmt.Errorf("warehouse: %w", err)
	}
	if err := c.Metadata.Validate(); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	return nil
}
