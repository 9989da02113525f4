package config

import "fmt"

// PipelineConfig bounds one end-to-end process call.
type PipelineConfig struct {
	// RequestTimeoutSeconds caps the whole pipeline run. Defaults to
	// REQUEST_TIMEOUT_S.
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds,omitempty"`

	// SalesWindowDays is the lookback for the sales context.
	SalesWindowDays int `yaml:"sales_window_days,omitempty"`

	// CustomerSampleSize is the profile count for the customer context.
	CustomerSampleSize int `yaml:"customer_sample_size,omitempty"`
}

// SetDefaults applies default values and environment fallbacks.
func (c *PipelineConfig) SetDefaults() {
	if c.RequestTimeoutSeconds == 0 {
		c.RequestTimeoutSeconds = envInt("REQUEST_TIMEOUT_S", 60)
	}
	if c.SalesWindowDays == 0 {
		c.SalesWindowDays = 30
	}
	if c.CustomerSampleSize == 0 {
		c.CustomerSampleSize = 100
	}
}

// Validate checks the pipeline configuration.
func (c *PipelineConfig) Validate() error {
	if c.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("request_timeout_seconds must be at least 1, got %d", c.RequestTimeoutSeconds)
	}
	if c.SalesWindowDays < 1 || c.SalesWindowDays > 365 {
		return fmt.Errorf("sales_window_days must be in [1, 365], got %d", c.SalesWindowDays)
	}
	if c.CustomerSampleSize < 1 || c.CustomerSampleSize > 10000 {
		return fmt.Errorf("customer_sample_size must be in [1, 10000], got %d", c.CustomerSampleSize)
	}
	return nil
}
