package config

import "fmt"

// LLMConfig configures the outbound LLM channel. An empty APIKey disables
// the provider entirely and forces the deterministic fallback path.
type LLMConfig struct {
	// Model name (e.g. "gpt-4o-mini").
	Model string `yaml:"model,omitempty"`

	// APIKey for authentication. Supports ${VAR} expansion; defaults to
	// LLM_API_KEY.
	APIKey string `yaml:"api_key,omitempty"`

	// BaseURL overrides the default OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url,omitempty"`

	// CostPer1KTokens is the ledger rate in dollars.
	CostPer1KTokens float64 `yaml:"cost_per_1k_tokens,omitempty"`

	// MinIntervalMs is the minimum spacing between outbound requests.
	MinIntervalMs int `yaml:"min_interval_ms,omitempty"`

	// TimeoutSeconds caps one call including any rate-limit wait.
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`

	// MaxRetries for transient HTTP failures.
	MaxRetries int `yaml:"max_retries,omitempty"`

	// IntentTemperature and InsightTemperature tune the two request kinds.
	IntentTemperature  float64 `yaml:"intent_temperature,omitempty"`
	InsightTemperature float64 `yaml:"insight_temperature,omitempty"`

	// IntentMaxTokens and InsightMaxTokens cap completions.
	IntentMaxTokens  int `yaml:"intent_max_tokens,omitempty"`
	InsightMaxTokens int `yaml:"insight_max_tokens,omitempty"`
}

// Enabled reports whether an API key is configured.
func (c *LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

// SetDefaults applies default values and environment fallbacks.
func (c *LLMConfig) SetDefaults() {
	if c.Model == "" {
		c.Model = envOr("LLM_MODEL", "gpt-4o-mini")
	}
	if c.APIKey == "" {
		c.APIKey = envOr("LLM_API_KEY", "")
	}
	if c.BaseURL == "" {
		c.BaseURL = envOr("LLM_BASE_URL", "https://api.openai.com/v1")
	}
	if c.CostPer1KTokens == 0 {
		c.CostPer1KTokens = envFloat("LLM_COST_PER_1K_TOKENS", 0.002)
	}
	if c.MinIntervalMs == 0 {
		c.MinIntervalMs = envInt("LLM_MIN_INTERVAL_MS", 100)
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = 30
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.IntentTemperature == 0 {
		c.IntentTemperature = 0.2
	}
	if c.InsightTemperature == 0 {
		c.InsightTemperature = 0.4
	}
	if c.IntentMaxTokens == 0 {
		c.IntentMaxTokens = 300
	}
	if c.InsightMaxTokens == 0 {
		c.InsightMaxTokens = 1024
	}
}

// Validate checks the LLM configuration.
func (c *LLMConfig) Validate() error {
	if c.IntentTemperature < 0 || c.IntentTemperature > 0.2 {
		return fmt.Errorf("intent_temperature must be in [0, 0.2], got %v", c.IntentTemperature)
	}
	if c.InsightTemperature < 0 || c.InsightTemperature > 0.5 {
		return fmt.Errorf("insight_temperature must be in [0, 0.5], got %v", c.InsightTemperature)
	}
	if c.IntentMaxTokens > 300 {
		return fmt.Errorf("intent_max_tokens must be at most 300, got %d", c.IntentMaxTokens)
	}
	if c.InsightMaxTokens > 1024 {
		return fmt.Errorf("insight_max_tokens must be at most 1024, got %d", c.InsightMaxTokens)
	}
	if c.MinIntervalMs < 0 {
		return fmt.Errorf("min_interval_ms must be non-negative, got %d", c.MinIntervalMs)
	}
	if c.CostPer1KTokens < 0 {
		return fmt.Errorf("cost_per_1k_tokens must be non-negative, got %v", c.CostPer1KTokens)
	}
	return nil
}
