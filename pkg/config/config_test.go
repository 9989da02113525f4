package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "")
	t.Setenv("CACHE_URL", "")
	t.Setenv("WAREHOUSE_URL", "")
	t.Setenv("METADATA_DB_URL", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, "https://api.openai.com/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 0.002, cfg.LLM.CostPer1KTokens)
	assert.Equal(t, 0.2, cfg.LLM.IntentTemperature)
	assert.Equal(t, 300, cfg.LLM.IntentMaxTokens)
	assert.Equal(t, 1024, cfg.LLM.InsightMaxTokens)
	assert.False(t, cfg.LLM.Enabled())
	assert.False(t, cfg.Cache.Enabled())
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadYAMLFile(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "sk-test")
	t.Setenv("UNSET_FOR_TEST", "")

	path := filepath.Join(t.TempDir(), "lens.yaml")
	data := `
server:
  port: 9000
llm:
  model: gpt-4o
  api_key: ${TEST_LLM_KEY}
cache:
  url: ${UNSET_FOR_TEST:-redis://localhost:6379/0}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.True(t, cfg.LLM.Enabled())
	assert.Equal(t, "redis://localhost:6379/0", cfg.Cache.URL)
	assert.True(t, cfg.Cache.Enabled())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LENS_TEST_VAR", "value")
	t.Setenv("LENS_EMPTY_VAR", "")

	assert.Equal(t, "value", expandEnvVars("${LENS_TEST_VAR}"))
	assert.Equal(t, "", expandEnvVars("${LENS_EMPTY_VAR}"))
	assert.Equal(t, "value", expandEnvVars("${LENS_TEST_VAR:-fallback}"))
	assert.Equal(t, "fallback", expandEnvVars("${LENS_EMPTY_VAR:-fallback}"))
	assert.Equal(t, "plain", expandEnvVars("plain"))
}

func TestLLMValidate(t *testing.T) {
	cfg := LLMConfig{}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	cfg.IntentTemperature = 0.5
	assert.Error(t, cfg.Validate())

	cfg.SetDefaults()
	cfg.IntentTemperature = 0.1
	cfg.InsightMaxTokens = 4096
	assert.Error(t, cfg.Validate())
}

func TestServerValidate(t *testing.T) {
	cfg := ServerConfig{}
	cfg.SetDefaults()
	require.NoError(t, cfg.Validate())

	cfg.Port = 70000
	assert.Error(t, cfg.Validate())
}

func TestValidateWrapsSectionName(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()
	cfg.LLM.MinIntervalMs = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm:")
}
