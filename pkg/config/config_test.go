package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/profile-engine/pkg/models"
)

func TestLoad_Defaults(t *testing.T) {
	// No config.yaml in the test working directory, so everything comes from
	// env defaults.
	cfg, err := Load("test")
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.Version)
	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 8194, cfg.Truncation.Budget)
	assert.Equal(t, 81940, cfg.Truncation.LongBudget)
	assert.False(t, cfg.Truncation.AutoSave)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.LLM.RetryDelay())
	assert.False(t, cfg.LLM.IsAvailable())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LLM_ENDPOINT", "http://localhost:8000/v1")
	t.Setenv("LLM_MODEL", "qwen3-32b")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("TRUNCATION_AUTO_SAVE", "true")

	cfg, err := Load("test")
	require.NoError(t, err)

	assert.True(t, cfg.LLM.IsAvailable())
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.True(t, cfg.Truncation.AutoSave)
}

func TestLoad_ModelRequiredWithEndpoint(t *testing.T) {
	t.Setenv("LLM_ENDPOINT", "http://localhost:8000/v1")
	t.Setenv("LLM_MODEL", "")

	_, err := Load("test")
	assert.Error(t, err)
}

func TestSourceDefaults_RelationalDB(t *testing.T) {
	defaults := SourceDefaults()

	dbDefaults, ok := defaults[models.SourceTypeRelationalDB]
	require.True(t, ok, "relational_db must have a default config")

	server, ok := dbDefaults["mcp_server"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, server, 1, "exactly one default MCP server")

	// Callers may mutate their copy without affecting later calls.
	dbDefaults["mcp_server"] = nil
	again := SourceDefaults()
	assert.NotNil(t, again[models.SourceTypeRelationalDB]["mcp_server"])
}
