package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/profile-engine/pkg/apperrors"
)

func validConfig() map[string]any {
	return map[string]any{
		"mcp_server": map[string]any{
			"dbhub": map[string]any{
				"command": "npx",
				"args":    []any{"-y", "@bytebase/dbhub", "--dsn", "postgres://localhost/db"},
			},
		},
	}
}

func TestSpecFromConfig(t *testing.T) {
	spec, err := SpecFromConfig(validConfig())
	require.NoError(t, err)

	assert.Equal(t, "dbhub", spec.Name)
	assert.Equal(t, "npx", spec.Command)
	assert.Equal(t, []string{"-y", "@bytebase/dbhub", "--dsn", "postgres://localhost/db"}, spec.Args)
}

func TestSpecFromConfig_MissingSection(t *testing.T) {
	_, err := SpecFromConfig(map[string]any{})
	assert.ErrorIs(t, err, apperrors.ErrInvalidToolConfig)
}

func TestSpecFromConfig_MultipleServers(t *testing.T) {
	cfg := map[string]any{
		"mcp_server": map[string]any{
			"one": map[string]any{"command": "a", "args": []any{"x"}},
			"two": map[string]any{"command": "b", "args": []any{"y"}},
		},
	}
	_, err := SpecFromConfig(cfg)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToolConfig)
}

func TestSpecFromConfig_MissingCommand(t *testing.T) {
	cfg := validConfig()
	cfg["mcp_server"].(map[string]any)["dbhub"].(map[string]any)["command"] = ""
	_, err := SpecFromConfig(cfg)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToolConfig)
}

func TestSpecFromConfig_MissingArgs(t *testing.T) {
	cfg := validConfig()
	delete(cfg["mcp_server"].(map[string]any)["dbhub"].(map[string]any), "args")
	_, err := SpecFromConfig(cfg)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToolConfig)
}

func TestSpecFromConfig_EnvRendered(t *testing.T) {
	cfg := validConfig()
	cfg["mcp_server"].(map[string]any)["dbhub"].(map[string]any)["env"] = map[string]any{
		"LOG_LEVEL": "debug",
	}
	spec, err := SpecFromConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, spec.Env, "LOG_LEVEL=debug")
}
