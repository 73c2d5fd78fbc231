// Package config holds the read-only process configuration. It is constructed
// once at startup and passed by reference to every component that needs it;
// nothing in the pipeline performs filesystem-relative config lookups at call
// time.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/ekaya-inc/profile-engine/pkg/models"
)

// Config holds all configuration for the profiling engine.
// Configuration can come from YAML file (config.yaml) or environment
// variables; environment variables override YAML values. Secrets (API keys)
// must only come from environment variables.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // Set at load time, not from config

	// Sources registered at startup (endpoints or directories).
	Sources []string `yaml:"sources" env:"SOURCES" env-separator:","`

	LLM        LLMConfig        `yaml:"llm"`
	Truncation TruncationConfig `yaml:"truncation"`
	Workspace  WorkspaceConfig  `yaml:"workspace"`
}

// LLMConfig holds gateway settings for profile enrichment calls.
type LLMConfig struct {
	// Provider selects the gateway implementation: "openai" or "anthropic".
	Provider string `yaml:"provider" env:"LLM_PROVIDER" env-default:"openai"`

	Endpoint string `yaml:"endpoint" env:"LLM_ENDPOINT" env-default:""`
	APIKey   string `yaml:"-" env:"LLM_API_KEY"` // Secret - not in YAML

	// Model is the base model used for structured sources; VisionModel is
	// used for image profiling.
	Model       string `yaml:"model" env:"LLM_MODEL" env-default:""`
	VisionModel string `yaml:"vision_model" env:"LLM_VISION_MODEL" env-default:""`

	// Retry policy for gateway calls: bounded attempts, fixed delay.
	MaxAttempts     int `yaml:"max_attempts" env:"LLM_MAX_ATTEMPTS" env-default:"3"`
	RetryDelaySecs  int `yaml:"retry_delay_seconds" env:"LLM_RETRY_DELAY_SECONDS" env-default:"5"`
	TimeoutSeconds  int `yaml:"timeout_seconds" env:"LLM_TIMEOUT_SECONDS" env-default:"120"`
}

// RetryDelay returns the configured fixed delay between attempts.
func (c *LLMConfig) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelaySecs) * time.Second
}

// Timeout returns the per-call timeout for gateway requests.
func (c *LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IsAvailable returns true if a gateway is configured. Without one, sources
// are still prepared but profiling is skipped.
func (c *LLMConfig) IsAvailable() bool {
	return c.Endpoint != "" && c.Model != ""
}

// TruncationConfig holds response budget settings.
type TruncationConfig struct {
	// Budget is the base character budget applied to tool responses.
	Budget int `yaml:"budget" env:"TRUNCATION_BUDGET" env-default:"8194"`
	// LongBudget is the relaxed budget (~10x base) for long-form responses.
	LongBudget int `yaml:"long_budget" env:"TRUNCATION_LONG_BUDGET" env-default:"81940"`
	// AutoSave archives complete responses even when nothing was truncated.
	AutoSave bool `yaml:"auto_save" env:"TRUNCATION_AUTO_SAVE" env-default:"false"`
}

// WorkspaceConfig holds staging and archival locations.
type WorkspaceConfig struct {
	// Dir is where direct sources are staged before profiling.
	Dir string `yaml:"dir" env:"WORKSPACE_DIR" env-default:"workspace"`
	// ArchiveDir receives untruncated side-channel copies of responses.
	ArchiveDir string `yaml:"archive_dir" env:"WORKSPACE_ARCHIVE_DIR" env-default:"workspace/tmp"`
	// LinkFiles symlinks local files into the workspace instead of copying.
	LinkFiles bool `yaml:"link_files" env:"WORKSPACE_LINK_FILES" env-default:"false"`
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is not an error; configuration then comes
// entirely from the environment.
func Load(version string) (*Config, error) {
	cfg := &Config{Version: version}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.LLM.Endpoint != "" && c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required when llm.endpoint is set")
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be at least 1")
	}
	if c.Truncation.Budget <= 0 || c.Truncation.LongBudget <= 0 {
		return fmt.Errorf("truncation budgets must be positive")
	}
	return nil
}

// SourceDefaults returns the built-in per-source-type default configuration.
// Values may contain ${endpoint} placeholders that the manager substitutes
// when a source is registered. The map is rebuilt on every call so callers
// can mutate their copy safely.
func SourceDefaults() map[models.SourceType]map[string]any {
	return map[models.SourceType]map[string]any{
		models.SourceTypeRelationalDB: {
			"mcp_server": map[string]any{
				"dbhub": map[string]any{
					"command": "npx",
					"args":    []any{"-y", "@bytebase/dbhub", "--dsn", "${endpoint}"},
				},
			},
		},
	}
}
