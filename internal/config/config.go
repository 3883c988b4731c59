// Package config handles configuration loading and management for agentpatterns.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// DefaultModel is the remote model used when no override is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Config holds all configuration for agentpatterns.
type Config struct {
	Anthropic  AnthropicConfig  `mapstructure:"anthropic"`
	Generation GenerationConfig `mapstructure:"generation"`
	Trace      TraceConfig      `mapstructure:"trace"`
	Patterns   PatternsConfig   `mapstructure:"patterns"`
	Log        LogConfig        `mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// GenerationConfig selects and tunes the generation backend.
type GenerationConfig struct {
	// UseRemote switches from the rule-based stub to the remote API.
	UseRemote bool `mapstructure:"use_remote"`
	// Model overrides the remote model.
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	// Bedrock routes remote calls through AWS Bedrock instead of the direct API.
	Bedrock    bool   `mapstructure:"bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
	// BreakerFailures is how many consecutive remote failures open the breaker.
	BreakerFailures int `mapstructure:"breaker_failures"`
	// BreakerCooldown is how long the breaker stays open.
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// TraceConfig controls where run traces are written.
type TraceConfig struct {
	Dir     string `mapstructure:"dir"`
	Backend string `mapstructure:"backend"`
}

// PatternsConfig holds per-pattern defaults.
type PatternsConfig struct {
	MaxIterations  int    `mapstructure:"max_iterations"`
	MemorySize     int    `mapstructure:"memory_size"`
	VoteAttempts   int    `mapstructure:"vote_attempts"`
	TargetLanguage string `mapstructure:"target_language"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Trace backends.
const (
	TraceBackendJSONL  = "jsonl"
	TraceBackendSQLite = "sqlite"
)

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY, AGENTPATTERNS_*)
// 2. Project config (.agentpatterns.yaml in current directory or parent)
// 3. User config (~/.config/agentpatterns/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(getUserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	bindEnv(v)

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(userConfigDir, "config.yaml"))

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("generation.use_remote", cfg.Generation.UseRemote)
	v.Set("generation.model", cfg.Generation.Model)
	v.Set("generation.max_tokens", cfg.Generation.MaxTokens)
	v.Set("generation.temperature", cfg.Generation.Temperature)
	v.Set("generation.bedrock", cfg.Generation.Bedrock)
	v.Set("generation.aws_region", cfg.Generation.AWSRegion)
	v.Set("generation.aws_profile", cfg.Generation.AWSProfile)
	v.Set("generation.breaker_failures", cfg.Generation.BreakerFailures)
	v.Set("generation.breaker_cooldown", cfg.Generation.BreakerCooldown.String())
	v.Set("trace.dir", cfg.Trace.Dir)
	v.Set("trace.backend", cfg.Trace.Backend)
	v.Set("patterns.max_iterations", cfg.Patterns.MaxIterations)
	v.Set("patterns.memory_size", cfg.Patterns.MemorySize)
	v.Set("patterns.vote_attempts", cfg.Patterns.VoteAttempts)
	v.Set("patterns.target_language", cfg.Patterns.TargetLanguage)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)

	return v.WriteConfig()
}

// Validate checks that the configuration can build every component.
func (c *Config) Validate() error {
	if c.Generation.UseRemote && !c.Generation.Bedrock {
		if _, err := GetAPIKey(c); err != nil {
			return models.NewValidationError("anthropic.api_key",
				"ANTHROPIC_API_KEY must be set when generation.use_remote is true")
		}
	}
	if c.Patterns.MaxIterations <= 0 {
		return models.NewValidationError("patterns.max_iterations", "must be positive")
	}
	if c.Patterns.MemorySize <= 0 {
		return models.NewValidationError("patterns.memory_size", "must be positive")
	}
	if c.Patterns.VoteAttempts <= 0 {
		return models.NewValidationError("patterns.vote_attempts", "must be positive")
	}
	switch c.Trace.Backend {
	case TraceBackendJSONL, TraceBackendSQLite:
	default:
		return models.NewValidationError("trace.backend", fmt.Sprintf("unknown backend %q", c.Trace.Backend))
	}
	return nil
}

// RemoteModel returns the configured model, falling back to DefaultModel.
func (c *Config) RemoteModel() string {
	if c.Generation.Model == "" {
		return DefaultModel
	}
	return c.Generation.Model
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")

	v.SetDefault("generation.use_remote", false)
	v.SetDefault("generation.model", DefaultModel)
	v.SetDefault("generation.max_tokens", 1024)
	v.SetDefault("generation.temperature", 0.2)
	v.SetDefault("generation.bedrock", false)
	v.SetDefault("generation.aws_region", "")
	v.SetDefault("generation.aws_profile", "")
	v.SetDefault("generation.breaker_failures", 3)
	v.SetDefault("generation.breaker_cooldown", "30s")

	v.SetDefault("trace.dir", "traces")
	v.SetDefault("trace.backend", TraceBackendJSONL)

	v.SetDefault("patterns.max_iterations", 5)
	v.SetDefault("patterns.memory_size", 4)
	v.SetDefault("patterns.vote_attempts", 3)
	v.SetDefault("patterns.target_language", "es")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file", "")
}

func bindEnv(v *viper.Viper) {
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")
	v.BindEnv("generation.use_remote", "AGENTPATTERNS_USE_REMOTE")
	v.BindEnv("generation.model", "AGENTPATTERNS_MODEL")
	v.BindEnv("trace.dir", "AGENTPATTERNS_TRACE_DIR")
	v.BindEnv("log.level", "AGENTPATTERNS_LOG_LEVEL")
}

// getUserConfigDir returns the XDG config directory for agentpatterns.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "agentpatterns")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "agentpatterns")
	}
	return filepath.Join(home, ".config", "agentpatterns")
}

// findProjectConfig searches for .agentpatterns.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".agentpatterns.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Model:           DefaultModel,
			MaxTokens:       1024,
			Temperature:     0.2,
			BreakerFailures: 3,
			BreakerCooldown: 30 * time.Second,
		},
		Trace: TraceConfig{
			Dir:     "traces",
			Backend: TraceBackendJSONL,
		},
		Patterns: PatternsConfig{
			MaxIterations:  5,
			MemorySize:     4,
			VoteAttempts:   3,
			TargetLanguage: "es",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
