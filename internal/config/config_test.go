package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Generation.UseRemote {
		t.Error("expected stub generation by default")
	}
	if cfg.Generation.Model != DefaultModel {
		t.Errorf("expected default model %q, got %q", DefaultModel, cfg.Generation.Model)
	}
	if cfg.Generation.BreakerCooldown != 30*time.Second {
		t.Errorf("expected breaker cooldown 30s, got %v", cfg.Generation.BreakerCooldown)
	}
	if cfg.Trace.Backend != TraceBackendJSONL {
		t.Errorf("expected jsonl trace backend, got %q", cfg.Trace.Backend)
	}
	if cfg.Patterns.MaxIterations != 5 {
		t.Errorf("expected max iterations 5, got %d", cfg.Patterns.MaxIterations)
	}
	if cfg.Patterns.MemorySize != 4 {
		t.Errorf("expected memory size 4, got %d", cfg.Patterns.MemorySize)
	}
	if cfg.Patterns.VoteAttempts != 3 {
		t.Errorf("expected vote attempts 3, got %d", cfg.Patterns.VoteAttempts)
	}
	if cfg.Patterns.TargetLanguage != "es" {
		t.Errorf("expected target language es, got %q", cfg.Patterns.TargetLanguage)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestLoadFromPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
anthropic:
  api_key: test-key
generation:
  use_remote: true
  model: claude-3-5-haiku-20241022
  breaker_cooldown: 2m
trace:
  dir: /tmp/traces
  backend: sqlite
patterns:
  max_iterations: 2
  vote_attempts: 5
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Anthropic.APIKey != "test-key" {
		t.Errorf("expected api_key 'test-key', got %q", cfg.Anthropic.APIKey)
	}
	if !cfg.Generation.UseRemote {
		t.Error("expected use_remote to be true")
	}
	if cfg.RemoteModel() != "claude-3-5-haiku-20241022" {
		t.Errorf("expected model override, got %q", cfg.RemoteModel())
	}
	if cfg.Generation.BreakerCooldown != 2*time.Minute {
		t.Errorf("expected breaker cooldown 2m, got %v", cfg.Generation.BreakerCooldown)
	}
	if cfg.Trace.Backend != TraceBackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Trace.Backend)
	}
	if cfg.Patterns.MaxIterations != 2 {
		t.Errorf("expected max iterations 2, got %d", cfg.Patterns.MaxIterations)
	}
	// Unset keys keep their defaults.
	if cfg.Patterns.MemorySize != 4 {
		t.Errorf("expected default memory size 4, got %d", cfg.Patterns.MemorySize)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-environment")
	t.Setenv("AGENTPATTERNS_USE_REMOTE", "true")
	t.Setenv("AGENTPATTERNS_MODEL", "claude-opus-4-1-20250805")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.Generation.UseRemote {
		t.Error("expected AGENTPATTERNS_USE_REMOTE to enable remote generation")
	}
	if cfg.Generation.Model != "claude-opus-4-1-20250805" {
		t.Errorf("expected model from environment, got %q", cfg.Generation.Model)
	}
	if cfg.Anthropic.APIKey != "sk-ant-from-environment" {
		t.Errorf("expected api key from environment, got %q", cfg.Anthropic.APIKey)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"remote without key", func(c *Config) { c.Generation.UseRemote = true }, true},
		{"remote with key", func(c *Config) {
			c.Generation.UseRemote = true
			c.Anthropic.APIKey = "sk-ant-configured"
		}, false},
		{"remote through bedrock needs no key", func(c *Config) {
			c.Generation.UseRemote = true
			c.Generation.Bedrock = true
		}, false},
		{"zero iterations", func(c *Config) { c.Patterns.MaxIterations = 0 }, true},
		{"negative memory", func(c *Config) { c.Patterns.MemorySize = -1 }, true},
		{"zero vote attempts", func(c *Config) { c.Patterns.VoteAttempts = 0 }, true},
		{"unknown backend", func(c *Config) { c.Trace.Backend = "postgres" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ANTHROPIC_API_KEY", "")
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrValidation) {
				t.Errorf("expected a validation error, got %T", err)
			}
		})
	}
}

func TestGetSet(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
	}{
		{"generation.use_remote", "true"},
		{"generation.model", "claude-3-7-sonnet-20250219"},
		{"generation.max_tokens", "2048"},
		{"generation.temperature", "0.7"},
		{"generation.breaker_cooldown", "1m0s"},
		{"trace.backend", "sqlite"},
		{"patterns.max_iterations", "9"},
		{"patterns.target_language", "fr"},
		{"log.format", "json"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := Set(cfg, tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q) failed: %v", tt.key, err)
			}
			got, err := Get(cfg, tt.key)
			if err != nil {
				t.Fatalf("Get(%q) failed: %v", tt.key, err)
			}
			if got != tt.value {
				t.Errorf("Get(%q) = %q, want %q", tt.key, got, tt.value)
			}
		})
	}
}

func TestGetSet_Errors(t *testing.T) {
	cfg := Default()

	if _, err := Get(cfg, "nope"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := Set(cfg, "nope", "1"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := Set(cfg, "patterns.max_iterations", "many"); err == nil {
		t.Error("expected error for non-numeric value")
	}
	if err := Set(cfg, "generation.use_remote", "maybe"); err == nil {
		t.Error("expected error for non-boolean value")
	}
	if err := Set(cfg, "trace.backend", "postgres"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestGet_MasksAPIKey(t *testing.T) {
	cfg := Default()
	cfg.Anthropic.APIKey = "sk-ant-REDACTED"

	got, err := Get(cfg, "anthropic.api_key")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != "sk-ant-...wxyz" {
		t.Errorf("expected masked key, got %q", got)
	}
}

func TestSaveAndReload(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Patterns.MaxIterations = 7
	cfg.Trace.Dir = "elsewhere"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFromPath(GetUserConfigPath())
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Patterns.MaxIterations != 7 {
		t.Errorf("expected max iterations 7, got %d", loaded.Patterns.MaxIterations)
	}
	if loaded.Trace.Dir != "elsewhere" {
		t.Errorf("expected trace dir 'elsewhere', got %q", loaded.Trace.Dir)
	}
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("TEST_VAR", "expanded-value")

	result := expandEnv("${TEST_VAR}")
	if result != "expanded-value" {
		t.Errorf("expected 'expanded-value', got %q", result)
	}

	result = expandEnv("prefix-${TEST_VAR}-suffix")
	if result != "prefix-expanded-value-suffix" {
		t.Errorf("expected 'prefix-expanded-value-suffix', got %q", result)
	}
}

func TestGetUserConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	dir := getUserConfigDir()
	expected := "/custom/config/agentpatterns"
	if dir != expected {
		t.Errorf("expected %q, got %q", expected, dir)
	}
}
