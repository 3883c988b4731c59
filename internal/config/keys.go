package config

import (
	"errors"
	"os"
	"strings"
)

// APIKeyEnv is the environment variable holding the remote credential.
const APIKeyEnv = "ANTHROPIC_API_KEY"

// ErrNoAPIKey is returned when no API key is configured.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// KeySource represents where an API key was loaded from.
type KeySource string

const (
	KeySourceEnv    KeySource = "environment"
	KeySourceConfig KeySource = "config_file"
	KeySourceNone   KeySource = "none"
)

// ResolveAPIKey returns the API key and where it came from.
// The environment wins over the config file; unexpanded ${VAR} references
// in the config file count as unset.
func ResolveAPIKey(cfg *Config) (string, KeySource, error) {
	if key := os.Getenv(APIKeyEnv); key != "" {
		return key, KeySourceEnv, nil
	}

	if cfg != nil && cfg.Anthropic.APIKey != "" {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, KeySourceConfig, nil
		}
	}

	return "", KeySourceNone, ErrNoAPIKey
}

// GetAPIKey returns the Anthropic API key from the environment or configuration.
func GetAPIKey(cfg *Config) (string, error) {
	key, _, err := ResolveAPIKey(cfg)
	return key, err
}

// GetAPIKeySource returns where the API key was sourced from.
func GetAPIKeySource(cfg *Config) KeySource {
	_, source, _ := ResolveAPIKey(cfg)
	return source
}

// ValidateAPIKey performs basic format validation on an API key.
// It does not contact the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskAPIKey returns a masked version of the API key for display.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
