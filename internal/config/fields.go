package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Keys returns every dot-notation key that Get and Set understand, in display order.
func Keys() []string {
	return []string{
		"anthropic.api_key",
		"generation.use_remote",
		"generation.model",
		"generation.max_tokens",
		"generation.temperature",
		"generation.bedrock",
		"generation.aws_region",
		"generation.aws_profile",
		"generation.breaker_failures",
		"generation.breaker_cooldown",
		"trace.dir",
		"trace.backend",
		"patterns.max_iterations",
		"patterns.memory_size",
		"patterns.vote_attempts",
		"patterns.target_language",
		"log.level",
		"log.format",
		"log.file",
	}
}

// Get retrieves a configuration value by dot-notation key.
// The API key is always masked.
func Get(cfg *Config, key string) (string, error) {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		return MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "generation.use_remote":
		return strconv.FormatBool(cfg.Generation.UseRemote), nil
	case "generation.model":
		return cfg.Generation.Model, nil
	case "generation.max_tokens":
		return strconv.Itoa(cfg.Generation.MaxTokens), nil
	case "generation.temperature":
		return strconv.FormatFloat(cfg.Generation.Temperature, 'f', -1, 64), nil
	case "generation.bedrock":
		return strconv.FormatBool(cfg.Generation.Bedrock), nil
	case "generation.aws_region":
		return cfg.Generation.AWSRegion, nil
	case "generation.aws_profile":
		return cfg.Generation.AWSProfile, nil
	case "generation.breaker_failures":
		return strconv.Itoa(cfg.Generation.BreakerFailures), nil
	case "generation.breaker_cooldown":
		return cfg.Generation.BreakerCooldown.String(), nil
	case "trace.dir":
		return cfg.Trace.Dir, nil
	case "trace.backend":
		return cfg.Trace.Backend, nil
	case "patterns.max_iterations":
		return strconv.Itoa(cfg.Patterns.MaxIterations), nil
	case "patterns.memory_size":
		return strconv.Itoa(cfg.Patterns.MemorySize), nil
	case "patterns.vote_attempts":
		return strconv.Itoa(cfg.Patterns.VoteAttempts), nil
	case "patterns.target_language":
		return cfg.Patterns.TargetLanguage, nil
	case "log.level":
		return cfg.Log.Level, nil
	case "log.format":
		return cfg.Log.Format, nil
	case "log.file":
		return cfg.Log.File, nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// Set updates a configuration value by dot-notation key.
func Set(cfg *Config, key, value string) error {
	switch strings.ToLower(key) {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "generation.use_remote":
		return setBool(&cfg.Generation.UseRemote, key, value)
	case "generation.model":
		cfg.Generation.Model = value
	case "generation.max_tokens":
		return setInt(&cfg.Generation.MaxTokens, key, value)
	case "generation.temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		cfg.Generation.Temperature = f
	case "generation.bedrock":
		return setBool(&cfg.Generation.Bedrock, key, value)
	case "generation.aws_region":
		cfg.Generation.AWSRegion = value
	case "generation.aws_profile":
		cfg.Generation.AWSProfile = value
	case "generation.breaker_failures":
		return setInt(&cfg.Generation.BreakerFailures, key, value)
	case "generation.breaker_cooldown":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", key, err)
		}
		cfg.Generation.BreakerCooldown = d
	case "trace.dir":
		cfg.Trace.Dir = value
	case "trace.backend":
		if value != TraceBackendJSONL && value != TraceBackendSQLite {
			return fmt.Errorf("invalid value for %s: must be %s or %s", key, TraceBackendJSONL, TraceBackendSQLite)
		}
		cfg.Trace.Backend = value
	case "patterns.max_iterations":
		return setInt(&cfg.Patterns.MaxIterations, key, value)
	case "patterns.memory_size":
		return setInt(&cfg.Patterns.MemorySize, key, value)
	case "patterns.vote_attempts":
		return setInt(&cfg.Patterns.VoteAttempts, key, value)
	case "patterns.target_language":
		cfg.Patterns.TargetLanguage = value
	case "log.level":
		cfg.Log.Level = value
	case "log.format":
		cfg.Log.Format = value
	case "log.file":
		cfg.Log.File = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

func setBool(dst *bool, key, value string) error {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean for %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dst = n
	return nil
}
