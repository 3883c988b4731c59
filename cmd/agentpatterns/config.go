package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/agentpatterns/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify agentpatterns configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/agentpatterns/config.yaml
Project-specific overrides can be placed in .agentpatterns.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(currentOverrides())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			return displayAllConfig(w, cfg)
		case 1:
			return displayConfigKey(w, cfg, args[0])
		default:
			return setConfigKey(w, cfg, args[0], args[1], config.Save)
		}
	},
}

// displayAllConfig prints every configuration value plus where the API key came from.
func displayAllConfig(w io.Writer, cfg *config.Config) error {
	for _, key := range config.Keys() {
		value, err := config.Get(cfg, key)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s: %s\n", key, value)
	}
	fmt.Fprintf(w, "\napi key source: %s\n", config.GetAPIKeySource(cfg))
	if err := cfg.Validate(); err != nil {
		printStatus(w, "✗", err.Error(), color.FgRed)
	} else {
		printStatus(w, "✓", "configuration is valid", color.FgGreen)
	}
	return nil
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(w io.Writer, cfg *config.Config, key string) error {
	value, err := config.Get(cfg, key)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, value)
	return nil
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(w io.Writer, cfg *config.Config, key, value string, save func(*config.Config) error) error {
	if err := config.Set(cfg, key, value); err != nil {
		return err
	}
	if err := save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	display, _ := config.Get(cfg, key)
	fmt.Fprintf(w, "Set %s = %s\n", key, display)
	if strings.EqualFold(key, "anthropic.api_key") {
		if err := config.ValidateAPIKey(value); err != nil {
			printStatus(w, "!", err.Error(), color.FgYellow)
		}
	}
	return nil
}
