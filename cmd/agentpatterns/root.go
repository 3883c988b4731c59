package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	configPath   string
	outputFormat string
	logLevel     string
	traceDir     string
	useRemote    bool
	metricsFile  string
)

var rootCmd = &cobra.Command{
	Use:   "agentpatterns",
	Short: "Orchestration patterns over a text-generation service",
	Long: `agentpatterns runs small orchestration patterns against a text-generation
backend and records every step to a trace.

Patterns:
- sequential:   generate, validate and translate marketing copy
- router:       detect a message's language and route it to a handler
- parallel:     translate several times concurrently and vote
- orchestrator: split a project into tasks and dispatch them to workers
- judge:        refine a story outline until an evaluator approves it

By default a deterministic rule-based stub answers every prompt. Set
generation.use_remote (or pass --remote) to call the Anthropic API instead.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Interrupts cancel the running pattern.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: XDG config plus .agentpatterns.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", formatTable, "Output format: table, json or yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log.level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&traceDir, "trace-dir", "", "Override trace.dir")
	rootCmd.PersistentFlags().BoolVar(&useRemote, "remote", false, "Use the remote generator regardless of config")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write generation metrics in Prometheus text format to this file on exit")

	rootCmd.AddCommand(sequentialCmd)
	rootCmd.AddCommand(routerCmd)
	rootCmd.AddCommand(parallelCmd)
	rootCmd.AddCommand(orchestratorCmd)
	rootCmd.AddCommand(judgeCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(tracesCmd)
	rootCmd.AddCommand(versionCmd)
}
