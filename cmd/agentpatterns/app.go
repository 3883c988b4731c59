package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/api"
	"github.com/ShayCichocki/agentpatterns/internal/config"
	"github.com/ShayCichocki/agentpatterns/internal/generate"
	"github.com/ShayCichocki/agentpatterns/internal/logging"
	"github.com/ShayCichocki/agentpatterns/internal/trace"
)

// app holds everything a pattern command needs, built once per invocation.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	gen     generate.Generator
	store   trace.Store
	metrics *prometheus.Registry
	usage   *api.TokenTracker

	// metricsFile, when set, receives the registry in text exposition
	// format on Close.
	metricsFile string
}

// overrides are command-line values that win over the loaded config.
type overrides struct {
	configPath  string
	logLevel    string
	traceDir    string
	remote      bool
	metricsFile string
}

func currentOverrides() overrides {
	return overrides{
		configPath:  configPath,
		logLevel:    logLevel,
		traceDir:    traceDir,
		remote:      useRemote,
		metricsFile: metricsFile,
	}
}

// loadConfig reads configuration and applies command-line overrides.
func loadConfig(o overrides) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFromPath(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.traceDir != "" {
		cfg.Trace.Dir = o.traceDir
	}
	if o.remote {
		cfg.Generation.UseRemote = true
	}
	return cfg, nil
}

// newApp validates cfg and wires the logger, trace store and generator.
func newApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	store, err := trace.OpenStore(cfg.Trace)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("open trace store: %w", err)
	}

	reg := prometheus.NewRegistry()
	usage := api.NewTokenTracker(api.SonnetPricing)
	gen, err := generate.FromConfig(cfg, logger.Logger, generate.MustNewMetrics(reg), usage)
	if err != nil {
		store.Close()
		logger.Close()
		return nil, fmt.Errorf("create generator: %w", err)
	}

	logger.Debug("app ready",
		zap.Bool("remote", cfg.Generation.UseRemote),
		zap.String("trace_backend", cfg.Trace.Backend),
		zap.String("trace_dir", cfg.Trace.Dir),
	)
	return &app{
		cfg:     cfg,
		logger:  logger,
		gen:     gen,
		store:   store,
		metrics: reg,
		usage:   usage,
	}, nil
}

// setup loads config with the current flags and builds the app.
func setup() (*app, error) {
	o := currentOverrides()
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, err
	}
	a, err := newApp(cfg)
	if err != nil {
		return nil, err
	}
	a.metricsFile = o.metricsFile
	return a, nil
}

// Close reports remote usage, writes the metrics file if one was asked
// for, and releases the trace store and logger.
func (a *app) Close() error {
	var errs []error
	if a.cfg.Generation.UseRemote {
		logUsage(a.logger.Logger, a.usage.Report())
	}
	if a.metricsFile != "" {
		if err := prometheus.WriteToTextfile(a.metricsFile, a.metrics); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	errs = append(errs, a.store.Close(), a.logger.Close())
	return errors.Join(errs...)
}

func logUsage(logger *zap.Logger, r api.UsageReport) {
	logger.Info("remote usage",
		zap.Int("calls", r.Calls),
		zap.Int("prompt_tokens", r.Usage.PromptUnits),
		zap.Int("completion_tokens", r.Usage.CompletionUnits),
		zap.Float64("cost_usd", r.CostUSD),
	)
}
