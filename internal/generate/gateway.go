package generate

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/api"
	"github.com/ShayCichocki/agentpatterns/internal/config"
	"github.com/ShayCichocki/agentpatterns/internal/logging"
)

// FromConfig assembles the gateway selected by cfg. Without remote
// generation it is an instrumented Stub. With it, the remote client sits
// behind a circuit breaker and falls back to the Stub. Remote usage is
// accumulated in tracker when it is non-nil.
func FromConfig(cfg *config.Config, logger *zap.Logger, metrics *Metrics, tracker *api.TokenTracker) (Generator, error) {
	logger = logging.OrNop(logger)
	stub := Instrument(NewStub(), "stub", metrics)
	if !cfg.Generation.UseRemote {
		logger.Debug("using stub generator")
		return stub, nil
	}

	key, _, err := config.ResolveAPIKey(cfg)
	if err != nil && !cfg.Generation.Bedrock {
		return nil, err
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.RemoteModel()),
		APIKey:        key,
		MaxTokens:     int64(cfg.Generation.MaxTokens),
		Temperature:   cfg.Generation.Temperature,
		UseAWSBedrock: cfg.Generation.Bedrock,
		AWSRegion:     cfg.Generation.AWSRegion,
		AWSProfile:    cfg.Generation.AWSProfile,
		Tracker:       tracker,
	})
	if err != nil {
		return nil, fmt.Errorf("create remote client: %w", err)
	}

	name := string(client.Model())
	remote := NewBreaker(
		Instrument(NewRemote(client, name), "remote", metrics),
		name,
		cfg.Generation.BreakerFailures,
		cfg.Generation.BreakerCooldown,
	)
	logger.Debug("using remote generator", zap.String("model", name), zap.Bool("bedrock", cfg.Generation.Bedrock))
	return NewFallback(remote, stub, logger), nil
}
