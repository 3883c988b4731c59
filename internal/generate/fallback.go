package generate

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/logging"
	"github.com/ShayCichocki/agentpatterns/internal/trace"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Fallback tries Primary and, on failure, answers with Secondary. A
// substituted reply carries zero usage. Each substitution is logged at Warn
// and recorded as a "fallback" event on the run's trace recorder, if the
// context carries one.
type Fallback struct {
	primary   Generator
	secondary Generator
	logger    *zap.Logger
}

// NewFallback creates a two-stage generator.
func NewFallback(primary, secondary Generator, logger *zap.Logger) *Fallback {
	return &Fallback{
		primary:   primary,
		secondary: secondary,
		logger:    logging.OrNop(logger),
	}
}

// Generate implements Generator. Cancellation of ctx is returned as-is and
// never triggers a substitution.
func (f *Fallback) Generate(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error) {
	res, err := f.primary.Generate(ctx, turns)
	if err == nil {
		return res, nil
	}
	if canceled(err) {
		return nil, err
	}

	f.logger.Warn("primary generator failed, using fallback", zap.Error(err))
	if rec := trace.FromContext(ctx); rec != nil {
		rec.Log(models.RoleAgent, "fallback", "Primary generator failed: "+err.Error(), map[string]any{
			"error": err.Error(),
		})
	}

	res, serr := f.secondary.Generate(ctx, turns)
	if serr != nil {
		return nil, errors.Join(err, serr)
	}
	return &models.GenerationResult{Reply: res.Reply}, nil
}
