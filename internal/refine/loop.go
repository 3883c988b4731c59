// Package refine implements the generate-evaluate refinement loop: a
// generator drafts an artifact, a policy judges it, and the policy's
// feedback is folded into the next prompt until the artifact passes or the
// iteration limit is reached.
package refine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/evaluate"
	"github.com/ShayCichocki/agentpatterns/internal/generate"
	"github.com/ShayCichocki/agentpatterns/internal/logging"
	"github.com/ShayCichocki/agentpatterns/internal/trace"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Result is the outcome of a refinement run. Not converging is a normal
// result with Passed false, never an error.
type Result struct {
	Artifact   string `json:"outline" yaml:"outline"`
	Passed     bool   `json:"passed" yaml:"passed"`
	Iterations int    `json:"iterations" yaml:"iterations"`
	// Feedback is the final verdict's feedback, empty when Passed. When no
	// iteration produced an artifact it describes the last generation failure.
	Feedback      string `json:"feedback" yaml:"feedback"`
	RunID         string `json:"run_id" yaml:"run_id"`
	TraceLocation string `json:"trace_file,omitempty" yaml:"trace_file,omitempty"`
}

// Loop refines story outlines for a topic.
type Loop struct {
	gen    generate.Generator
	policy evaluate.Policy
	store  trace.Store
	logger *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithPolicy replaces the default outline policy.
func WithPolicy(p evaluate.Policy) Option {
	return func(l *Loop) { l.policy = p }
}

// WithStore persists each run's trace to s.
func WithStore(s trace.Store) Option {
	return func(l *Loop) { l.store = s }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New creates a loop over gen.
func New(gen generate.Generator, opts ...Option) *Loop {
	l := &Loop{
		gen:    gen,
		policy: evaluate.NewOutlinePolicy(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrNop(l.logger)
	return l
}

// BuildPrompt returns the outline prompt for topic, asking for the feedback
// to be addressed when there is any.
func BuildPrompt(topic, feedback string) string {
	if feedback == "" {
		return fmt.Sprintf("Write a very short story outline about %s.", topic)
	}
	return fmt.Sprintf("Write a very short story outline about %s. Improve based on feedback: %s", topic, feedback)
}

// Run refines an outline for topic for at most maxIterations passes. A
// failed generation fails only its own iteration: the previous artifact and
// feedback carry over and the loop moves on. Only cancellation of ctx aborts
// the run; the trace recorded so far is still persisted.
func (l *Loop) Run(ctx context.Context, topic string, maxIterations int) (*Result, error) {
	ctrl, err := NewController(maxIterations)
	if err != nil {
		return nil, err
	}

	rec := trace.NewRecorder(l.store)
	ctx = trace.NewContext(ctx, rec)
	rec.Log(models.RoleUser, "client", topic, nil)

	state := models.RefinementState{Topic: topic}
	var (
		verdict *models.Verdict
		lastErr error
	)

	for ctrl.ShouldContinue(verdict) {
		ctrl.Increment()
		state.Iteration = ctrl.Iteration()

		res, err := l.gen.Generate(ctx, []models.Turn{models.UserTurn(BuildPrompt(topic, state.LastFeedback))})
		if err != nil {
			if ctx.Err() != nil {
				l.finalize(ctx, rec)
				return nil, fmt.Errorf("generate outline (iteration %d): %w", state.Iteration, err)
			}
			lastErr = err
			rec.Log(models.RoleAgent, "generator", fmt.Sprintf("Iteration %d failed: %v", state.Iteration, err), map[string]any{
				"error": err.Error(),
			})
			l.logger.Warn("refinement iteration failed",
				zap.String("run_id", rec.RunID()),
				zap.Int("iteration", state.Iteration),
				zap.Error(err),
			)
			continue
		}
		state.LastArtifact = res.Reply
		rec.Log(models.RoleAgent, "generator", fmt.Sprintf("Iteration %d: %s", state.Iteration, state.LastArtifact), nil)

		v := l.policy.Evaluate(state.LastArtifact)
		verdict = &v
		rec.Log(models.RoleAgent, "evaluator", fmt.Sprintf("Evaluation: %s - %s", v.Score(), v.Feedback), nil)

		l.logger.Debug("refinement iteration",
			zap.String("run_id", rec.RunID()),
			zap.Int("iteration", state.Iteration),
			zap.Bool("passed", v.Passed),
		)

		if v.Passed {
			rec.Log(models.RoleAgent, "loop", fmt.Sprintf("Outline approved on iteration %d", state.Iteration), nil)
		}
		state.LastFeedback = v.Feedback
	}

	result := &Result{
		Artifact:   state.LastArtifact,
		Iterations: state.Iteration,
		RunID:      rec.RunID(),
	}
	switch {
	case verdict != nil:
		result.Passed = verdict.Passed
		result.Feedback = verdict.Feedback
	default:
		// Every iteration failed to generate; nothing was ever evaluated.
		result.Feedback = "Generation failed: " + lastErr.Error()
	}
	if !result.Passed && ctrl.IsAtMax() {
		l.logger.Debug("iteration limit reached",
			zap.String("run_id", rec.RunID()),
			zap.Int("max_iterations", ctrl.MaxIterations()),
		)
	}

	loc, err := rec.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("persist trace: %w", err)
	}
	result.TraceLocation = loc
	return result, nil
}

func (l *Loop) finalize(ctx context.Context, rec *trace.Recorder) {
	if _, err := rec.Finalize(context.WithoutCancel(ctx)); err != nil {
		l.logger.Warn("persist trace failed", zap.String("run_id", rec.RunID()), zap.Error(err))
	}
}
