package dispatch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/decompose"
	"github.com/ShayCichocki/agentpatterns/internal/logging"
	"github.com/ShayCichocki/agentpatterns/internal/trace"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Result is a completed orchestration run.
type Result struct {
	models.RunSummary `yaml:",inline"`
	Tasks             []models.TaskUnit `json:"tasks" yaml:"tasks"`
	RunID             string            `json:"run_id" yaml:"run_id"`
	TraceLocation     string            `json:"trace_file,omitempty" yaml:"trace_file,omitempty"`
}

// Orchestrator decomposes a project description, executes every task and
// summarises the run.
type Orchestrator struct {
	decomposer *decompose.Decomposer
	executor   *Executor
	store      trace.Store
	logger     *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRegistry replaces the default worker registry.
func WithRegistry(r *Registry) Option {
	return func(o *Orchestrator) { o.executor = NewExecutor(r, o.logger) }
}

// WithDecomposer replaces the default decomposer.
func WithDecomposer(d *decompose.Decomposer) Option {
	return func(o *Orchestrator) { o.decomposer = d }
}

// WithStore persists each run's trace to s.
func WithStore(s trace.Store) Option {
	return func(o *Orchestrator) { o.store = s }
}

// NewOrchestrator creates an orchestrator with the default decomposer and
// worker registry.
func NewOrchestrator(logger *zap.Logger, opts ...Option) *Orchestrator {
	logger = logging.OrNop(logger)
	o := &Orchestrator{
		decomposer: decompose.New(),
		executor:   NewExecutor(DefaultRegistry(), logger),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run decomposes description, executes the tasks in order and returns the
// summary. Task failures are reported in the summary, not as an error; only
// trace persistence can fail the run.
func (o *Orchestrator) Run(ctx context.Context, description string) (*Result, error) {
	rec := trace.NewRecorder(o.store)
	ctx = trace.NewContext(ctx, rec)
	rec.Log(models.RoleUser, "client", description, nil)

	tasks := o.decomposer.Decompose(description)
	rec.Log(models.RoleAgent, "orchestrator", fmt.Sprintf("Created %d tasks", len(tasks)), nil)

	outcomes := o.executor.Execute(ctx, tasks)
	for _, oc := range outcomes {
		rec.Log(models.RoleAgent, "worker", fmt.Sprintf("Task %s: %s", oc.TaskID, oc.Detail()), map[string]any{
			"succeeded": oc.Succeeded,
		})
	}

	summary := Summarize(outcomes)
	rec.Log(models.RoleAgent, "orchestrator", "Summary:\n"+summary.Narrative, nil)

	loc, err := rec.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("persist trace: %w", err)
	}
	if loc != "" {
		summary.Narrative += "\nTrace saved to " + loc
	}

	o.logger.Info("orchestration finished",
		zap.String("run_id", rec.RunID()),
		zap.Int("tasks", len(tasks)),
		zap.Int("failed", len(summary.Failed())),
	)

	return &Result{
		RunSummary:    summary,
		Tasks:         tasks,
		RunID:         rec.RunID(),
		TraceLocation: loc,
	}, nil
}
