package dispatch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/logging"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Executor runs tasks one at a time against a Registry.
type Executor struct {
	registry *Registry
	logger   *zap.Logger
}

// NewExecutor creates an executor. A nil logger discards output.
func NewExecutor(registry *Registry, logger *zap.Logger) *Executor {
	return &Executor{registry: registry, logger: logging.OrNop(logger)}
}

// Execute returns exactly one outcome per task, in input order. Worker
// errors and panics become failed outcomes and never stop later tasks.
func (e *Executor) Execute(ctx context.Context, tasks []models.TaskUnit) []models.TaskOutcome {
	outcomes := make([]models.TaskOutcome, 0, len(tasks))
	for _, task := range tasks {
		o := e.run(ctx, task)
		e.logger.Debug("task finished",
			zap.String("task_id", o.TaskID),
			zap.String("kind", string(task.Kind)),
			zap.Bool("succeeded", o.Succeeded),
		)
		outcomes = append(outcomes, o)
	}
	return outcomes
}

func (e *Executor) run(ctx context.Context, task models.TaskUnit) (outcome models.TaskOutcome) {
	outcome.TaskID = task.ID

	if err := ctx.Err(); err != nil {
		outcome.ErrorDetail = err.Error()
		return outcome
	}

	w, ok := e.registry.Lookup(task.Kind)
	if !ok {
		outcome.ErrorDetail = fmt.Sprintf("no worker registered for kind %q or default kind %q", task.Kind, e.registry.DefaultKind())
		return outcome
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("worker panicked", zap.String("task_id", task.ID), zap.Any("panic", r))
			outcome = models.TaskOutcome{
				TaskID:      task.ID,
				ErrorDetail: fmt.Sprintf("worker panic: %v", r),
			}
		}
	}()

	out, err := w.Handle(ctx, task)
	if err != nil {
		outcome.ErrorDetail = err.Error()
		return outcome
	}
	outcome.Succeeded = true
	outcome.Output = out
	return outcome
}

// Summarize aggregates outcomes. AllSucceeded is true for an empty list.
func Summarize(outcomes []models.TaskOutcome) models.RunSummary {
	all := true
	lines := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		all = all && o.Succeeded
		lines = append(lines, models.NarrativeLine(o))
	}
	return models.RunSummary{
		AllSucceeded: all,
		Outcomes:     outcomes,
		Narrative:    strings.Join(lines, "\n"),
	}
}
