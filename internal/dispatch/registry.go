// Package dispatch routes task units to workers by kind, executes them with
// per-task failure isolation and aggregates the outcomes.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Worker handles one task unit. A returned error fails only that task.
type Worker interface {
	Handle(ctx context.Context, task models.TaskUnit) (string, error)
}

// WorkerFunc adapts an ordinary function to the Worker interface.
type WorkerFunc func(ctx context.Context, task models.TaskUnit) (string, error)

// Handle calls f.
func (f WorkerFunc) Handle(ctx context.Context, task models.TaskUnit) (string, error) {
	return f(ctx, task)
}

// Template returns a worker that formats the task description into format.
func Template(format string) Worker {
	return WorkerFunc(func(ctx context.Context, task models.TaskUnit) (string, error) {
		return fmt.Sprintf(format, task.Description), nil
	})
}

// Registry maps task kinds to workers. Lookups for an unregistered kind get
// the worker registered for the default kind.
type Registry struct {
	mu          sync.RWMutex
	workers     map[models.TaskKind]Worker
	defaultKind models.TaskKind
}

// NewRegistry creates an empty registry falling back to defaultKind.
func NewRegistry(defaultKind models.TaskKind) *Registry {
	return &Registry{
		workers:     make(map[models.TaskKind]Worker),
		defaultKind: defaultKind,
	}
}

// DefaultRegistry registers the built-in backend, frontend and analysis
// workers, with analysis as the default.
func DefaultRegistry() *Registry {
	r := NewRegistry(models.TaskKindAnalysis)
	r.Register(models.TaskKindBackend, Template("Implemented API changes for: %s"))
	r.Register(models.TaskKindFrontend, Template("Updated UI components for: %s"))
	r.Register(models.TaskKindAnalysis, Template("Analysed requirement: %s"))
	return r
}

// Register sets the worker for kind, replacing any existing one.
func (r *Registry) Register(kind models.TaskKind, w Worker) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[kind] = w
}

// Lookup returns the worker for kind, or the default worker. ok is false
// only when neither is registered.
func (r *Registry) Lookup(kind models.TaskKind) (w Worker, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if w, ok := r.workers[kind]; ok {
		return w, true
	}
	w, ok = r.workers[r.defaultKind]
	return w, ok
}

// DefaultKind returns the fallback kind.
func (r *Registry) DefaultKind() models.TaskKind {
	return r.defaultKind
}
