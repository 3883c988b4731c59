// Package trace records the observable steps of a pattern run and persists
// them to an append-only store keyed by run id.
package trace

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ShayCichocki/agentpatterns/internal/config"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// ErrRunNotFound is returned by Load when a store holds no events for a run.
var ErrRunNotFound = errors.New("trace run not found")

// Store persists trace events. Appends for one run id never rewrite earlier
// events.
type Store interface {
	// Append writes events for runID and returns the run's location.
	Append(ctx context.Context, runID string, events []models.TraceEvent) (string, error)
	// Load returns every event recorded for runID in append order.
	Load(ctx context.Context, runID string) ([]models.TraceEvent, error)
	// Location returns where runID's events live, whether or not any exist yet.
	Location(runID string) string
	// Close releases any resources held by the store.
	Close() error
}

// OpenStore builds the store selected by cfg.Backend. The sqlite backend
// keeps all runs in {dir}/traces.db.
func OpenStore(cfg config.TraceConfig) (Store, error) {
	switch cfg.Backend {
	case "", config.TraceBackendJSONL:
		return NewJSONLStore(cfg.Dir), nil
	case config.TraceBackendSQLite:
		return OpenSQLite(filepath.Join(cfg.Dir, "traces.db"))
	default:
		return nil, fmt.Errorf("unknown trace backend %q", cfg.Backend)
	}
}
