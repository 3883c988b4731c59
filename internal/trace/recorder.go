package trace

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Recorder buffers the events of one run and flushes them to a Store.
// A Recorder belongs to a single run; it is safe for concurrent Log calls.
type Recorder struct {
	runID string
	store Store

	mu     sync.Mutex
	buffer []models.TraceEvent
	now    func() time.Time // for testing
}

// NewRecorder creates a recorder with a fresh run id. A nil store keeps
// events in memory only.
func NewRecorder(store Store) *Recorder {
	return NewRecorderWithID(store, NewRunID())
}

// NewRecorderWithID creates a recorder for an explicit run id.
func NewRecorderWithID(store Store, runID string) *Recorder {
	return &Recorder{
		runID: runID,
		store: store,
		now:   time.Now,
	}
}

// NewRunID returns a random 32-character hex run id.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// RunID returns the run id the recorder writes under.
func (r *Recorder) RunID() string {
	return r.runID
}

// Location returns where the run's events are persisted, or "" for a
// recorder without a store. It reads only fields fixed at construction
// and takes no lock.
func (r *Recorder) Location() string {
	if r.store == nil {
		return ""
	}
	return r.store.Location(r.runID)
}

// Log buffers an event stamped with the current UTC time.
func (r *Recorder) Log(role models.Role, sender, content string, metadata map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, models.TraceEvent{
		Timestamp: r.now().UTC(),
		Role:      role,
		Sender:    sender,
		Content:   content,
		Metadata:  metadata,
	})
}

// Events returns a copy of the events buffered since the last Finalize.
func (r *Recorder) Events() []models.TraceEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.TraceEvent, len(r.buffer))
	copy(out, r.buffer)
	return out
}

// Finalize appends buffered events to the store, clears the buffer and
// returns the run location. With nothing buffered it only returns the
// location. On a store error the buffer is kept so a later call can retry.
func (r *Recorder) Finalize(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store == nil {
		return "", nil
	}
	if len(r.buffer) == 0 {
		return r.Location(), nil
	}
	loc, err := r.store.Append(ctx, r.runID, r.buffer)
	if err != nil {
		return loc, err
	}
	r.buffer = nil
	return loc, nil
}

type recorderKey struct{}

// NewContext returns a context carrying rec.
func NewContext(ctx context.Context, rec *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, rec)
}

// FromContext returns the recorder carried by ctx, or nil.
func FromContext(ctx context.Context) *Recorder {
	rec, _ := ctx.Value(recorderKey{}).(*Recorder)
	return rec
}
