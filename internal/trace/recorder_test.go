package trace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if len(a) != 32 {
		t.Errorf("len(run id) = %d, want 32", len(a))
	}
	if a == b {
		t.Error("run ids should be unique")
	}
}

func TestRecorder_FinalizeWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorderWithID(NewJSONLStore(dir), "run1")
	rec.now = fixedNow

	rec.Log(models.RoleUser, "client", "hello", nil)
	rec.Log(models.RoleAgent, "worker", "done", map[string]any{"task_id": "task_1"})

	loc, err := rec.Finalize(context.Background())
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	want := filepath.Join(dir, "run1.jsonl")
	if loc != want {
		t.Errorf("location = %q, want %q", loc, want)
	}

	events, err := NewJSONLStore(dir).Load(context.Background(), "run1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Sender != "client" || events[0].Role != models.RoleUser {
		t.Errorf("events[0] = %+v", events[0])
	}
	if !events[0].Timestamp.Equal(fixedNow()) {
		t.Errorf("timestamp = %v, want %v", events[0].Timestamp, fixedNow())
	}
	if events[1].Metadata["task_id"] != "task_1" {
		t.Errorf("metadata = %v", events[1].Metadata)
	}

	raw, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read trace file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	wantLine := `{"timestamp":"2026-03-01T12:00:00Z","role":"agent","sender":"worker","content":"done","task_id":"task_1"}`
	if len(lines) != 2 || lines[1] != wantLine {
		t.Errorf("second line = %q, want %q", lines[len(lines)-1], wantLine)
	}

	if len(rec.Events()) != 0 {
		t.Error("buffer should be cleared after Finalize")
	}
}

func TestRecorder_FinalizeEmptyIsNoOp(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorderWithID(NewJSONLStore(dir), "empty")

	loc, err := rec.Finalize(context.Background())
	if err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if loc != filepath.Join(dir, "empty.jsonl") {
		t.Errorf("location = %q", loc)
	}
	if _, err := os.Stat(loc); !os.IsNotExist(err) {
		t.Error("empty finalize should not create a file")
	}
}

func TestRecorder_FinalizeAppends(t *testing.T) {
	dir := t.TempDir()
	store := NewJSONLStore(dir)
	rec := NewRecorderWithID(store, "run2")

	rec.Log(models.RoleUser, "client", "first", nil)
	if _, err := rec.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	rec.Log(models.RoleAgent, "worker", "second", nil)
	if _, err := rec.Finalize(context.Background()); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	events, err := store.Load(context.Background(), "run2")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(events) != 2 || events[0].Content != "first" || events[1].Content != "second" {
		t.Errorf("events = %+v", events)
	}
}

type failingStore struct {
	JSONLStore
}

func (f *failingStore) Append(ctx context.Context, runID string, events []models.TraceEvent) (string, error) {
	return f.Location(runID), errors.New("disk full")
}

func TestRecorder_FinalizeErrorKeepsBuffer(t *testing.T) {
	rec := NewRecorderWithID(&failingStore{JSONLStore{dir: t.TempDir()}}, "run3")
	rec.Log(models.RoleUser, "client", "kept", nil)

	if _, err := rec.Finalize(context.Background()); err == nil {
		t.Fatal("expected Finalize error")
	}
	if len(rec.Events()) != 1 {
		t.Errorf("buffer len = %d, want 1", len(rec.Events()))
	}
}

func TestRecorder_ConcurrentLog(t *testing.T) {
	rec := NewRecorderWithID(NewJSONLStore(t.TempDir()), "run4")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Log(models.RoleAgent, "voter", "reply", nil)
		}()
	}
	wg.Wait()

	if got := len(rec.Events()); got != 20 {
		t.Errorf("events = %d, want 20", got)
	}
}

func TestContext(t *testing.T) {
	if FromContext(context.Background()) != nil {
		t.Error("FromContext on a bare context should be nil")
	}
	rec := NewRecorder(NewJSONLStore(t.TempDir()))
	ctx := NewContext(context.Background(), rec)
	if FromContext(ctx) != rec {
		t.Error("FromContext did not return the stored recorder")
	}
}

func TestJSONLStore_LoadMissing(t *testing.T) {
	_, err := NewJSONLStore(t.TempDir()).Load(context.Background(), "nope")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestRecorder_NilStore(t *testing.T) {
	rec := NewRecorder(nil)
	rec.Log(models.RoleUser, "client", "x", nil)

	loc, err := rec.Finalize(context.Background())
	if err != nil || loc != "" {
		t.Errorf("Finalize = %q, %v; want empty location", loc, err)
	}
	if len(rec.Events()) != 1 {
		t.Error("events should stay buffered without a store")
	}
}
