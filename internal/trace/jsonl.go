package trace

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// JSONLStore writes one newline-delimited JSON file per run: {dir}/{runID}.jsonl.
type JSONLStore struct {
	dir string
}

// NewJSONLStore creates a store rooted at dir. The directory is created lazily
// on first append.
func NewJSONLStore(dir string) *JSONLStore {
	return &JSONLStore{dir: dir}
}

// Location returns the file path for runID.
func (s *JSONLStore) Location(runID string) string {
	return filepath.Join(s.dir, runID+".jsonl")
}

// Append opens the run's file in append mode and writes one line per event.
func (s *JSONLStore) Append(ctx context.Context, runID string, events []models.TraceEvent) (string, error) {
	path := s.Location(runID)
	if err := ctx.Err(); err != nil {
		return path, err
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return path, fmt.Errorf("create trace directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return path, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return path, fmt.Errorf("encode trace event: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return path, fmt.Errorf("flush trace file: %w", err)
	}
	return path, nil
}

// Load reads every line of the run's file.
func (s *JSONLStore) Load(ctx context.Context, runID string) ([]models.TraceEvent, error) {
	f, err := os.Open(s.Location(runID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	defer f.Close()

	var events []models.TraceEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var ev models.TraceEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			return nil, fmt.Errorf("decode trace line %d: %w", len(events)+1, err)
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read trace file: %w", err)
	}
	return events, nil
}

// Close is a no-op; files are closed after every append.
func (s *JSONLStore) Close() error {
	return nil
}
