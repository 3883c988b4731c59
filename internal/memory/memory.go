// Package memory holds the short-term context carried between steps of a
// pattern run.
package memory

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// SlidingWindow keeps the most recent entries up to a fixed size.
type SlidingWindow struct {
	mu      sync.Mutex
	size    int
	entries []string
}

// NewSlidingWindow creates a window holding at most size entries.
func NewSlidingWindow(size int) (*SlidingWindow, error) {
	if size <= 0 {
		return nil, models.NewValidationError("memory size", "must be positive")
	}
	return &SlidingWindow{size: size}, nil
}

// Add appends an entry, evicting the oldest once the window is full.
func (w *SlidingWindow) Add(entry string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, entry)
	if over := len(w.entries) - w.size; over > 0 {
		w.entries = append([]string(nil), w.entries[over:]...)
	}
}

// Entries returns a copy of the window, oldest first.
func (w *SlidingWindow) Entries() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.entries...)
}

// Len returns the number of entries held.
func (w *SlidingWindow) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}

// Context joins the entries with newlines.
func (w *SlidingWindow) Context() string {
	return strings.Join(w.Entries(), "\n")
}

var entityPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z0-9]{2,})\b`)

// Entities remembers capitalised tokens of three or more characters.
type Entities struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewEntities creates an empty entity memory.
func NewEntities() *Entities {
	return &Entities{seen: make(map[string]struct{})}
}

// Ingest records every entity found in text.
func (e *Entities) Ingest(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, m := range entityPattern.FindAllStringSubmatch(text, -1) {
		e.seen[m[1]] = struct{}{}
	}
}

// List returns the known entities sorted.
func (e *Entities) List() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.seen))
	for name := range e.seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Context renders "Known entities: a, b", or "" when nothing is known.
func (e *Entities) Context() string {
	list := e.List()
	if len(list) == 0 {
		return ""
	}
	return "Known entities: " + strings.Join(list, ", ")
}
