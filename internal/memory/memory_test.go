package memory

import (
	"errors"
	"reflect"
	"testing"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

func TestNewSlidingWindow_InvalidSize(t *testing.T) {
	for _, size := range []int{0, -1} {
		_, err := NewSlidingWindow(size)
		if !errors.Is(err, models.ErrValidation) {
			t.Errorf("NewSlidingWindow(%d) err = %v, want ErrValidation", size, err)
		}
	}
}

func TestSlidingWindow_Evicts(t *testing.T) {
	w, err := NewSlidingWindow(2)
	if err != nil {
		t.Fatalf("NewSlidingWindow failed: %v", err)
	}

	w.Add("a")
	w.Add("b")
	w.Add("c")

	if got := w.Entries(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Entries() = %v, want [b c]", got)
	}
	if w.Len() != 2 {
		t.Errorf("Len() = %d, want 2", w.Len())
	}
	if w.Context() != "b\nc" {
		t.Errorf("Context() = %q", w.Context())
	}
}

func TestSlidingWindow_Empty(t *testing.T) {
	w, _ := NewSlidingWindow(3)
	if w.Context() != "" {
		t.Errorf("Context() = %q, want empty", w.Context())
	}
}

func TestEntities(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{"empty", nil, ""},
		{"short tokens ignored", []string{"An AI is OK"}, ""},
		{"sorted and deduped", []string{"Zeta met Alpha", "Alpha left Berlin"}, "Known entities: Alpha, Berlin, Zeta"},
		{"alphanumerics", []string{"Introducing Widget3000 today"}, "Known entities: Introducing, Widget3000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEntities()
			for _, text := range tt.texts {
				e.Ingest(text)
			}
			if got := e.Context(); got != tt.want {
				t.Errorf("Context() = %q, want %q", got, tt.want)
			}
		})
	}
}
