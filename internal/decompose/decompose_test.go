package decompose

import (
	"fmt"
	"testing"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

func TestDecompose_Empty(t *testing.T) {
	for _, in := range []string{"", "\n\n", "   \n\t\n"} {
		if got := Decompose(in); len(got) != 0 {
			t.Errorf("Decompose(%q) = %v, want none", in, got)
		}
	}
}

func TestDecompose_IDsAreSequential(t *testing.T) {
	tasks := Decompose("one\n\n  two  \n\nthree\n")
	if len(tasks) != 3 {
		t.Fatalf("len = %d, want 3", len(tasks))
	}
	for i, task := range tasks {
		if want := fmt.Sprintf("task_%d", i+1); task.ID != want {
			t.Errorf("tasks[%d].ID = %q, want %q", i, task.ID, want)
		}
		if len(task.Dependencies) != 0 {
			t.Errorf("tasks[%d] has dependencies %v", i, task.Dependencies)
		}
	}
	if tasks[1].Description != "two" {
		t.Errorf("description not trimmed: %q", tasks[1].Description)
	}
}

func TestDecompose_Example(t *testing.T) {
	tasks := Decompose("Build login UI\nBuild login API\nWrite report")

	want := []struct {
		id   string
		kind models.TaskKind
	}{
		{"task_1", models.TaskKindFrontend},
		{"task_2", models.TaskKindBackend},
		{"task_3", models.TaskKindAnalysis},
	}
	if len(tasks) != len(want) {
		t.Fatalf("len = %d, want %d", len(tasks), len(want))
	}
	for i, w := range want {
		if tasks[i].ID != w.id || tasks[i].Kind != w.kind {
			t.Errorf("tasks[%d] = (%s, %s), want (%s, %s)", i, tasks[i].ID, tasks[i].Kind, w.id, w.kind)
		}
	}
}

func TestClassifier(t *testing.T) {
	tests := []struct {
		line string
		want models.TaskKind
	}{
		{"Redesign the ui", models.TaskKindFrontend},
		{"FRONTEND polish", models.TaskKindFrontend},
		{"Expose a REST api", models.TaskKindBackend},
		{"Backend caching", models.TaskKindBackend},
		{"UI for the API", models.TaskKindFrontend},
		{"api/ui split", models.TaskKindFrontend},
		{"Build the guide", models.TaskKindAnalysis},
		{"Rapid prototyping", models.TaskKindAnalysis},
		{"Write report", models.TaskKindAnalysis},
		{"Document the APIs", models.TaskKindBackend},
		{"Polish the UIs", models.TaskKindFrontend},
		{"Split the backends", models.TaskKindBackend},
		{"Build login API", models.TaskKindBackend},
		{"Guides and suites", models.TaskKindAnalysis},
	}

	c := DefaultClassifier()
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := c.Classify(tt.line); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.line, got, tt.want)
			}
		})
	}
}

func TestNewWithClassifier(t *testing.T) {
	d := NewWithClassifier(Classifier{
		Rules:   []Rule{{Kind: "docs", Terms: []string{"README"}}},
		Default: models.TaskKindAnalysis,
	})
	tasks := d.Decompose("update readme\nship it")
	if tasks[0].Kind != "docs" || tasks[1].Kind != models.TaskKindAnalysis {
		t.Errorf("kinds = %s, %s", tasks[0].Kind, tasks[1].Kind)
	}
}
