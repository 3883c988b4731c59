package models

import "strings"

// TaskKind classifies a unit of decomposed work.
type TaskKind string

const (
	// TaskKindBackend is server-side or API work.
	TaskKindBackend TaskKind = "backend"
	// TaskKindFrontend is UI work.
	TaskKindFrontend TaskKind = "frontend"
	// TaskKindAnalysis is everything else, and the default dispatch target.
	TaskKindAnalysis TaskKind = "analysis"
)

// Valid returns true if the kind is one of the built-in values.
// Custom kinds are allowed by the dispatch registry but are not Valid.
func (k TaskKind) Valid() bool {
	switch k {
	case TaskKindBackend, TaskKindFrontend, TaskKindAnalysis:
		return true
	default:
		return false
	}
}

// TaskUnit is one unit of work produced by decomposition.
type TaskUnit struct {
	// ID is unique within a run and follows input order (task_1, task_2, ...).
	ID string `json:"id" yaml:"id"`
	// Description is the trimmed source line.
	Description string `json:"description" yaml:"description"`
	// Kind selects the worker that handles this task.
	Kind TaskKind `json:"kind" yaml:"kind"`
	// Dependencies lists task IDs this task depends on. Never populated and
	// never used for scheduling.
	Dependencies []string `json:"dependencies" yaml:"dependencies"`
}

// TaskOutcome is the result of executing one TaskUnit.
type TaskOutcome struct {
	TaskID      string `json:"task_id" yaml:"task_id"`
	Succeeded   bool   `json:"succeeded" yaml:"succeeded"`
	Output      string `json:"output,omitempty" yaml:"output,omitempty"`
	ErrorDetail string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Status returns "succeeded" or "failed".
func (o TaskOutcome) Status() string {
	if o.Succeeded {
		return "succeeded"
	}
	return "failed"
}

// Detail returns the output on success and the error detail on failure.
func (o TaskOutcome) Detail() string {
	if o.Succeeded {
		return o.Output
	}
	return o.ErrorDetail
}

// RunSummary aggregates the outcomes of a decomposition run.
type RunSummary struct {
	AllSucceeded bool          `json:"all_succeeded" yaml:"all_succeeded"`
	Outcomes     []TaskOutcome `json:"outcomes" yaml:"outcomes"`
	Narrative    string        `json:"narrative" yaml:"narrative"`
}

// Failed returns the outcomes that did not succeed, in order.
func (s RunSummary) Failed() []TaskOutcome {
	var failed []TaskOutcome
	for _, o := range s.Outcomes {
		if !o.Succeeded {
			failed = append(failed, o)
		}
	}
	return failed
}

// NarrativeLine renders a single outcome as "<id> (<status>): <detail>".
func NarrativeLine(o TaskOutcome) string {
	var b strings.Builder
	b.WriteString(o.TaskID)
	b.WriteString(" (")
	b.WriteString(o.Status())
	b.WriteString("): ")
	b.WriteString(o.Detail())
	return b.String()
}
