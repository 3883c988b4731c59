package models

import (
	"errors"
	"testing"
)

func TestTaskKind_Valid(t *testing.T) {
	tests := []struct {
		name string
		kind TaskKind
		want bool
	}{
		{"backend is valid", TaskKindBackend, true},
		{"frontend is valid", TaskKindFrontend, true},
		{"analysis is valid", TaskKindAnalysis, true},
		{"empty string is invalid", TaskKind(""), false},
		{"custom kind is not built in", TaskKind("docs"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.kind.Valid(); got != tt.want {
				t.Errorf("TaskKind(%q).Valid() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestTaskOutcome_StatusAndDetail(t *testing.T) {
	ok := TaskOutcome{TaskID: "task_1", Succeeded: true, Output: "done"}
	if ok.Status() != "succeeded" {
		t.Errorf("Status() = %q, want succeeded", ok.Status())
	}
	if ok.Detail() != "done" {
		t.Errorf("Detail() = %q, want done", ok.Detail())
	}

	bad := TaskOutcome{TaskID: "task_2", ErrorDetail: "boom"}
	if bad.Status() != "failed" {
		t.Errorf("Status() = %q, want failed", bad.Status())
	}
	if bad.Detail() != "boom" {
		t.Errorf("Detail() = %q, want boom", bad.Detail())
	}
}

func TestNarrativeLine(t *testing.T) {
	tests := []struct {
		name    string
		outcome TaskOutcome
		want    string
	}{
		{"success", TaskOutcome{TaskID: "task_1", Succeeded: true, Output: "ok"}, "task_1 (succeeded): ok"},
		{"failure", TaskOutcome{TaskID: "task_2", ErrorDetail: "bad input"}, "task_2 (failed): bad input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NarrativeLine(tt.outcome); got != tt.want {
				t.Errorf("NarrativeLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRunSummary_Failed(t *testing.T) {
	s := RunSummary{Outcomes: []TaskOutcome{
		{TaskID: "task_1", Succeeded: true},
		{TaskID: "task_2"},
		{TaskID: "task_3", Succeeded: true},
		{TaskID: "task_4"},
	}}

	failed := s.Failed()
	if len(failed) != 2 {
		t.Fatalf("len(Failed()) = %d, want 2", len(failed))
	}
	if failed[0].TaskID != "task_2" || failed[1].TaskID != "task_4" {
		t.Errorf("Failed() = %v, want task_2 and task_4 in order", failed)
	}
}

func TestVerdict_Invariant(t *testing.T) {
	tests := []struct {
		name    string
		verdict Verdict
		want    bool
	}{
		{"pass", Pass(), true},
		{"fail with feedback", Fail("add a twist"), true},
		{"fail without feedback is filled in", Fail(""), true},
		{"pass with feedback", Verdict{Passed: true, Feedback: "x"}, false},
		{"fail without feedback", Verdict{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.verdict.Consistent(); got != tt.want {
				t.Errorf("Consistent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerdict_Score(t *testing.T) {
	if Pass().Score() != "pass" {
		t.Errorf("Pass().Score() = %q", Pass().Score())
	}
	if Fail("x").Score() != "needs_improvement" {
		t.Errorf("Fail().Score() = %q", Fail("x").Score())
	}
}

func TestUsage_Total(t *testing.T) {
	u := Usage{PromptUnits: 3, CompletionUnits: 4}
	if u.Total() != 7 {
		t.Errorf("Total() = %d, want 7", u.Total())
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAgent.Valid() {
		t.Error("built-in roles should be valid")
	}
	if Role("system").Valid() {
		t.Error("system should not be a valid role")
	}
}

func TestValidationError_Is(t *testing.T) {
	err := NewValidationError("max_length", "must be positive")
	if !errors.Is(err, ErrValidation) {
		t.Error("errors.Is(err, ErrValidation) = false, want true")
	}
	if err.Error() != "invalid max_length: must be positive" {
		t.Errorf("Error() = %q", err.Error())
	}

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "max_length" {
		t.Errorf("errors.As did not recover field, got %+v", ve)
	}
}
