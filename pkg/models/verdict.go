package models

// Verdict is an evaluation policy's judgement of an artifact.
// Feedback is empty if and only if Passed is true.
type Verdict struct {
	Passed   bool   `json:"passed" yaml:"passed"`
	Feedback string `json:"feedback,omitempty" yaml:"feedback,omitempty"`
}

// Pass returns a passing verdict.
func Pass() Verdict {
	return Verdict{Passed: true}
}

// Fail returns a failing verdict. An empty feedback string is replaced with a
// generic message so the verdict stays consistent.
func Fail(feedback string) Verdict {
	if feedback == "" {
		feedback = "needs improvement"
	}
	return Verdict{Feedback: feedback}
}

// Score returns "pass" or "needs_improvement".
func (v Verdict) Score() string {
	if v.Passed {
		return "pass"
	}
	return "needs_improvement"
}

// Consistent reports whether the verdict satisfies the feedback invariant.
func (v Verdict) Consistent() bool {
	return v.Passed == (v.Feedback == "")
}

// RefinementState is the loop-local state of one refinement run.
type RefinementState struct {
	Topic        string
	Iteration    int
	LastArtifact string
	LastFeedback string
}
