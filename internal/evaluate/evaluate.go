// Package evaluate holds the policies that judge generated artifacts.
// Every policy returns a models.Verdict whose feedback is empty exactly when
// the artifact passes.
package evaluate

import (
	"strings"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Policy judges a single text artifact.
type Policy interface {
	Evaluate(artifact string) models.Verdict
}

// PolicyFunc adapts an ordinary function to the Policy interface.
type PolicyFunc func(artifact string) models.Verdict

// Evaluate calls f.
func (f PolicyFunc) Evaluate(artifact string) models.Verdict {
	return f(artifact)
}

// OutlineFeedback is returned for outlines that fail OutlinePolicy.
const OutlineFeedback = "Add an element of mystery"

// outlineKeywords mark an outline as having a hook.
var outlineKeywords = []string{"unexpected", "mysterious", "detective"}

// OutlinePolicy passes story outlines longer than MinWords words that mention
// one of the hook keywords.
type OutlinePolicy struct {
	// MinWords is exclusive; the default policy requires more than 8.
	MinWords int
}

// NewOutlinePolicy returns the default outline policy.
func NewOutlinePolicy() OutlinePolicy {
	return OutlinePolicy{MinWords: 8}
}

// Evaluate implements Policy.
func (p OutlinePolicy) Evaluate(outline string) models.Verdict {
	if len(strings.Fields(outline)) <= p.MinWords {
		return models.Fail(OutlineFeedback)
	}
	lower := strings.ToLower(outline)
	for _, kw := range outlineKeywords {
		if strings.Contains(lower, kw) {
			return models.Pass()
		}
	}
	return models.Fail(OutlineFeedback)
}

// Copy is a piece of marketing copy split into its parts.
type Copy struct {
	Headline     string `json:"headline" yaml:"headline"`
	Body         string `json:"body" yaml:"body"`
	CallToAction string `json:"call_to_action" yaml:"call_to_action"`
}

// Copy validation feedback.
const (
	FeedbackHeadlineTooLong = "Headline is too long (max 60 characters)."
	FeedbackBodyTooShort    = "Body is too short (min 100 characters)."
	FeedbackNoActionWord    = "Call to action should include an action word like buy, learn or try."
)

var actionWords = []string{"buy", "learn", "try", "get", "start"}

// CopyPolicy validates marketing copy. Lengths count characters, not bytes.
type CopyPolicy struct {
	MaxHeadline int
	MinBody     int
}

// NewCopyPolicy returns the default copy policy: headline at most 60
// characters, body at least 100.
func NewCopyPolicy() CopyPolicy {
	return CopyPolicy{MaxHeadline: 60, MinBody: 100}
}

// Check validates every part and joins all problems with newlines.
func (p CopyPolicy) Check(c Copy) models.Verdict {
	var problems []string
	if len([]rune(c.Headline)) > p.MaxHeadline {
		problems = append(problems, FeedbackHeadlineTooLong)
	}
	if len([]rune(c.Body)) < p.MinBody {
		problems = append(problems, FeedbackBodyTooShort)
	}
	if !containsAny(strings.ToLower(c.CallToAction), actionWords) {
		problems = append(problems, FeedbackNoActionWord)
	}
	if len(problems) == 0 {
		return models.Pass()
	}
	return models.Fail(strings.Join(problems, "\n"))
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
