// Package decompose splits a free-form project description into typed units
// of work.
package decompose

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Rule assigns Kind to any line containing one of Terms as a whole word or
// as its plural ("apis" matches "api").
type Rule struct {
	Kind  models.TaskKind
	Terms []string
}

// Classifier maps a line of text to a task kind. Rules are checked in order;
// the first match wins and Default applies when none match.
type Classifier struct {
	Rules   []Rule
	Default models.TaskKind
}

// DefaultClassifier checks frontend terms before backend terms, so a line
// mentioning both is a frontend task.
func DefaultClassifier() Classifier {
	return Classifier{
		Rules: []Rule{
			{Kind: models.TaskKindFrontend, Terms: []string{"ui", "frontend"}},
			{Kind: models.TaskKindBackend, Terms: []string{"api", "backend"}},
		},
		Default: models.TaskKindAnalysis,
	}
}

// Classify returns the kind for line. Matching is case-insensitive and on
// whole words or their plurals, so "UIs" matches "ui" but "build" does not.
func (c Classifier) Classify(line string) models.TaskKind {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(line), isSeparator) {
		words[w] = struct{}{}
	}
	for _, rule := range c.Rules {
		for _, term := range rule.Terms {
			term = strings.ToLower(term)
			if _, ok := words[term]; ok {
				return rule.Kind
			}
			if _, ok := words[term+"s"]; ok {
				return rule.Kind
			}
		}
	}
	return c.Default
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// Decomposer turns descriptions into task units.
type Decomposer struct {
	classifier Classifier
}

// New creates a decomposer using the default classifier.
func New() *Decomposer {
	return NewWithClassifier(DefaultClassifier())
}

// NewWithClassifier creates a decomposer with custom classification rules.
func NewWithClassifier(c Classifier) *Decomposer {
	return &Decomposer{classifier: c}
}

// Decompose makes one task per non-blank line, numbered task_1, task_2, ...
// in input order. Tasks never depend on each other.
func (d *Decomposer) Decompose(description string) []models.TaskUnit {
	var tasks []models.TaskUnit
	for _, line := range strings.Split(description, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		tasks = append(tasks, models.TaskUnit{
			ID:           fmt.Sprintf("task_%d", len(tasks)+1),
			Description:  line,
			Kind:         d.classifier.Classify(line),
			Dependencies: []string{},
		})
	}
	return tasks
}

// Decompose splits description with the default classifier.
func Decompose(description string) []models.TaskUnit {
	return New().Decompose(description)
}
