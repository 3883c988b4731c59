// Package generate is the gateway to text generation: a Generator interface
// with a rule-based stub, a remote Anthropic backend, and decorators for
// fallback, circuit breaking and metrics.
package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Generator produces a reply for an ordered list of turns.
type Generator interface {
	Generate(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error)

// Generate calls f.
func (f Func) Generate(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error) {
	return f(ctx, turns)
}

// ProviderError reports a transport, auth or backend failure.
type ProviderError struct {
	Backend string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("generation via %s failed: %v", e.Backend, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Prompt sends a single user turn and returns only the reply text.
func Prompt(ctx context.Context, g Generator, prompt string) (string, error) {
	res, err := g.Generate(ctx, []models.Turn{models.UserTurn(prompt)})
	if err != nil {
		return "", err
	}
	return res.Reply, nil
}

// lastContent returns the content of the final turn, which carries the prompt.
func lastContent(turns []models.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	return turns[len(turns)-1].Content
}

// canceled reports whether err comes from the caller's context rather than
// from the backend.
func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
