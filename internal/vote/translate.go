package vote

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/trace"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Translation is the result of a parallel translation.
type Translation struct {
	Input         string   `json:"input" yaml:"input"`
	Language      string   `json:"language" yaml:"language"`
	Translations  []string `json:"translations" yaml:"translations"`
	Best          string   `json:"best" yaml:"best"`
	RunID         string   `json:"run_id" yaml:"run_id"`
	TraceLocation string   `json:"trace_file,omitempty" yaml:"trace_file,omitempty"`
}

// Translator translates a message several times in parallel and keeps the
// majority translation.
type Translator struct {
	voter *Voter
	store trace.Store
}

// NewTranslator creates a translator. A nil store skips trace persistence.
func NewTranslator(voter *Voter, store trace.Store) *Translator {
	return &Translator{voter: voter, store: store}
}

// TranslationPrompt is the prompt sent on every attempt.
func TranslationPrompt(language, message string) string {
	return fmt.Sprintf("Translate this to %s: %s", language, message)
}

// Translate votes on a translation of message into language.
func (t *Translator) Translate(ctx context.Context, message, language string) (*Translation, error) {
	if language == "" {
		return nil, models.NewValidationError("target language", "must not be empty")
	}

	rec := trace.NewRecorder(t.store)
	ctx = trace.NewContext(ctx, rec)
	rec.Log(models.RoleUser, "client", message, map[string]any{
		"language": language,
		"attempts": t.voter.Attempts(),
	})

	ballot, err := t.voter.Vote(ctx, TranslationPrompt(language, message))
	if err != nil {
		rec.Log(models.RoleAgent, "voter", "Vote failed: "+err.Error(), nil)
		if _, ferr := rec.Finalize(context.WithoutCancel(ctx)); ferr != nil {
			t.voter.logger.Warn("persist trace failed", zap.Error(ferr))
		}
		return nil, fmt.Errorf("translate: %w", err)
	}

	for i, reply := range ballot.Replies {
		rec.Log(models.RoleAgent, "translator", fmt.Sprintf("Attempt %d: %s", i+1, reply), nil)
	}
	rec.Log(models.RoleAgent, "voter", "Best: "+ballot.Best, nil)

	loc, err := rec.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("persist trace: %w", err)
	}

	return &Translation{
		Input:         message,
		Language:      language,
		Translations:  ballot.Replies,
		Best:          ballot.Best,
		RunID:         rec.RunID(),
		TraceLocation: loc,
	}, nil
}
