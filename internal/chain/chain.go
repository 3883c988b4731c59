// Package chain runs marketing copy through a fixed sequence of steps:
// generate, validate, and translate when valid.
package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/evaluate"
	"github.com/ShayCichocki/agentpatterns/internal/generate"
	"github.com/ShayCichocki/agentpatterns/internal/logging"
	"github.com/ShayCichocki/agentpatterns/internal/memory"
	"github.com/ShayCichocki/agentpatterns/internal/trace"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// DefaultCallToAction is attached to every generated copy.
const DefaultCallToAction = "Learn more"

// AllChecksPassed is the validation message shown for valid copy.
const AllChecksPassed = "All checks passed!"

// Validation is the displayable outcome of the validation step.
type Validation struct {
	Valid bool `json:"is_valid" yaml:"is_valid"`
	// Feedback lists every problem, or AllChecksPassed.
	Feedback string `json:"feedback" yaml:"feedback"`
}

// Result is the outcome of one chain run.
type Result struct {
	Original      evaluate.Copy  `json:"original_copy" yaml:"original_copy"`
	Validation    Validation     `json:"validation" yaml:"validation"`
	Translated    *evaluate.Copy `json:"translated_copy" yaml:"translated_copy"`
	Language      string         `json:"language" yaml:"language"`
	Entities      string         `json:"entities" yaml:"entities"`
	RunID         string         `json:"run_id" yaml:"run_id"`
	TraceLocation string         `json:"trace_file,omitempty" yaml:"trace_file,omitempty"`
}

// Chain is the sequential marketing pipeline. Its memories persist across
// runs of the same Chain.
type Chain struct {
	gen      generate.Generator
	policy   evaluate.CopyPolicy
	window   *memory.SlidingWindow
	entities *memory.Entities
	store    trace.Store
	logger   *zap.Logger
}

// Option configures a Chain.
type Option func(*Chain)

// WithStore persists each run's trace to s.
func WithStore(s trace.Store) Option {
	return func(c *Chain) { c.store = s }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Chain) { c.logger = logger }
}

// WithPolicy replaces the default copy policy.
func WithPolicy(p evaluate.CopyPolicy) Option {
	return func(c *Chain) { c.policy = p }
}

// New creates a chain whose sliding window keeps memorySize entries.
func New(gen generate.Generator, memorySize int, opts ...Option) (*Chain, error) {
	window, err := memory.NewSlidingWindow(memorySize)
	if err != nil {
		return nil, err
	}
	c := &Chain{
		gen:      gen,
		policy:   evaluate.NewCopyPolicy(),
		window:   window,
		entities: memory.NewEntities(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.OrNop(c.logger)
	return c, nil
}

// GenerationPrompt is the copywriting prompt for a product.
func GenerationPrompt(product string) string {
	return "Create a catchy marketing headline, body and call to action for: " + product
}

// TranslationPrompt is the prompt for translating one copy part.
func TranslationPrompt(language, text string) string {
	return fmt.Sprintf("Translate this marketing phrase to %s: %s", language, text)
}

// SplitCopy turns a generated reply into copy: the headline is the text
// before the first period, the body the whole reply.
func SplitCopy(reply string) evaluate.Copy {
	headline, _, _ := strings.Cut(reply, ".")
	return evaluate.Copy{
		Headline:     strings.TrimSpace(headline),
		Body:         reply,
		CallToAction: DefaultCallToAction,
	}
}

// Run generates copy for product, validates it and, when valid, translates
// each part into language.
func (c *Chain) Run(ctx context.Context, product, language string) (*Result, error) {
	if language == "" {
		return nil, models.NewValidationError("target language", "must not be empty")
	}

	rec := trace.NewRecorder(c.store)
	ctx = trace.NewContext(ctx, rec)

	prompt := GenerationPrompt(product)
	rec.Log(models.RoleUser, "client", prompt, nil)
	reply, err := generate.Prompt(ctx, c.gen, prompt)
	if err != nil {
		c.abort(ctx, rec)
		return nil, fmt.Errorf("generate copy: %w", err)
	}

	original := SplitCopy(reply)
	rec.Log(models.RoleAgent, "generator", "Generated copy: "+encode(original), nil)
	c.window.Add(original.Body)
	c.entities.Ingest(original.Headline)

	verdict := c.policy.Check(original)
	validation := Validation{Valid: verdict.Passed, Feedback: verdict.Feedback}
	if verdict.Passed {
		validation.Feedback = AllChecksPassed
	}
	rec.Log(models.RoleAgent, "validator", "Validation result: "+encode(validation), nil)
	c.window.Add(validation.Feedback)

	var translated *evaluate.Copy
	if verdict.Passed {
		translated, err = c.translate(ctx, original, language)
		if err != nil {
			c.abort(ctx, rec)
			return nil, err
		}
		rec.Log(models.RoleAgent, "translator", "Translated copy: "+encode(translated), nil)
		c.window.Add(translated.Body)
		c.entities.Ingest(translated.Headline)
	}

	loc, err := rec.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("persist trace: %w", err)
	}

	c.logger.Debug("chain finished",
		zap.String("run_id", rec.RunID()),
		zap.Bool("valid", verdict.Passed),
		zap.Int("memory", c.window.Len()),
		zap.String("memory_context", c.Memory()),
	)

	return &Result{
		Original:      original,
		Validation:    validation,
		Translated:    translated,
		Language:      language,
		Entities:      c.Entities(),
		RunID:         rec.RunID(),
		TraceLocation: loc,
	}, nil
}

func (c *Chain) translate(ctx context.Context, original evaluate.Copy, language string) (*evaluate.Copy, error) {
	parts := []string{original.Headline, original.Body, original.CallToAction}
	out := make([]string, len(parts))
	for i, part := range parts {
		reply, err := generate.Prompt(ctx, c.gen, TranslationPrompt(language, part))
		if err != nil {
			return nil, fmt.Errorf("translate copy: %w", err)
		}
		out[i] = reply
	}
	return &evaluate.Copy{Headline: out[0], Body: out[1], CallToAction: out[2]}, nil
}

// Memory returns the sliding-window context.
func (c *Chain) Memory() string {
	return c.window.Context()
}

// Entities returns the entity-memory context.
func (c *Chain) Entities() string {
	return c.entities.Context()
}

func (c *Chain) abort(ctx context.Context, rec *trace.Recorder) {
	if _, err := rec.Finalize(context.WithoutCancel(ctx)); err != nil {
		c.logger.Warn("persist trace failed", zap.String("run_id", rec.RunID()), zap.Error(err))
	}
}

func encode(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(raw)
}
