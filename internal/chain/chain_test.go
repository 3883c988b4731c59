package chain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ShayCichocki/agentpatterns/internal/evaluate"
	"github.com/ShayCichocki/agentpatterns/internal/generate"
	"github.com/ShayCichocki/agentpatterns/internal/trace"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

const kettleCopy = "Meet the SmartKettle. It boils water in half the time, learns your schedule and keeps your tea at the perfect temperature all day."

// copywriter answers copy prompts with kettleCopy and everything else with
// the stub's translation rules.
func copywriter() generate.Generator {
	stub := generate.NewStub()
	return generate.Func(func(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error) {
		if strings.HasPrefix(turns[len(turns)-1].Content, "Create a catchy") {
			return &models.GenerationResult{Reply: kettleCopy}, nil
		}
		return stub.Generate(ctx, turns)
	})
}

func TestNew_InvalidMemorySize(t *testing.T) {
	if _, err := New(generate.NewStub(), 0); !errors.Is(err, models.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestSplitCopy(t *testing.T) {
	got := SplitCopy(kettleCopy)
	if got.Headline != "Meet the SmartKettle" {
		t.Errorf("Headline = %q", got.Headline)
	}
	if got.Body != kettleCopy || got.CallToAction != DefaultCallToAction {
		t.Errorf("copy = %+v", got)
	}

	if got := SplitCopy("no period here"); got.Headline != "no period here" {
		t.Errorf("Headline without period = %q", got.Headline)
	}
}

func TestChain_ValidCopyIsTranslated(t *testing.T) {
	store := trace.NewJSONLStore(t.TempDir())
	c, err := New(copywriter(), 4, WithStore(store))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := c.Run(context.Background(), "a smart kettle", "es")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !res.Validation.Valid || res.Validation.Feedback != AllChecksPassed {
		t.Errorf("Validation = %+v", res.Validation)
	}
	if res.Translated == nil {
		t.Fatal("valid copy should be translated")
	}
	want := evaluate.Copy{
		Headline:     "[es] Meet the SmartKettle",
		Body:         "[es] " + kettleCopy,
		CallToAction: "Más información",
	}
	if *res.Translated != want {
		t.Errorf("Translated = %+v, want %+v", *res.Translated, want)
	}
	if res.Entities != "Known entities: Meet, SmartKettle" {
		t.Errorf("Entities = %q", res.Entities)
	}

	events, err := store.Load(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	senders := make([]string, len(events))
	for i, ev := range events {
		senders[i] = ev.Sender
	}
	if strings.Join(senders, ",") != "client,generator,validator,translator" {
		t.Errorf("senders = %v", senders)
	}
	if events[0].Content != GenerationPrompt("a smart kettle") {
		t.Errorf("client event = %q", events[0].Content)
	}

	// body, validation message, translated body
	if got := strings.Count(c.Memory(), "\n") + 1; got != 3 {
		t.Errorf("memory entries = %d, want 3", got)
	}
}

func TestChain_StubCopyFailsValidation(t *testing.T) {
	c, err := New(generate.NewStub(), 4)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := c.Run(context.Background(), "a smart kettle", "fr")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.Validation.Valid {
		t.Error("stub headline is too long and should fail validation")
	}
	if res.Validation.Feedback != evaluate.FeedbackHeadlineTooLong {
		t.Errorf("Feedback = %q", res.Validation.Feedback)
	}
	if res.Translated != nil {
		t.Error("invalid copy must not be translated")
	}
	if res.Original.Body != generate.MarketingCopy {
		t.Errorf("Body = %q", res.Original.Body)
	}
	if res.Entities != "Known entities: Introducing" {
		t.Errorf("Entities = %q", res.Entities)
	}
}

func TestChain_MemoryIsBounded(t *testing.T) {
	c, _ := New(copywriter(), 2)
	for i := 0; i < 3; i++ {
		if _, err := c.Run(context.Background(), "kettle", "es"); err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
	}
	if lines := strings.Split(c.Memory(), "\n"); len(lines) != 2 {
		t.Errorf("memory = %d entries, want 2", len(lines))
	}
}

func TestChain_LogsMemoryContext(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c, _ := New(generate.NewStub(), 4, WithLogger(zap.New(core)))

	if _, err := c.Run(context.Background(), "a smart kettle", "es"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	entries := logs.FilterMessage("chain finished").All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	got, _ := entries[0].ContextMap()["memory_context"].(string)
	if got != c.Memory() {
		t.Errorf("memory_context = %q, want %q", got, c.Memory())
	}
	if !strings.Contains(got, evaluate.FeedbackHeadlineTooLong) {
		t.Errorf("memory_context = %q, want the validation feedback", got)
	}
}

func TestChain_EmptyLanguage(t *testing.T) {
	c, _ := New(copywriter(), 2)
	if _, err := c.Run(context.Background(), "kettle", ""); !errors.Is(err, models.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestChain_GenerationError(t *testing.T) {
	boom := errors.New("boom")
	gen := generate.Func(func(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error) {
		return nil, &generate.ProviderError{Backend: "test", Err: boom}
	})
	c, _ := New(gen, 2)
	if _, err := c.Run(context.Background(), "kettle", "es"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
