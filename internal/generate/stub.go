package generate

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// MarketingCopy is the stub's reply to any copywriting prompt.
const MarketingCopy = "Introducing our latest innovation – a product that seamlessly blends " +
	"cutting‑edge technology with everyday usability. Unlock new possibilities today!"

var stubTranslations = map[string]map[string]string{
	"es": {
		"Buy now":     "Comprar ahora",
		"Learn more":  "Más información",
		"Try it free": "Pruébalo gratis",
	},
	"fr": {
		"Buy now":     "Achetez maintenant",
		"Learn more":  "En savoir plus",
		"Try it free": "Essayez gratuitement",
	},
}

// StoryOutlines are handed out in order, wrapping around.
var StoryOutlines = []string{
	"An unexpected journey leads to self‑discovery.",
	"A mysterious artifact sparks an intergalactic adventure.",
	"A detective unravels secrets in a future metropolis.",
}

// Stub is a deterministic rule-based generator used when no remote backend
// is configured and as the fallback behind one.
type Stub struct {
	next atomic.Uint64
}

// NewStub creates a stub generator.
func NewStub() *Stub {
	return &Stub{}
}

// Generate answers the last turn's content. It never fails.
func (s *Stub) Generate(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error) {
	reply := s.respond(lastContent(turns))
	units := max(1, len(strings.Fields(reply))/5)
	return &models.GenerationResult{
		Reply: reply,
		Usage: models.Usage{PromptUnits: units, CompletionUnits: units},
	}, nil
}

func (s *Stub) respond(prompt string) string {
	lower := strings.ToLower(prompt)

	switch {
	case strings.Contains(lower, "marketing copy"), strings.Contains(lower, "headline"):
		return MarketingCopy
	case strings.Contains(lower, "translate"):
		if reply, ok := translate(prompt); ok {
			return reply
		}
	}

	if strings.Contains(lower, "story outline") {
		idx := (s.next.Add(1) - 1) % uint64(len(StoryOutlines))
		outline := StoryOutlines[idx]
		if i := strings.Index(lower, "feedback:"); i >= 0 {
			feedback := strings.TrimSpace(prompt[i+len("feedback:"):])
			return fmt.Sprintf("%s Twist: %s.", outline, strings.TrimSuffix(feedback, "."))
		}
		return outline
	}
	return "OK"
}

// translate handles "Translate ... to <lang>: <text>". The language is the
// first two letters of the word after the last " to " before the colon.
func translate(prompt string) (string, bool) {
	head, text, found := strings.Cut(prompt, ":")
	if !found {
		return "", false
	}
	lowerHead := strings.ToLower(head)
	i := strings.LastIndex(lowerHead, " to ")
	if i < 0 {
		return "", false
	}
	fields := strings.Fields(lowerHead[i+len(" to "):])
	if len(fields) == 0 {
		return "", false
	}
	lang := fields[0]
	if len(lang) > 2 {
		lang = lang[:2]
	}

	text = strings.TrimSpace(text)
	if phrase, ok := stubTranslations[lang][text]; ok {
		return phrase, true
	}
	return fmt.Sprintf("[%s] %s", lang, text), true
}
