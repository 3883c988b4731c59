package api

import (
	"sync"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Pricing is a per-million-token rate card in USD.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// SonnetPricing approximates list pricing for the Sonnet models.
var SonnetPricing = Pricing{InputPerMillion: 3, OutputPerMillion: 15}

// Cost prices a usage figure.
func (p Pricing) Cost(u models.Usage) float64 {
	return float64(u.PromptUnits)/1_000_000*p.InputPerMillion +
		float64(u.CompletionUnits)/1_000_000*p.OutputPerMillion
}

// UsageReport is a snapshot of a TokenTracker.
type UsageReport struct {
	Calls   int
	Usage   models.Usage
	CostUSD float64
}

// TokenTracker accumulates usage across remote calls. It is safe for
// concurrent use; a single tracker may be shared by several clients.
type TokenTracker struct {
	mu      sync.Mutex
	pricing Pricing
	usage   models.Usage
	calls   int
}

// NewTokenTracker creates an empty tracker that prices usage with p.
func NewTokenTracker(p Pricing) *TokenTracker {
	return &TokenTracker{pricing: p}
}

// Record adds one completed call.
func (t *TokenTracker) Record(u models.Usage) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.usage.PromptUnits += u.PromptUnits
	t.usage.CompletionUnits += u.CompletionUnits
	t.calls++
}

// Report returns the totals so far.
func (t *TokenTracker) Report() UsageReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	return UsageReport{
		Calls:   t.calls,
		Usage:   t.usage,
		CostUSD: t.pricing.Cost(t.usage),
	}
}
