package generate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// ErrCircuitOpen is returned when the breaker is open and rejecting calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// Breaker stops calling a failing generator after maxFailures consecutive
// errors and rejects calls for cooldown before letting one trial call through.
// Rejections are ProviderErrors so a surrounding Fallback absorbs them.
type Breaker struct {
	inner       Generator
	name        string
	maxFailures int
	cooldown    time.Duration

	mu       sync.Mutex
	state    breakerState
	failures int
	openedAt time.Time
	now      func() time.Time // for testing
}

// NewBreaker wraps inner. maxFailures <= 0 is treated as 1.
func NewBreaker(inner Generator, name string, maxFailures int, cooldown time.Duration) *Breaker {
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &Breaker{
		inner:       inner,
		name:        name,
		maxFailures: maxFailures,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// Generate implements Generator.
func (b *Breaker) Generate(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error) {
	if !b.allowRequest() {
		return nil, &ProviderError{Backend: b.name, Err: ErrCircuitOpen}
	}

	res, err := b.inner.Generate(ctx, turns)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		// The caller giving up says nothing about the backend's health.
		if !canceled(err) {
			b.onFailure()
		}
		return nil, err
	}
	b.onSuccess()
	return res, nil
}

// Open reports whether the breaker is currently rejecting calls.
func (b *Breaker) Open() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state == stateOpen && b.now().Sub(b.openedAt) < b.cooldown
}

func (b *Breaker) allowRequest() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case stateClosed, stateHalfOpen:
		return true
	case stateOpen:
		if b.now().Sub(b.openedAt) >= b.cooldown {
			b.state = stateHalfOpen
			return true
		}
	}
	return false
}

// onFailure must be called with b.mu held.
func (b *Breaker) onFailure() {
	b.failures++
	if b.state == stateHalfOpen || b.failures >= b.maxFailures {
		b.state = stateOpen
		b.openedAt = b.now()
	}
}

// onSuccess must be called with b.mu held.
func (b *Breaker) onSuccess() {
	b.failures = 0
	b.state = stateClosed
}
