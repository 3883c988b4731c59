package refine

import (
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Controller tracks refinement iterations and enforces the iteration limit.
type Controller struct {
	// current is the 1-based iteration in progress, 0 before the first.
	current int
	// max is the inclusive iteration limit.
	max int
}

// NewController creates a controller allowing up to maxIterations passes.
func NewController(maxIterations int) (*Controller, error) {
	if maxIterations <= 0 {
		return nil, models.NewValidationError("max iterations", "must be positive")
	}
	return &Controller{max: maxIterations}, nil
}

// ShouldContinue returns false once the last verdict passed or the limit
// has been reached. A nil verdict means nothing has been evaluated yet.
func (c *Controller) ShouldContinue(last *models.Verdict) bool {
	if c.current >= c.max {
		return false
	}
	if last != nil && last.Passed {
		return false
	}
	return true
}

// Increment starts the next iteration.
func (c *Controller) Increment() {
	c.current++
}

// Iteration returns the current iteration number.
func (c *Controller) Iteration() int {
	return c.current
}

// IsAtMax returns true if the current iteration is the last allowed.
func (c *Controller) IsAtMax() bool {
	return c.current >= c.max
}

// MaxIterations returns the iteration limit.
func (c *Controller) MaxIterations() int {
	return c.max
}
