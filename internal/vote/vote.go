// Package vote fans a prompt out to several concurrent generation calls and
// picks the most common reply.
package vote

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/agentpatterns/internal/generate"
	"github.com/ShayCichocki/agentpatterns/internal/logging"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Ballot is the outcome of one vote.
type Ballot struct {
	// Replies are in attempt order, not completion order.
	Replies []string
	Best    string
}

// Voter issues Attempts identical generation calls per vote.
type Voter struct {
	gen      generate.Generator
	attempts int
	logger   *zap.Logger
}

// NewVoter creates a voter. attempts must be positive.
func NewVoter(gen generate.Generator, attempts int, logger *zap.Logger) (*Voter, error) {
	if attempts <= 0 {
		return nil, models.NewValidationError("vote attempts", "must be positive")
	}
	return &Voter{gen: gen, attempts: attempts, logger: logging.OrNop(logger)}, nil
}

// Attempts returns the number of calls per vote.
func (v *Voter) Attempts() int {
	return v.attempts
}

// Vote runs all attempts concurrently and waits for every one. Any failure
// fails the whole vote and cancels the attempts still running.
func (v *Voter) Vote(ctx context.Context, prompt string) (*Ballot, error) {
	replies := make([]string, v.attempts)

	g, gctx := errgroup.WithContext(ctx)
	for i := range replies {
		g.Go(func() error {
			res, err := v.gen.Generate(gctx, []models.Turn{models.UserTurn(prompt)})
			if err != nil {
				return fmt.Errorf("attempt %d: %w", i+1, err)
			}
			replies[i] = res.Reply
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := Majority(replies)
	v.logger.Debug("vote finished", zap.Int("attempts", v.attempts), zap.String("best", best))
	return &Ballot{Replies: replies, Best: best}, nil
}

// Majority returns the most frequent reply. Ties go to the reply that
// appears first. An empty list yields "".
func Majority(replies []string) string {
	counts := make(map[string]int, len(replies))
	for _, r := range replies {
		counts[r]++
	}
	best, bestCount := "", 0
	for _, r := range replies {
		if counts[r] > bestCount {
			best, bestCount = r, counts[r]
		}
	}
	return best
}
