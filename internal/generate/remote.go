package generate

import (
	"context"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Completer is the subset of api.Client used by Remote.
type Completer interface {
	Complete(ctx context.Context, turns []models.Turn) (string, models.Usage, error)
}

// Remote generates through a hosted model.
type Remote struct {
	client Completer
	name   string
}

// NewRemote wraps client. name labels errors and metrics, typically the model.
func NewRemote(client Completer, name string) *Remote {
	if name == "" {
		name = "remote"
	}
	return &Remote{client: client, name: name}
}

// Generate forwards the turns; every failure is reported as a ProviderError.
func (r *Remote) Generate(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error) {
	reply, usage, err := r.client.Complete(ctx, turns)
	if err != nil {
		return nil, &ProviderError{Backend: r.name, Err: err}
	}
	return &models.GenerationResult{Reply: reply, Usage: usage}, nil
}
