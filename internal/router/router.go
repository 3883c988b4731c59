// Package router detects the language of a message and hands it to the
// handler registered for that language.
package router

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentpatterns/internal/generate"
	"github.com/ShayCichocki/agentpatterns/internal/logging"
	"github.com/ShayCichocki/agentpatterns/internal/trace"
	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Unknown is the language reported when detection fails or no handler is
// registered.
const Unknown = "unknown"

// Handler answers a message in one language.
type Handler func(ctx context.Context, text string) (string, error)

// Route is the outcome of routing one message.
type Route struct {
	Input         string `json:"input" yaml:"input"`
	Language      string `json:"language" yaml:"language"`
	Response      string `json:"response" yaml:"response"`
	RunID         string `json:"run_id" yaml:"run_id"`
	TraceLocation string `json:"trace_file,omitempty" yaml:"trace_file,omitempty"`
}

// Router dispatches messages by detected language.
type Router struct {
	detector Detector
	store    trace.Store
	logger   *zap.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
}

// Option configures a Router.
type Option func(*Router)

// WithDetector replaces the default whatlanggo detector.
func WithDetector(d Detector) Option {
	return func(r *Router) { r.detector = d }
}

// WithStore persists each routed message's trace to s.
func WithStore(s trace.Store) Option {
	return func(r *Router) { r.store = s }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// New creates a router with handlers for English, Spanish and French.
// English is echoed; Spanish and French are translated to English with gen.
func New(gen generate.Generator, opts ...Option) *Router {
	r := &Router{
		detector: WhatlangDetector{},
		handlers: make(map[string]Handler),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger)

	r.Register("en", func(ctx context.Context, text string) (string, error) {
		return "[en] " + text, nil
	})
	r.Register("es", TranslateToEnglish(gen, "es"))
	r.Register("fr", TranslateToEnglish(gen, "fr"))
	return r
}

// TranslateToEnglish returns a handler that asks gen for an English
// translation and tags the reply with the source language.
func TranslateToEnglish(gen generate.Generator, code string) Handler {
	return func(ctx context.Context, text string) (string, error) {
		reply, err := generate.Prompt(ctx, gen, "Translate this to English: "+text)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("[%s] %s", code, reply), nil
	}
}

// Register sets the handler for an ISO 639-1 code, replacing any existing one.
func (r *Router) Register(code string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[code] = h
}

// Languages returns the registered language codes, sorted.
func (r *Router) Languages() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.handlers))
	for code := range r.handlers {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (r *Router) handler(code string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[code]
	return h, ok
}

// Handle routes text. Detection failures and unregistered languages yield
// "[unknown] text"; only a handler error is returned as an error.
func (r *Router) Handle(ctx context.Context, text string) (*Route, error) {
	rec := trace.NewRecorder(r.store)
	ctx = trace.NewContext(ctx, rec)
	rec.Log(models.RoleUser, "client", text, nil)

	code, err := r.detector.Detect(text)
	if err != nil {
		r.logger.Debug("language detection failed", zap.Error(err))
		code = Unknown
	}
	rec.Log(models.RoleAgent, "router", "Detected language: "+code, nil)

	route := &Route{Input: text, Language: code, RunID: rec.RunID()}

	h, ok := r.handler(code)
	if !ok {
		if code != Unknown {
			r.logger.Debug("no handler for language",
				zap.String("language", code),
				zap.Strings("registered", r.Languages()),
			)
		}
		route.Language = Unknown
		route.Response = fmt.Sprintf("[%s] %s", Unknown, text)
	} else {
		resp, err := h(ctx, text)
		if err != nil {
			rec.Log(models.RoleAgent, "handler", "Handler failed: "+err.Error(), nil)
			if _, ferr := rec.Finalize(context.WithoutCancel(ctx)); ferr != nil {
				r.logger.Warn("persist trace failed", zap.Error(ferr))
			}
			return nil, fmt.Errorf("handle %s message: %w", code, err)
		}
		route.Response = resp
	}
	rec.Log(models.RoleAgent, "handler", route.Response, map[string]any{"language": route.Language})

	loc, err := rec.Finalize(ctx)
	if err != nil {
		return nil, fmt.Errorf("persist trace: %w", err)
	}
	route.TraceLocation = loc
	return route, nil
}
