package generate

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ShayCichocki/agentpatterns/pkg/models"
)

// Metrics exposes Prometheus collectors for generation calls.
type Metrics struct {
	requests *prometheus.CounterVec
	tokens   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns collectors registered once with the default registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics registers the collectors with reg, reusing any that are
// already registered. Other registration errors panic.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agentpatterns",
				Subsystem: "generation",
				Name:      "requests_total",
				Help:      "Generation calls by backend and outcome.",
			},
			[]string{"backend", "outcome"},
		),
		tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "agentpatterns",
				Subsystem: "generation",
				Name:      "tokens_total",
				Help:      "Token units consumed by backend and direction.",
			},
			[]string{"backend", "direction"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "agentpatterns",
				Subsystem: "generation",
				Name:      "duration_seconds",
				Help:      "Latency of generation calls.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"backend"},
		),
	}

	m.requests = registerCounterVec(reg, m.requests)
	m.tokens = registerCounterVec(reg, m.tokens)
	if err := reg.Register(m.duration); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		m.duration = already.ExistingCollector.(*prometheus.HistogramVec)
	}
	return m
}

func registerCounterVec(reg prometheus.Registerer, c *prometheus.CounterVec) *prometheus.CounterVec {
	if err := reg.Register(c); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			panic(err)
		}
		return already.ExistingCollector.(*prometheus.CounterVec)
	}
	return c
}

// Instrumented records request, token and latency metrics around a generator.
type Instrumented struct {
	inner   Generator
	backend string
	metrics *Metrics
	now     func() time.Time
}

// Instrument wraps g. A nil metrics uses DefaultMetrics.
func Instrument(g Generator, backend string, metrics *Metrics) *Instrumented {
	if metrics == nil {
		metrics = DefaultMetrics()
	}
	return &Instrumented{inner: g, backend: backend, metrics: metrics, now: time.Now}
}

// Generate implements Generator.
func (i *Instrumented) Generate(ctx context.Context, turns []models.Turn) (*models.GenerationResult, error) {
	start := i.now()
	res, err := i.inner.Generate(ctx, turns)
	i.metrics.duration.WithLabelValues(i.backend).Observe(i.now().Sub(start).Seconds())

	if err != nil {
		i.metrics.requests.WithLabelValues(i.backend, "error").Inc()
		return nil, err
	}
	i.metrics.requests.WithLabelValues(i.backend, "ok").Inc()
	i.metrics.tokens.WithLabelValues(i.backend, "prompt").Add(float64(res.Usage.PromptUnits))
	i.metrics.tokens.WithLabelValues(i.backend, "completion").Add(float64(res.Usage.CompletionUnits))
	return res, nil
}
