package engine

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/germanamz/playground/pkg/chats/message"
	"github.com/germanamz/playground/pkg/modeladapter"
)

// Generation status label values.
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusRateLimited = "rate_limited"
)

// UnknownLabel replaces the provider and model labels of requests for model
// ids no provider serves, keeping label cardinality bounded.
const UnknownLabel = "unknown"

// Metrics holds the Prometheus collectors for model calls.
type Metrics struct {
	Generations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Tokens      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playground_generations_total",
				Help: "Total number of generation requests by provider, model and status",
			},
			[]string{"provider", "model", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "playground_generation_duration_seconds",
				Help:    "Duration of model calls in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"provider"},
		),
		Tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "playground_generation_tokens_total",
				Help: "Tokens reported by providers, split by direction (input/output)",
			},
			[]string{"provider", "direction"},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Generations, m.Duration, m.Tokens)
	}

	return m
}

func (m *Metrics) observe(provider, model string, d time.Duration, msg message.Message, err error) {
	if m == nil {
		return
	}

	m.Duration.WithLabelValues(provider).Observe(d.Seconds())
	m.Generations.WithLabelValues(provider, model, statusOf(err)).Inc()

	if tc, ok := modeladapter.UsageOf(msg); ok {
		m.Tokens.WithLabelValues(provider, "input").Add(float64(tc.InputTokens))
		m.Tokens.WithLabelValues(provider, "output").Add(float64(tc.OutputTokens))
	}
}

func (m *Metrics) rejected(provider, model string) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(provider, model, StatusError).Inc()
}

func statusOf(err error) string {
	if err == nil {
		return StatusSuccess
	}
	var rle *modeladapter.RateLimitError
	if errors.As(err, &rle) {
		return StatusRateLimited
	}
	return StatusError
}
