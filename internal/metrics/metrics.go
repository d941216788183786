package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"okr-planner-backend/internal/events"
)

// Metrics holds suggestion counters on a private registry.
type Metrics struct {
	registry    *prometheus.Registry
	Suggestions *prometheus.CounterVec
	Strategies  *prometheus.CounterVec
	Generation  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Suggestions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_suggestions_total",
			Help: "Suggestion runs by kind and outcome.",
		}, []string{"kind", "outcome"}),
		Strategies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "okr_extraction_strategy_total",
			Help: "Extraction step that produced the candidate records.",
		}, []string{"kind", "strategy"}),
		Generation: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "okr_generation_duration_seconds",
			Help:    "Time spent waiting for the generation endpoint.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		}, []string{"kind"}),
	}
	m.registry.MustRegister(m.Suggestions, m.Strategies, m.Generation)
	return m
}

// Observe records one suggestion run. It is meant to be subscribed to the events hub.
func (m *Metrics) Observe(_ context.Context, s events.Suggestion) {
	kind := string(s.Kind)
	m.Suggestions.WithLabelValues(kind, string(s.Outcome)).Inc()
	if s.Strategy != "" {
		m.Strategies.WithLabelValues(kind, s.Strategy).Inc()
	}
	if s.Duration > 0 {
		m.Generation.WithLabelValues(kind).Observe(s.Duration.Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
