package observability

import (
	"log/slog"

	"github.com/aretw0/equaio/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the derivation collectors.
type Metrics struct {
	Steps    *prometheus.CounterVec
	Failures *prometheus.CounterVec
	Depth    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equaio_steps_total",
				Help: "Total number of committed derivation steps",
			},
			[]string{"op"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "equaio_failures_total",
				Help: "Total number of rejected derivation operations",
			},
			[]string{"op"},
		),
		Depth: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "equaio_history_length",
				Help:    "History length after each committed step",
				Buckets: prometheus.ExponentialBuckets(1, 2, 8),
			},
		),
	}
	for _, c := range []prometheus.Collector{m.Steps, m.Failures, m.Depth} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(e *domain.StepEvent) {
			m.Steps.WithLabelValues(e.Op).Inc()
			m.Depth.Observe(float64(e.HistoryLen))
		},
		OnFailure: func(e *domain.FailureEvent) {
			m.Failures.WithLabelValues(e.Op).Inc()
		},
	}
}

// LogHooks returns hooks that log every step at Info and every failure at Warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStep: func(e *domain.StepEvent) {
			logger.Info("step",
				"op", e.Op,
				"label", e.Label,
				"expression", e.Expression.String(),
				"history_len", e.HistoryLen,
			)
		},
		OnFailure: func(e *domain.FailureEvent) {
			logger.Warn("operation rejected", "op", e.Op, "error", e.Err)
		},
	}
}
