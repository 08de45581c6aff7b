package observability

import (
	"context"

	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors fed by the engine.
type Metrics struct {
	Transitions      *prometheus.CounterVec
	GuardRejections  *prometheus.CounterVec
	Failures         *prometheus.CounterVec
	CallableDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmtrail_transitions_total",
				Help: "Total number of applied transitions",
			},
			[]string{"entity_type", "attribute", "transition"},
		),
		GuardRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmtrail_guard_rejections_total",
				Help: "Total number of transitions denied by a guard",
			},
			[]string{"entity_type", "attribute", "transition"},
		),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsmtrail_transition_failures_total",
				Help: "Total number of transitions that failed",
			},
			[]string{"entity_type", "attribute", "transition"},
		),
		CallableDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsmtrail_callable_duration_seconds",
				Help:    "Duration of guard, action and callback invocations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"role", "outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.Transitions, m.GuardRejections, m.Failures, m.CallableDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	labels := func(e *domain.TransitionEvent) prometheus.Labels {
		return prometheus.Labels{
			"entity_type": e.EntityType,
			"attribute":   e.Attribute,
			"transition":  e.Transition,
		}
	}
	return domain.LifecycleHooks{
		OnTransitionComplete: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.With(labels(e)).Inc()
		},
		OnGuardRejected: func(_ context.Context, e *domain.TransitionEvent) {
			m.GuardRejections.With(labels(e)).Inc()
		},
		OnTransitionFailed: func(_ context.Context, e *domain.TransitionEvent) {
			m.Failures.With(labels(e)).Inc()
		},
		OnCallable: func(_ context.Context, e *domain.CallableEvent) {
			outcome := "ok"
			if e.Err != nil {
				outcome = "error"
			}
			m.CallableDuration.WithLabelValues(string(e.Role), outcome).Observe(e.Duration.Seconds())
		},
	}
}
