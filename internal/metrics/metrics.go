// Package metrics exposes plan building and launching as Prometheus collectors.
package metrics

import (
	"context"

	"github.com/aretw0/launchplan/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors fed by lifecycle hooks.
type Metrics struct {
	PlansBuilt        *prometheus.CounterVec
	BuildDuration     *prometheus.HistogramVec
	TemplateExpansion *prometheus.CounterVec
	NodeStarts        *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PlansBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchplan_plans_built_total",
				Help: "Total number of plan builds by outcome",
			},
			[]string{"plan", "outcome"},
		),
		BuildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launchplan_build_duration_seconds",
				Help:    "Duration of plan builds, inclusions and template expansion included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"plan"},
		),
		TemplateExpansion: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchplan_template_expansions_total",
				Help: "Total number of artifact expansions by cache result",
			},
			[]string{"key", "cache"},
		),
		NodeStarts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launchplan_node_starts_total",
				Help: "Total number of nodes handed to a runtime",
			},
			[]string{"executable"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.PlansBuilt, m.BuildDuration, m.TemplateExpansion, m.NodeStarts)
	}
	return m
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPlanBuilt: func(_ context.Context, e *domain.PlanEvent) {
			outcome := "success"
			if e.Err != nil {
				outcome = "failure"
			}
			m.PlansBuilt.WithLabelValues(e.Plan, outcome).Inc()
			m.BuildDuration.WithLabelValues(e.Plan).Observe(e.Duration.Seconds())
		},
		OnTemplateExpanded: func(_ context.Context, e *domain.ArtifactEvent) {
			cache := "miss"
			if e.CacheHit {
				cache = "hit"
			}
			m.TemplateExpansion.WithLabelValues(e.Key, cache).Inc()
		},
		OnNodeStart: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeStarts.WithLabelValues(e.Node.ExecutableID()).Inc()
		},
	}
}
