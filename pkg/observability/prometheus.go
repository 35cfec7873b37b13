package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/wickerworks/osier/pkg/domain"
)

// PrometheusRecorder records engine lifecycle events as Prometheus metrics.
type PrometheusRecorder struct {
	runsTotal    *prometheus.CounterVec
	unitsTotal   *prometheus.CounterVec
	unitDuration *prometheus.HistogramVec
	stepDuration prometheus.Histogram
	mergedFields prometheus.Counter
	unitFailures *prometheus.CounterVec
}

// NewPrometheusRecorder creates a recorder registered on the given registerer
// (pass prometheus.DefaultRegisterer for the process-global registry).
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)
	return &PrometheusRecorder{
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osier_runs_total",
				Help: "Total number of finished runs by status",
			},
			[]string{"status"},
		),
		unitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osier_unit_invocations_total",
				Help: "Total number of unit invocations by unit and outcome",
			},
			[]string{"unit", "status"},
		),
		unitDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "osier_unit_duration_seconds",
				Help:    "Duration of unit invocations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"unit"},
		),
		stepDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "osier_step_duration_seconds",
				Help:    "Duration of fan-out steps (projection to merge) in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		mergedFields: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "osier_merged_fields_total",
				Help: "Total number of parent-state fields changed by merges",
			},
		),
		unitFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "osier_unit_failures_total",
				Help: "Total number of failed unit invocations by unit",
			},
			[]string{"unit"},
		),
	}
}

// Runs exposes the per-status run counter.
func (p *PrometheusRecorder) Runs() *prometheus.CounterVec { return p.runsTotal }

// Units exposes the per-unit invocation counter.
func (p *PrometheusRecorder) Units() *prometheus.CounterVec { return p.unitsTotal }

// Hooks exposes the recorder as engine lifecycle hooks.
func (p *PrometheusRecorder) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRunFinish: func(_ context.Context, ev *domain.RunEvent) {
			p.runsTotal.WithLabelValues(string(ev.Status)).Inc()
		},
		OnStepMerge: func(_ context.Context, ev *domain.StepEvent) {
			p.stepDuration.Observe(ev.Duration.Seconds())
			if ev.Delta != nil {
				p.mergedFields.Add(float64(len(ev.Delta.Changed)))
			}
		},
		OnUnitFinish: func(_ context.Context, ev *domain.UnitEvent) {
			status := "success"
			if ev.IsError {
				status = "error"
				p.unitFailures.WithLabelValues(ev.UnitID).Inc()
			}
			p.unitsTotal.WithLabelValues(ev.UnitID, status).Inc()
			p.unitDuration.WithLabelValues(ev.UnitID).Observe(ev.Duration.Seconds())
		},
	}
}
