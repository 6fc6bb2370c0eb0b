// Package metrics holds the Prometheus collectors for composition runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "certforge"

// Metrics is safe to use through a nil pointer; every method becomes a no-op.
type Metrics struct {
	CompositionsTotal   *prometheus.CounterVec
	CompositionDuration prometheus.Histogram
	QualityScore        prometheus.Histogram
	AssetFailuresTotal  *prometheus.CounterVec
	JobsClaimedTotal    prometheus.Counter
}

// New creates and registers all collectors on reg (the default registerer when nil).
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		CompositionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compose",
			Name:      "runs_total",
			Help:      "Composition runs by result (ok, failed, cancelled).",
		}, []string{"result"}),
		CompositionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "compose",
			Name:      "duration_seconds",
			Help:      "Wall time of a composition run.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		QualityScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "compose",
			Name:      "quality_score",
			Help:      "Quality score of composed certificates.",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}),
		AssetFailuresTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "assets",
			Name:      "failures_total",
			Help:      "Asset lookups or decodes that were skipped, by kind.",
		}, []string{"kind"}),
		JobsClaimedTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "claimed_total",
			Help:      "Composition jobs claimed by workers.",
		}),
	}
}

func (m *Metrics) ObserveComposition(result string, d time.Duration, score int) {
	if m == nil {
		return
	}
	m.CompositionsTotal.WithLabelValues(result).Inc()
	m.CompositionDuration.Observe(d.Seconds())
	if result == "ok" {
		m.QualityScore.Observe(float64(score))
	}
}

func (m *Metrics) AssetFailure(kind string) {
	if m == nil {
		return
	}
	m.AssetFailuresTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) JobClaimed() {
	if m == nil {
		return
	}
	m.JobsClaimedTotal.Inc()
}
