// Package metrics exposes the engine's Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles the engine's collectors.
type Set struct {
	registry *prometheus.Registry

	CyclesTotal   prometheus.Counter
	CyclesSkipped prometheus.Counter
	CycleDuration prometheus.Histogram
	DetectorErrors *prometheus.CounterVec
	AlertsRaised   *prometheus.CounterVec
}

// New creates and registers the collector set on a fresh registry.
func New() *Set {
	registry := prometheus.NewRegistry()

	s := &Set{
		registry: registry,
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetwatch_cycles_total",
			Help: "Detection cycles started.",
		}),
		CyclesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleetwatch_cycles_skipped_total",
			Help: "Detection cycles skipped by the re-run interval gate.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetwatch_cycle_duration_seconds",
			Help:    "Wall time of a full detection cycle.",
			Buckets: prometheus.DefBuckets,
		}),
		DetectorErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetwatch_detector_errors_total",
			Help: "Detector passes that ended in an error or panic.",
		}, []string{"kind"}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetwatch_alerts_raised_total",
			Help: "Alerts created, by alarm kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		s.CyclesTotal,
		s.CyclesSkipped,
		s.CycleDuration,
		s.DetectorErrors,
		s.AlertsRaised,
	)
	return s
}

// Handler returns the scrape endpoint for this set's registry.
func (s *Set) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
