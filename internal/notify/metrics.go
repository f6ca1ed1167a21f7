package notify

import (
	"context"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/metrics"
)

// MetricsHook counts raised alerts per kind. Riding the notification fanout
// keeps the lifecycle manager free of instrumentation concerns.
type MetricsHook struct {
	set *metrics.Set
}

// NewMetricsHook creates the counting hook.
func NewMetricsHook(set *metrics.Set) *MetricsHook {
	return &MetricsHook{set: set}
}

// Notify implements alert.Notifier.
func (h *MetricsHook) Notify(ctx context.Context, n *alert.Notification) error {
	h.set.AlertsRaised.WithLabelValues(string(n.Kind)).Inc()
	return nil
}
