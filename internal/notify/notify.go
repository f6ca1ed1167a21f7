// Package notify implements the outbound notification port. Every channel is
// best-effort: by the time a notification is attempted the alert row has
// already persisted, so failures are surfaced as errors for the caller to
// log and are never retried into the alert path.
package notify

import (
	"context"
	"log"

	"fleetwatch/internal/alert"
)

// Fanout dispatches one notification to every configured channel. Channel
// failures are logged individually; Fanout itself never fails.
type Fanout struct {
	channels []alert.Notifier
}

// NewFanout creates a fanout over the given channels. Nil entries are
// ignored.
func NewFanout(channels ...alert.Notifier) *Fanout {
	kept := make([]alert.Notifier, 0, len(channels))
	for _, ch := range channels {
		if ch != nil {
			kept = append(kept, ch)
		}
	}
	return &Fanout{channels: kept}
}

// Notify implements alert.Notifier.
func (f *Fanout) Notify(ctx context.Context, n *alert.Notification) error {
	for _, ch := range f.channels {
		if err := ch.Notify(ctx, n); err != nil {
			log.Printf("[Notify] channel %T failed for alert %d: %v", ch, n.AlertID, err)
		}
	}
	return nil
}
