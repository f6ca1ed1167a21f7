package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"fleetwatch/internal/alert"
)

// NATSChannel publishes alert notifications to fleet.alert.<KIND> and a
// per-vehicle subject, mirroring how the ingestion side announces batches.
type NATSChannel struct {
	conn *nats.Conn
}

// NewNATSChannel creates a NATS channel.
func NewNATSChannel(conn *nats.Conn) *NATSChannel {
	return &NATSChannel{conn: conn}
}

// Notify implements alert.Notifier.
func (c *NATSChannel) Notify(ctx context.Context, n *alert.Notification) error {
	data, err := json.Marshal(map[string]interface{}{
		"alert_id":   n.AlertID,
		"kind":       n.Kind,
		"vehicle_no": n.VehicleNo,
		"details":    n.Details,
		"lat":        n.Lat,
		"lon":        n.Lon,
	})
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("fleet.alert.%s", n.Kind)
	if err := c.conn.Publish(subject, data); err != nil {
		return err
	}

	vehicleSubject := fmt.Sprintf("fleet.alert.%s.%s", n.Kind, n.VehicleNo)
	return c.conn.Publish(vehicleSubject, data)
}
