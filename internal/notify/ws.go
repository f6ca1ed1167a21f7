package notify

import (
	"context"
	"encoding/json"

	"fleetwatch/internal/alert"
)

// Broadcaster pushes a message to all connected dashboard clients.
type Broadcaster interface {
	Broadcast(data []byte)
}

// WSChannel forwards alert notifications to the websocket hub.
type WSChannel struct {
	hub Broadcaster
}

// NewWSChannel creates a websocket channel.
func NewWSChannel(hub Broadcaster) *WSChannel {
	return &WSChannel{hub: hub}
}

// Notify implements alert.Notifier.
func (c *WSChannel) Notify(ctx context.Context, n *alert.Notification) error {
	data, err := json.Marshal(map[string]interface{}{
		"type": "alert",
		"data": n,
	})
	if err != nil {
		return err
	}
	c.hub.Broadcast(data)
	return nil
}
