package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fleetwatch/internal/model"
)

const recentAlertsKey = "fleet:alerts:recent"

// AlertCache keeps the latest alert per vehicle and a rolling list of recent
// alerts in Redis for quick dashboard lookups. All writes are best-effort.
type AlertCache struct {
	redis *redis.Client
}

// NewAlertCache creates an alert cache.
func NewAlertCache(redisClient *redis.Client) *AlertCache {
	return &AlertCache{redis: redisClient}
}

// Put caches an alert as the vehicle's latest and pushes it onto the recent
// list, trimming the list to the last 100 entries.
func (c *AlertCache) Put(ctx context.Context, alert *model.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("fleet:alert:latest:%s", alert.VehicleNo)
	if err := c.redis.Set(ctx, key, data, 24*time.Hour).Err(); err != nil {
		return err
	}

	if err := c.redis.LPush(ctx, recentAlertsKey, data).Err(); err != nil {
		return err
	}
	return c.redis.LTrim(ctx, recentAlertsKey, 0, 99).Err()
}

// Recent returns up to n recently raised alerts, newest first.
func (c *AlertCache) Recent(ctx context.Context, n int64) ([]model.Alert, error) {
	raw, err := c.redis.LRange(ctx, recentAlertsKey, 0, n-1).Result()
	if err != nil {
		return nil, err
	}

	alerts := make([]model.Alert, 0, len(raw))
	for _, item := range raw {
		var alert model.Alert
		if err := json.Unmarshal([]byte(item), &alert); err != nil {
			continue
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}
