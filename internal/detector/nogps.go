package detector

import (
	"context"
	"log"
	"time"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/model"
)

// NoGpsFeed raises an alert when a vehicle has not reported a position for
// 180 minutes. The cutoff is fixed rather than read from the alarm config's
// threshold value; see DESIGN.md before making it configurable.
type NoGpsFeed struct {
	configs   ConfigReader
	telemetry TelemetryReader
	alerts    alert.StateAlerts
	now       func() time.Time
}

// NewNoGpsFeed creates the telemetry-loss detector.
func NewNoGpsFeed(configs ConfigReader, telemetry TelemetryReader, alerts alert.StateAlerts) *NoGpsFeed {
	return &NoGpsFeed{configs: configs, telemetry: telemetry, alerts: alerts, now: time.Now}
}

// Kind implements Detector.
func (d *NoGpsFeed) Kind() model.AlarmKind { return model.KindNoGpsFeed }

// Run implements Detector.
func (d *NoGpsFeed) Run(ctx context.Context) error {
	configs, err := d.configs.EnabledConfigs(ctx, d.Kind())
	if err != nil {
		return err
	}

	for i := range configs {
		cfg := &configs[i]
		vehicles, err := d.configs.VehiclesForConfig(ctx, cfg.ID)
		if err != nil {
			log.Printf("[NoGpsFeed] vehicles for config %d: %v", cfg.ID, err)
			continue
		}
		for _, vehicle := range vehicles {
			if err := d.check(ctx, cfg, vehicle.VehicleNo); err != nil {
				log.Printf("[NoGpsFeed] vehicle %s: %v", vehicle.VehicleNo, err)
			}
		}
	}
	return nil
}

func (d *NoGpsFeed) check(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string) error {
	latest, err := d.telemetry.LatestPosition(ctx, vehicleNo)
	if err != nil {
		return err
	}

	// No ping at all, or a ping without a usable fix time, counts as lost
	// telemetry immediately.
	if latest == nil || latest.Time().IsZero() {
		lat, lon := 0.0, 0.0
		if latest != nil {
			lat, lon = latest.Lat, latest.Lon
		}
		return d.alerts.Raise(ctx, cfg, vehicleNo, lat, lon)
	}

	if d.now().Sub(latest.Time()) >= noFeedThreshold {
		return d.alerts.Raise(ctx, cfg, vehicleNo, latest.Lat, latest.Lon)
	}
	return d.alerts.Clear(ctx, cfg, vehicleNo)
}
