package detector

import (
	"context"
	"log"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/model"
)

// Overspeed raises an alert when the latest ping exceeds the configured speed
// limit and clears it otherwise. There is no hysteresis band: a single sample
// above or below the threshold flips the state.
type Overspeed struct {
	configs   ConfigReader
	telemetry TelemetryReader
	alerts    alert.StateAlerts
}

// NewOverspeed creates the overspeeding detector.
func NewOverspeed(configs ConfigReader, telemetry TelemetryReader, alerts alert.StateAlerts) *Overspeed {
	return &Overspeed{configs: configs, telemetry: telemetry, alerts: alerts}
}

// Kind implements Detector.
func (d *Overspeed) Kind() model.AlarmKind { return model.KindOverspeeding }

// Run implements Detector.
func (d *Overspeed) Run(ctx context.Context) error {
	configs, err := d.configs.EnabledConfigs(ctx, d.Kind())
	if err != nil {
		return err
	}

	for i := range configs {
		cfg := &configs[i]
		vehicles, err := d.configs.VehiclesForConfig(ctx, cfg.ID)
		if err != nil {
			log.Printf("[Overspeed] vehicles for config %d: %v", cfg.ID, err)
			continue
		}
		for _, vehicle := range vehicles {
			if err := d.check(ctx, cfg, vehicle.VehicleNo); err != nil {
				log.Printf("[Overspeed] vehicle %s: %v", vehicle.VehicleNo, err)
			}
		}
	}
	return nil
}

func (d *Overspeed) check(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string) error {
	latest, err := d.telemetry.LatestPosition(ctx, vehicleNo)
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}

	if latest.SpeedKmh() > cfg.Threshold {
		return d.alerts.Raise(ctx, cfg, vehicleNo, latest.Lat, latest.Lon)
	}
	return d.alerts.Clear(ctx, cfg, vehicleNo)
}
