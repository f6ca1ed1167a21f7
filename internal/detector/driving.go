package detector

import (
	"context"
	"log"
	"time"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/model"
)

// ContinuousDriving raises an alert when a vehicle has accumulated more
// driving time than the configured number of hours without a qualifying rest.
type ContinuousDriving struct {
	configs   ConfigReader
	telemetry TelemetryReader
	alerts    alert.StateAlerts
	now       func() time.Time
}

// NewContinuousDriving creates the continuous-driving detector.
func NewContinuousDriving(configs ConfigReader, telemetry TelemetryReader, alerts alert.StateAlerts) *ContinuousDriving {
	return &ContinuousDriving{configs: configs, telemetry: telemetry, alerts: alerts, now: time.Now}
}

// Kind implements Detector.
func (d *ContinuousDriving) Kind() model.AlarmKind { return model.KindContinuousDriving }

// Run implements Detector.
func (d *ContinuousDriving) Run(ctx context.Context) error {
	configs, err := d.configs.EnabledConfigs(ctx, d.Kind())
	if err != nil {
		return err
	}

	for i := range configs {
		cfg := &configs[i]
		vehicles, err := d.configs.VehiclesForConfig(ctx, cfg.ID)
		if err != nil {
			log.Printf("[ContinuousDriving] vehicles for config %d: %v", cfg.ID, err)
			continue
		}
		for _, vehicle := range vehicles {
			if err := d.check(ctx, cfg, vehicle.VehicleNo); err != nil {
				log.Printf("[ContinuousDriving] vehicle %s: %v", vehicle.VehicleNo, err)
			}
		}
	}
	return nil
}

func (d *ContinuousDriving) check(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string) error {
	now := d.now()
	thresholdMinutes := cfg.Threshold * 60
	window := time.Duration(thresholdMinutes) * time.Minute

	positions, err := d.telemetry.PositionsSince(ctx, vehicleNo, now.Add(-window))
	if err != nil {
		return err
	}

	accumulated := accumulateDriving(positions, cfg.RestThreshold(), now)
	if accumulated >= thresholdMinutes {
		lat, lon := 0.0, 0.0
		if len(positions) > 0 {
			last := positions[len(positions)-1]
			lat, lon = last.Lat, last.Lon
		}
		return d.alerts.Raise(ctx, cfg, vehicleNo, lat, lon)
	}
	return d.alerts.Clear(ctx, cfg, vehicleNo)
}

// accumulateDriving runs a single forward pass over positions ordered oldest
// first and returns the accumulated driving minutes. The pass is a two-state
// machine between driving and resting:
//
//   - a moving sample opens a driving segment; a gap of more than 15 minutes
//     to the next sample is an implicit rest that discards the open segment
//   - a stopped sample closes an open segment, accumulating it only when it
//     lasted at least 15 minutes; a stop gap of at least the rest threshold
//     resets the accumulator entirely
//   - a segment still open at the window's end accumulates up to now
func accumulateDriving(positions []model.Position, rest time.Duration, now time.Time) float64 {
	var (
		driving      bool
		drivingStart time.Time
		accumulated  float64
	)

	for i := range positions {
		sample := &positions[i]
		sampleTime := sample.Time()

		var gap time.Duration
		hasNext := i+1 < len(positions)
		if hasNext {
			gap = positions[i+1].Time().Sub(sampleTime)
		}

		if sample.SpeedKmh() > speedFloorKmh {
			if !driving {
				driving = true
				drivingStart = sampleTime
			}
			if hasNext && gap > drivingGap {
				driving = false
			}
		} else {
			if driving {
				segment := sampleTime.Sub(drivingStart)
				if segment >= drivingGap {
					accumulated += segment.Minutes()
				}
				driving = false
			}
			if hasNext && gap >= rest {
				accumulated = 0
			}
		}
	}

	if driving {
		accumulated += now.Sub(drivingStart).Minutes()
	}
	return accumulated
}
