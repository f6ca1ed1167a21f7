package detector

import (
	"context"
	"log"
	"time"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/geo"
	"fleetwatch/internal/model"
)

// Stoppage raises an alert when a vehicle has been standing still longer than
// the configured number of minutes, and clears it once the vehicle moves.
type Stoppage struct {
	configs   ConfigReader
	telemetry TelemetryReader
	alerts    alert.StateAlerts
	now       func() time.Time
}

// NewStoppage creates the stoppage detector.
func NewStoppage(configs ConfigReader, telemetry TelemetryReader, alerts alert.StateAlerts) *Stoppage {
	return &Stoppage{configs: configs, telemetry: telemetry, alerts: alerts, now: time.Now}
}

// Kind implements Detector.
func (d *Stoppage) Kind() model.AlarmKind { return model.KindStoppage }

// Run evaluates every vehicle bound to every enabled stoppage config. A
// failure on one vehicle is logged and does not abort the rest of the fleet.
func (d *Stoppage) Run(ctx context.Context) error {
	configs, err := d.configs.EnabledConfigs(ctx, d.Kind())
	if err != nil {
		return err
	}

	for i := range configs {
		cfg := &configs[i]
		vehicles, err := d.configs.VehiclesForConfig(ctx, cfg.ID)
		if err != nil {
			log.Printf("[Stoppage] vehicles for config %d: %v", cfg.ID, err)
			continue
		}
		for _, vehicle := range vehicles {
			if err := d.check(ctx, cfg, vehicle.VehicleNo); err != nil {
				log.Printf("[Stoppage] vehicle %s: %v", vehicle.VehicleNo, err)
			}
		}
	}
	return nil
}

func (d *Stoppage) check(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string) error {
	positions, err := d.telemetry.LatestPositions(ctx, vehicleNo, stoppageWindow)
	if err != nil {
		return err
	}

	verdict, latest := evaluateStoppage(positions, time.Duration(cfg.Threshold)*time.Minute, d.now())
	switch verdict {
	case stoppageRaise:
		return d.alerts.Raise(ctx, cfg, vehicleNo, latest.Lat, latest.Lon)
	case stoppageClear:
		return d.alerts.Clear(ctx, cfg, vehicleNo)
	default:
		return nil
	}
}

type stoppageVerdict int

const (
	stoppageSkip stoppageVerdict = iota
	stoppageRaise
	stoppageClear
)

// evaluateStoppage decides over a window of positions ordered newest first.
// With fewer than 2 samples, or a stopped vehicle whose window holds no
// moving sample, the duration cannot be bounded and the pass is skipped.
func evaluateStoppage(positions []model.Position, threshold time.Duration, now time.Time) (stoppageVerdict, *model.Position) {
	if len(positions) < 2 {
		return stoppageSkip, nil
	}

	latest := &positions[0]
	if latest.SpeedKmh() > speedFloorKmh {
		return stoppageClear, latest
	}

	lastMoving := -1
	for i := 1; i < len(positions); i++ {
		if positions[i].SpeedKmh() > speedFloorKmh {
			lastMoving = i
			break
		}
	}
	if lastMoving < 0 {
		return stoppageSkip, nil
	}

	duration := now.Sub(positions[lastMoving].Time())
	if duration < 0 {
		duration = -duration
	}
	if duration < threshold {
		return stoppageSkip, nil
	}

	// A stop only counts when every sample since the last movement stays
	// near the latest position; wider drift is still-moving GPS jitter.
	for i := 1; i < lastMoving; i++ {
		drift := geo.Haversine(positions[i].Lat, positions[i].Lon, latest.Lat, latest.Lon)
		if drift > jitterRadiusM {
			return stoppageSkip, nil
		}
	}

	return stoppageRaise, latest
}
