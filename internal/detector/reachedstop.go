package detector

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/geo"
	"fleetwatch/internal/model"
)

// ReachedStop records an event alert when a vehicle's latest ping lands
// within the arrival radius of an unreached stop on its active shipment, and
// stamps the stop's entry time. The time stamp is idempotent per stop; the
// alert row itself is not deduplicated. Unlike every other detector the
// alert is created with status Inactive; this mirrors the historical
// behavior and is preserved on purpose.
type ReachedStop struct {
	configs   ConfigReader
	telemetry TelemetryReader
	alerts    alert.EventAlerts
	shipments ShipmentAccess
	now       func() time.Time
}

// NewReachedStop creates the reached-stop detector.
func NewReachedStop(configs ConfigReader, telemetry TelemetryReader, alerts alert.EventAlerts, shipments ShipmentAccess) *ReachedStop {
	return &ReachedStop{
		configs:   configs,
		telemetry: telemetry,
		alerts:    alerts,
		shipments: shipments,
		now:       time.Now,
	}
}

// Kind implements Detector.
func (d *ReachedStop) Kind() model.AlarmKind { return model.KindReachedStop }

// Run implements Detector.
func (d *ReachedStop) Run(ctx context.Context) error {
	configs, err := d.configs.EnabledConfigs(ctx, d.Kind())
	if err != nil {
		return err
	}

	for i := range configs {
		cfg := &configs[i]
		vehicles, err := d.configs.VehiclesForConfig(ctx, cfg.ID)
		if err != nil {
			log.Printf("[ReachedStop] vehicles for config %d: %v", cfg.ID, err)
			continue
		}
		for _, vehicle := range vehicles {
			if err := d.check(ctx, cfg, vehicle.VehicleNo); err != nil {
				log.Printf("[ReachedStop] vehicle %s: %v", vehicle.VehicleNo, err)
			}
		}
	}
	return nil
}

func (d *ReachedStop) check(ctx context.Context, cfg *model.AlarmConfig, vehicleNo string) error {
	shipment, err := d.shipments.ActiveShipment(ctx, vehicleNo)
	if err != nil {
		return err
	}
	if shipment == nil {
		return nil
	}

	latest, err := d.telemetry.LatestPosition(ctx, vehicleNo)
	if err != nil {
		return err
	}
	if latest == nil {
		return nil
	}

	for i := range shipment.Stops {
		stop := &shipment.Stops[i]
		if stop.EntryTime != nil {
			continue
		}

		distance := geo.Haversine(latest.Lat, latest.Lon, stop.Lat, stop.Lon)
		if distance > stop.Radius() {
			continue
		}

		opts := alert.EventOptions{
			ShipmentID: &shipment.ID,
			Inactive:   true,
			Details:    fmt.Sprintf("vehicle %s reached stop %d", vehicleNo, stop.Seq),
		}
		if err := d.alerts.Trigger(ctx, cfg, vehicleNo, latest.Lat, latest.Lon, opts); err != nil {
			return err
		}
		if err := d.shipments.StampEntry(ctx, stop.ID, d.now()); err != nil {
			return err
		}
	}
	return nil
}
