package detector

import (
	"context"
	"fmt"
	"log"
	"time"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/model"
)

// Geofence records an event alert for every boundary transition a vehicle
// makes through a bound fence. Transitions are derived from the two latest
// pings, so a vehicle that crosses and returns between cycles is not seen.
// Geofence alerts are never deactivated.
type Geofence struct {
	configs   ConfigReader
	telemetry TelemetryReader
	alerts    alert.EventAlerts
	shipments ShipmentAccess
	now       func() time.Time
}

// NewGeofence creates the geofence detector.
func NewGeofence(configs ConfigReader, telemetry TelemetryReader, alerts alert.EventAlerts, shipments ShipmentAccess) *Geofence {
	return &Geofence{
		configs:   configs,
		telemetry: telemetry,
		alerts:    alerts,
		shipments: shipments,
		now:       time.Now,
	}
}

// Kind implements Detector.
func (d *Geofence) Kind() model.AlarmKind { return model.KindGeofence }

// Run implements Detector.
func (d *Geofence) Run(ctx context.Context) error {
	configs, err := d.configs.EnabledConfigs(ctx, d.Kind())
	if err != nil {
		return err
	}

	for i := range configs {
		cfg := &configs[i]

		geofences, err := d.configs.GeofencesForConfig(ctx, cfg.ID)
		if err != nil {
			log.Printf("[Geofence] geofences for config %d: %v", cfg.ID, err)
			continue
		}
		vehicles, err := d.configs.VehiclesForConfig(ctx, cfg.ID)
		if err != nil {
			log.Printf("[Geofence] vehicles for config %d: %v", cfg.ID, err)
			continue
		}

		for g := range geofences {
			fence := &geofences[g]
			for _, vehicle := range vehicles {
				if err := d.check(ctx, cfg, fence, vehicle.VehicleNo); err != nil {
					log.Printf("[Geofence] fence %d vehicle %s: %v", fence.ID, vehicle.VehicleNo, err)
				}
			}
		}
	}
	return nil
}

func (d *Geofence) check(ctx context.Context, cfg *model.AlarmConfig, fence *model.Geofence, vehicleNo string) error {
	positions, err := d.telemetry.LatestPositions(ctx, vehicleNo, 2)
	if err != nil {
		return err
	}
	if len(positions) < 2 {
		return nil
	}

	current, previous := &positions[0], &positions[1]
	currentInside := fenceContains(fence, current.Lat, current.Lon)
	previousInside := fenceContains(fence, previous.Lat, previous.Lon)

	switch {
	case currentInside && !previousInside:
		if !cfg.Mode.AllowsEntry() {
			return nil
		}
		return d.onEntry(ctx, cfg, fence, vehicleNo, current)
	case !currentInside && previousInside:
		if !cfg.Mode.AllowsExit() {
			return nil
		}
		return d.onExit(ctx, cfg, fence, vehicleNo, current)
	default:
		return nil
	}
}

func (d *Geofence) onEntry(ctx context.Context, cfg *model.AlarmConfig, fence *model.Geofence, vehicleNo string, at *model.Position) error {
	details := fmt.Sprintf("vehicle %s entered geofence %s", vehicleNo, fence.Name)
	if err := d.alerts.Trigger(ctx, cfg, vehicleNo, at.Lat, at.Lon, alert.EventOptions{Details: details}); err != nil {
		return err
	}

	stop, _, err := d.matchStop(ctx, fence, vehicleNo)
	if err != nil || stop == nil {
		return err
	}
	if stop.EntryTime == nil {
		return d.shipments.StampEntry(ctx, stop.ID, d.now())
	}
	return nil
}

func (d *Geofence) onExit(ctx context.Context, cfg *model.AlarmConfig, fence *model.Geofence, vehicleNo string, at *model.Position) error {
	details := fmt.Sprintf("vehicle %s exited geofence %s", vehicleNo, fence.Name)
	if err := d.alerts.Trigger(ctx, cfg, vehicleNo, at.Lat, at.Lon, alert.EventOptions{Details: details}); err != nil {
		return err
	}

	stop, _, err := d.matchStop(ctx, fence, vehicleNo)
	if err != nil || stop == nil {
		return err
	}

	exitAt := d.now()
	detention := ""
	if stop.EntryTime != nil {
		detention = formatDetention(exitAt.Sub(*stop.EntryTime))
	}
	return d.shipments.StampExit(ctx, stop.ID, exitAt, detention)
}

// matchStop finds the stop of the vehicle's active shipment whose location
// matches the fence's location id.
func (d *Geofence) matchStop(ctx context.Context, fence *model.Geofence, vehicleNo string) (*model.Stop, *model.Shipment, error) {
	if fence.LocationID == nil {
		return nil, nil, nil
	}

	shipment, err := d.shipments.ActiveShipment(ctx, vehicleNo)
	if err != nil {
		return nil, nil, err
	}
	if shipment == nil {
		return nil, nil, nil
	}

	for i := range shipment.Stops {
		stop := &shipment.Stops[i]
		if stop.LocationID != nil && *stop.LocationID == *fence.LocationID {
			return stop, shipment, nil
		}
	}
	return nil, shipment, nil
}
