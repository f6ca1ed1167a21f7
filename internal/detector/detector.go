// Package detector holds the six telemetry detectors. Each detector is a
// stateless decision pass over one vehicle's telemetry window: data loading
// goes through narrow reader interfaces so decisions stay unit-testable
// without a live store, and the resulting raise/clear/trigger is applied
// through the alert lifecycle interfaces.
package detector

import (
	"context"
	"fmt"
	"time"

	"fleetwatch/internal/geo"
	"fleetwatch/internal/model"
)

const (
	// speedFloorKmh separates "stopped" from "moving" samples.
	speedFloorKmh = 3.0
	// stoppageWindow is how many recent pings the stoppage detector inspects.
	stoppageWindow = 10
	// jitterRadiusM bounds how far a "stopped" vehicle's samples may drift
	// from its latest position before the stop is dismissed as GPS jitter.
	jitterRadiusM = 50.0
	// drivingGap is both the sample gap that counts as an implicit rest and
	// the minimum length for a driving segment to accumulate.
	drivingGap = 15 * time.Minute
	// noFeedThreshold is the telemetry-loss cutoff. It is deliberately not
	// read from the alarm config's threshold value.
	noFeedThreshold = 180 * time.Minute
)

// TelemetryReader loads position windows for one vehicle.
type TelemetryReader interface {
	LatestPositions(ctx context.Context, vehicleNo string, n int) ([]model.Position, error)
	LatestPosition(ctx context.Context, vehicleNo string) (*model.Position, error)
	PositionsSince(ctx context.Context, vehicleNo string, since time.Time) ([]model.Position, error)
}

// ConfigReader loads alarm configs and their group bindings.
type ConfigReader interface {
	EnabledConfigs(ctx context.Context, kind model.AlarmKind) ([]model.AlarmConfig, error)
	VehiclesForConfig(ctx context.Context, configID uint) ([]model.Vehicle, error)
	GeofencesForConfig(ctx context.Context, configID uint) ([]model.Geofence, error)
}

// ShipmentAccess resolves active shipments and stamps stop times.
type ShipmentAccess interface {
	ActiveShipment(ctx context.Context, vehicleNo string) (*model.Shipment, error)
	StampEntry(ctx context.Context, stopID uint, at time.Time) error
	StampExit(ctx context.Context, stopID uint, at time.Time, detention string) error
}

// Detector is one detection pass over the fleet, run per engine cycle.
type Detector interface {
	Kind() model.AlarmKind
	Run(ctx context.Context) error
}

// shapePoints converts a polygon fence's ordered vertex list.
func shapePoints(g *model.Geofence) []geo.Point {
	points := make([]geo.Point, 0, len(g.Vertices))
	for _, v := range g.Vertices {
		points = append(points, geo.Point{Lat: v.Lat, Lon: v.Lon})
	}
	return points
}

// fenceContains dispatches containment on the fence's shape kind.
func fenceContains(g *model.Geofence, lat, lon float64) bool {
	switch g.Kind {
	case model.GeofenceCircle:
		return geo.CircleContains(
			geo.Point{Lat: lat, Lon: lon},
			geo.Point{Lat: g.CenterLat, Lon: g.CenterLon},
			g.RadiusM,
		)
	case model.GeofencePolygon:
		return geo.PolygonContains(geo.Point{Lat: lat, Lon: lon}, shapePoints(g))
	default:
		return false
	}
}

// formatDetention renders an absolute duration as zero-padded HH:MM:SS.
func formatDetention(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
