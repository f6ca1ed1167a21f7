package detector

import (
	"context"
	"testing"
	"time"

	"fleetwatch/internal/alert"
	"fleetwatch/internal/model"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

// ping builds one position sample with the given fix time and speed.
func ping(at time.Time, speed, lat, lon float64) model.Position {
	s := speed
	return model.Position{
		VehicleNo: "V1",
		GpsTS:     at.Unix(),
		Speed:     &s,
		Lat:       lat,
		Lon:       lon,
	}
}

// fakeTelemetry serves one vehicle's positions, held newest first.
type fakeTelemetry struct {
	positions []model.Position
}

func (f *fakeTelemetry) LatestPositions(_ context.Context, _ string, n int) ([]model.Position, error) {
	if n > len(f.positions) {
		n = len(f.positions)
	}
	return f.positions[:n], nil
}

func (f *fakeTelemetry) LatestPosition(_ context.Context, _ string) (*model.Position, error) {
	if len(f.positions) == 0 {
		return nil, nil
	}
	p := f.positions[0]
	return &p, nil
}

func (f *fakeTelemetry) PositionsSince(_ context.Context, _ string, since time.Time) ([]model.Position, error) {
	var out []model.Position
	for i := len(f.positions) - 1; i >= 0; i-- {
		if !f.positions[i].Time().Before(since) {
			out = append(out, f.positions[i])
		}
	}
	return out, nil
}

type fakeConfigs struct {
	configs  []model.AlarmConfig
	vehicles []model.Vehicle
	fences   []model.Geofence
}

func (f *fakeConfigs) EnabledConfigs(_ context.Context, _ model.AlarmKind) ([]model.AlarmConfig, error) {
	return f.configs, nil
}

func (f *fakeConfigs) VehiclesForConfig(_ context.Context, _ uint) ([]model.Vehicle, error) {
	return f.vehicles, nil
}

func (f *fakeConfigs) GeofencesForConfig(_ context.Context, _ uint) ([]model.Geofence, error) {
	return f.fences, nil
}

type stateCall struct {
	op        string
	vehicleNo string
	lat, lon  float64
}

type fakeStateAlerts struct {
	calls []stateCall
}

func (f *fakeStateAlerts) Raise(_ context.Context, _ *model.AlarmConfig, vehicleNo string, lat, lon float64) error {
	f.calls = append(f.calls, stateCall{op: "raise", vehicleNo: vehicleNo, lat: lat, lon: lon})
	return nil
}

func (f *fakeStateAlerts) Clear(_ context.Context, _ *model.AlarmConfig, vehicleNo string) error {
	f.calls = append(f.calls, stateCall{op: "clear", vehicleNo: vehicleNo})
	return nil
}

type eventCall struct {
	vehicleNo string
	lat, lon  float64
	opts      alert.EventOptions
}

type fakeEventAlerts struct {
	calls []eventCall
}

func (f *fakeEventAlerts) Trigger(_ context.Context, _ *model.AlarmConfig, vehicleNo string, lat, lon float64, opts alert.EventOptions) error {
	f.calls = append(f.calls, eventCall{vehicleNo: vehicleNo, lat: lat, lon: lon, opts: opts})
	return nil
}

type exitStamp struct {
	stopID    uint
	detention string
}

type fakeShipments struct {
	shipment *model.Shipment
	entries  []uint
	exits    []exitStamp
}

func (f *fakeShipments) ActiveShipment(_ context.Context, _ string) (*model.Shipment, error) {
	return f.shipment, nil
}

func (f *fakeShipments) StampEntry(_ context.Context, stopID uint, _ time.Time) error {
	f.entries = append(f.entries, stopID)
	return nil
}

func (f *fakeShipments) StampExit(_ context.Context, stopID uint, _ time.Time, detention string) error {
	f.exits = append(f.exits, exitStamp{stopID: stopID, detention: detention})
	return nil
}

func TestFormatDetention(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{61 * time.Second, "00:01:01"},
		{2*time.Hour + 30*time.Minute + 5*time.Second, "02:30:05"},
		{-90 * time.Minute, "01:30:00"},
		{26 * time.Hour, "26:00:00"},
	}
	for _, tt := range tests {
		if got := formatDetention(tt.d); got != tt.want {
			t.Errorf("formatDetention(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFenceContainsDispatch(t *testing.T) {
	circle := &model.Geofence{
		Kind:      model.GeofenceCircle,
		CenterLat: 31.2304,
		CenterLon: 121.4737,
		RadiusM:   500,
	}
	if !fenceContains(circle, 31.2304, 121.4737) {
		t.Error("center point should be inside circle fence")
	}
	if fenceContains(circle, 31.25, 121.4737) {
		t.Error("point ~2km away should be outside circle fence")
	}

	polygon := &model.Geofence{
		Kind: model.GeofencePolygon,
		Vertices: []model.GeofenceVertex{
			{Seq: 0, Lat: 0, Lon: 0},
			{Seq: 1, Lat: 0, Lon: 10},
			{Seq: 2, Lat: 10, Lon: 10},
			{Seq: 3, Lat: 10, Lon: 0},
		},
	}
	if !fenceContains(polygon, 5, 5) {
		t.Error("interior point should be inside polygon fence")
	}
	if fenceContains(polygon, 15, 5) {
		t.Error("exterior point should be outside polygon fence")
	}

	unknown := &model.Geofence{Kind: "triangle"}
	if fenceContains(unknown, 0, 0) {
		t.Error("unknown shape kind should contain nothing")
	}
}
