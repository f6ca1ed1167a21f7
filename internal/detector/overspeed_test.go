package detector

import (
	"context"
	"testing"

	"fleetwatch/internal/model"
)

func TestOverspeedRaisesAboveLimit(t *testing.T) {
	telemetry := &fakeTelemetry{positions: []model.Position{
		ping(testNow, 80, 31.2304, 121.4737),
	}}
	configs := &fakeConfigs{
		configs:  []model.AlarmConfig{{ID: 1, Kind: model.KindOverspeeding, Threshold: 60, Enabled: true}},
		vehicles: []model.Vehicle{{VehicleNo: "V1"}},
	}
	alerts := &fakeStateAlerts{}

	d := NewOverspeed(configs, telemetry, alerts)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(alerts.calls) != 1 {
		t.Fatalf("got %d calls, want 1", len(alerts.calls))
	}
	call := alerts.calls[0]
	if call.op != "raise" || call.vehicleNo != "V1" {
		t.Errorf("got %+v, want raise for V1", call)
	}
	if call.lat != 31.2304 || call.lon != 121.4737 {
		t.Errorf("alert placed at (%v, %v), want the offending ping's coordinates", call.lat, call.lon)
	}
}

func TestOverspeedClearsBelowLimit(t *testing.T) {
	telemetry := &fakeTelemetry{positions: []model.Position{
		ping(testNow, 40, 31.2304, 121.4737),
	}}
	configs := &fakeConfigs{
		configs:  []model.AlarmConfig{{ID: 1, Kind: model.KindOverspeeding, Threshold: 60, Enabled: true}},
		vehicles: []model.Vehicle{{VehicleNo: "V1"}},
	}
	alerts := &fakeStateAlerts{}

	d := NewOverspeed(configs, telemetry, alerts)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(alerts.calls) != 1 || alerts.calls[0].op != "clear" {
		t.Fatalf("got calls %+v, want one clear", alerts.calls)
	}
}

func TestOverspeedExactLimitClears(t *testing.T) {
	telemetry := &fakeTelemetry{positions: []model.Position{
		ping(testNow, 60, 31.2304, 121.4737),
	}}
	configs := &fakeConfigs{
		configs:  []model.AlarmConfig{{ID: 1, Kind: model.KindOverspeeding, Threshold: 60, Enabled: true}},
		vehicles: []model.Vehicle{{VehicleNo: "V1"}},
	}
	alerts := &fakeStateAlerts{}

	d := NewOverspeed(configs, telemetry, alerts)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(alerts.calls) != 1 || alerts.calls[0].op != "clear" {
		t.Fatalf("got calls %+v, want clear at exactly the limit", alerts.calls)
	}
}

func TestOverspeedNoTelemetrySkips(t *testing.T) {
	telemetry := &fakeTelemetry{}
	configs := &fakeConfigs{
		configs:  []model.AlarmConfig{{ID: 1, Kind: model.KindOverspeeding, Threshold: 60, Enabled: true}},
		vehicles: []model.Vehicle{{VehicleNo: "V1"}},
	}
	alerts := &fakeStateAlerts{}

	d := NewOverspeed(configs, telemetry, alerts)
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(alerts.calls) != 0 {
		t.Fatalf("got calls %+v, want none without telemetry", alerts.calls)
	}
}
