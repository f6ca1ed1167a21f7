package detector

import (
	"context"
	"testing"
	"time"

	"fleetwatch/internal/model"
)

func TestEvaluateStoppageTooFewSamples(t *testing.T) {
	positions := []model.Position{ping(testNow, 0, 31.23, 121.47)}
	verdict, _ := evaluateStoppage(positions, 10*time.Minute, testNow)
	if verdict != stoppageSkip {
		t.Errorf("verdict = %v, want skip with a single sample", verdict)
	}
}

func TestEvaluateStoppageMovingVehicleClears(t *testing.T) {
	positions := []model.Position{
		ping(testNow, 45, 31.23, 121.47),
		ping(testNow.Add(-time.Minute), 0, 31.23, 121.47),
	}
	verdict, latest := evaluateStoppage(positions, 10*time.Minute, testNow)
	if verdict != stoppageClear {
		t.Fatalf("verdict = %v, want clear when latest sample is moving", verdict)
	}
	if latest == nil || latest.SpeedKmh() != 45 {
		t.Error("clear verdict should carry the latest position")
	}
}

func TestEvaluateStoppageRaisesAfterThreshold(t *testing.T) {
	// Last movement 12 minutes ago, all samples since parked at one spot.
	positions := []model.Position{
		ping(testNow, 0, 31.2304, 121.4737),
		ping(testNow.Add(-4*time.Minute), 1, 31.2304, 121.4737),
		ping(testNow.Add(-8*time.Minute), 0, 31.23041, 121.47371),
		ping(testNow.Add(-12*time.Minute), 40, 31.229, 121.472),
	}
	verdict, latest := evaluateStoppage(positions, 10*time.Minute, testNow)
	if verdict != stoppageRaise {
		t.Fatalf("verdict = %v, want raise after 12 stopped minutes against a 10-minute threshold", verdict)
	}
	if latest.Lat != 31.2304 {
		t.Errorf("raise should locate the alert at the latest sample, got lat %v", latest.Lat)
	}
}

func TestEvaluateStoppageUnderThresholdSkips(t *testing.T) {
	positions := []model.Position{
		ping(testNow, 0, 31.2304, 121.4737),
		ping(testNow.Add(-5*time.Minute), 40, 31.229, 121.472),
	}
	verdict, _ := evaluateStoppage(positions, 10*time.Minute, testNow)
	if verdict != stoppageSkip {
		t.Errorf("verdict = %v, want skip when stop duration is under the threshold", verdict)
	}
}

func TestEvaluateStoppageNoMovingSampleSkips(t *testing.T) {
	// Window full of stopped samples: the stop duration cannot be bounded.
	positions := []model.Position{
		ping(testNow, 0, 31.2304, 121.4737),
		ping(testNow.Add(-10*time.Minute), 0, 31.2304, 121.4737),
		ping(testNow.Add(-20*time.Minute), 2, 31.2304, 121.4737),
	}
	// Speed 2 is below the 3 km/h floor, so it does not count as movement.
	verdict, _ := evaluateStoppage(positions, 10*time.Minute, testNow)
	if verdict != stoppageSkip {
		t.Errorf("verdict = %v, want skip when no sample in the window was moving", verdict)
	}
}

func TestEvaluateStoppageJitterDriftSkips(t *testing.T) {
	// Stopped samples drifting ~220m apart are creeping traffic, not a stop.
	positions := []model.Position{
		ping(testNow, 0, 31.2304, 121.4737),
		ping(testNow.Add(-6*time.Minute), 0, 31.2324, 121.4737),
		ping(testNow.Add(-12*time.Minute), 40, 31.229, 121.472),
	}
	verdict, _ := evaluateStoppage(positions, 10*time.Minute, testNow)
	if verdict != stoppageSkip {
		t.Errorf("verdict = %v, want skip when stopped samples drift beyond the jitter radius", verdict)
	}
}

func TestStoppageRunRaisesThroughLifecycle(t *testing.T) {
	telemetry := &fakeTelemetry{positions: []model.Position{
		ping(testNow, 0, 31.2304, 121.4737),
		ping(testNow.Add(-15*time.Minute), 40, 31.229, 121.472),
	}}
	configs := &fakeConfigs{
		configs:  []model.AlarmConfig{{ID: 1, Kind: model.KindStoppage, Threshold: 10, Enabled: true}},
		vehicles: []model.Vehicle{{VehicleNo: "V1"}},
	}
	alerts := &fakeStateAlerts{}

	d := NewStoppage(configs, telemetry, alerts)
	d.now = fixedNow
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(alerts.calls) != 1 {
		t.Fatalf("got %d lifecycle calls, want 1", len(alerts.calls))
	}
	if alerts.calls[0].op != "raise" || alerts.calls[0].vehicleNo != "V1" {
		t.Errorf("got call %+v, want raise for V1", alerts.calls[0])
	}
}
