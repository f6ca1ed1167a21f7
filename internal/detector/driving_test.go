package detector

import (
	"context"
	"math"
	"testing"
	"time"

	"fleetwatch/internal/model"
)

// series builds moving samples every 5 minutes from start up to and including
// end, ordered oldest first.
func series(start, end time.Time, speed float64) []model.Position {
	var out []model.Position
	for at := start; !at.After(end); at = at.Add(5 * time.Minute) {
		out = append(out, ping(at, speed, 31.23, 121.47))
	}
	return out
}

func TestAccumulateDrivingUnbrokenSegment(t *testing.T) {
	start := testNow.Add(-4 * time.Hour)
	positions := series(start, testNow, 60)

	got := accumulateDriving(positions, 30*time.Minute, testNow)
	if math.Abs(got-240) > 0.01 {
		t.Errorf("accumulated = %.2f minutes, want 240 for 4 unbroken hours", got)
	}
}

func TestAccumulateDrivingRestResets(t *testing.T) {
	// Drive ~2.4h, stop, 35-minute gap (a qualifying rest), drive 1h more.
	restStart := testNow.Add(-time.Hour - 35*time.Minute)
	positions := series(testNow.Add(-4*time.Hour), restStart.Add(-5*time.Minute), 60)
	positions = append(positions, ping(restStart, 0, 31.23, 121.47))
	positions = append(positions, series(testNow.Add(-time.Hour), testNow, 60)...)

	got := accumulateDriving(positions, 30*time.Minute, testNow)
	if math.Abs(got-60) > 0.01 {
		t.Errorf("accumulated = %.2f minutes, want 60 after a qualifying rest", got)
	}
}

func TestAccumulateDrivingShortStopDoesNotReset(t *testing.T) {
	// Same shape but the stop gap is 20 minutes, under the 30-minute rest
	// threshold: both segments stay on the clock.
	restStart := testNow.Add(-time.Hour - 20*time.Minute)
	positions := series(testNow.Add(-4*time.Hour), restStart.Add(-5*time.Minute), 60)
	positions = append(positions, ping(restStart, 0, 31.23, 121.47))
	positions = append(positions, series(testNow.Add(-time.Hour), testNow, 60)...)

	got := accumulateDriving(positions, 30*time.Minute, testNow)
	// First segment: from -4h to the stop at -1h20m is 2h40m. Second: 1h.
	if math.Abs(got-220) > 0.01 {
		t.Errorf("accumulated = %.2f minutes, want 220 when the stop is too short to rest", got)
	}
}

func TestAccumulateDrivingShortSegmentIgnored(t *testing.T) {
	// A 10-minute burst between stops is below the minimum segment length.
	positions := []model.Position{
		ping(testNow.Add(-30*time.Minute), 0, 31.23, 121.47),
		ping(testNow.Add(-25*time.Minute), 60, 31.23, 121.47),
		ping(testNow.Add(-20*time.Minute), 60, 31.23, 121.47),
		ping(testNow.Add(-15*time.Minute), 0, 31.23, 121.47),
	}
	got := accumulateDriving(positions, 30*time.Minute, testNow)
	if got != 0 {
		t.Errorf("accumulated = %.2f minutes, want 0 for a segment under 15 minutes", got)
	}
}

func TestAccumulateDrivingSampleGapIsImplicitRest(t *testing.T) {
	// Moving samples 40 minutes apart: the open segment before the gap is
	// discarded, only driving after the gap counts.
	positions := []model.Position{
		ping(testNow.Add(-55*time.Minute), 60, 31.23, 121.47),
		ping(testNow.Add(-15*time.Minute), 60, 31.23, 121.47),
	}
	got := accumulateDriving(positions, 30*time.Minute, testNow)
	if math.Abs(got-15) > 0.01 {
		t.Errorf("accumulated = %.2f minutes, want 15 after an implicit rest gap", got)
	}
}

func TestAccumulateDrivingEmptyWindow(t *testing.T) {
	if got := accumulateDriving(nil, 30*time.Minute, testNow); got != 0 {
		t.Errorf("accumulated = %.2f minutes, want 0 for an empty window", got)
	}
}

func TestContinuousDrivingRunRaises(t *testing.T) {
	// 4.5 hours of unbroken driving against a 4-hour threshold.
	telemetryAsc := series(testNow.Add(-4*time.Hour-30*time.Minute), testNow, 60)
	// fakeTelemetry holds newest first.
	desc := make([]model.Position, 0, len(telemetryAsc))
	for i := len(telemetryAsc) - 1; i >= 0; i-- {
		desc = append(desc, telemetryAsc[i])
	}
	telemetry := &fakeTelemetry{positions: desc}
	configs := &fakeConfigs{
		configs:  []model.AlarmConfig{{ID: 1, Kind: model.KindContinuousDriving, Threshold: 4, Enabled: true}},
		vehicles: []model.Vehicle{{VehicleNo: "V1"}},
	}
	alerts := &fakeStateAlerts{}

	d := NewContinuousDriving(configs, telemetry, alerts)
	d.now = fixedNow
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(alerts.calls) != 1 || alerts.calls[0].op != "raise" {
		t.Fatalf("got calls %+v, want one raise", alerts.calls)
	}
}

func TestContinuousDrivingRunClearsUnderThreshold(t *testing.T) {
	telemetry := &fakeTelemetry{positions: []model.Position{
		ping(testNow, 60, 31.23, 121.47),
		ping(testNow.Add(-30*time.Minute), 60, 31.23, 121.47),
	}}
	configs := &fakeConfigs{
		configs:  []model.AlarmConfig{{ID: 1, Kind: model.KindContinuousDriving, Threshold: 4, Enabled: true}},
		vehicles: []model.Vehicle{{VehicleNo: "V1"}},
	}
	alerts := &fakeStateAlerts{}

	d := NewContinuousDriving(configs, telemetry, alerts)
	d.now = fixedNow
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(alerts.calls) != 1 || alerts.calls[0].op != "clear" {
		t.Fatalf("got calls %+v, want one clear", alerts.calls)
	}
}
