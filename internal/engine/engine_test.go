package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetwatch/internal/detector"
	"fleetwatch/internal/model"
)

type stubDetector struct {
	kind model.AlarmKind
	fail error
	boom bool
	runs int
}

func (d *stubDetector) Kind() model.AlarmKind { return d.kind }

func (d *stubDetector) Run(_ context.Context) error {
	d.runs++
	if d.boom {
		panic("detector blew up")
	}
	return d.fail
}

func newTestEngine(opts Options, detectors ...detector.Detector) *Engine {
	return New(detectors, nil, nil, opts)
}

func TestProcessAllRunsEveryDetector(t *testing.T) {
	d1 := &stubDetector{kind: model.KindStoppage}
	d2 := &stubDetector{kind: model.KindOverspeeding}
	e := newTestEngine(Options{Enabled: true, MinInterval: time.Minute}, d1, d2)

	if !e.ProcessAll(context.Background()) {
		t.Fatal("first cycle should run")
	}
	if d1.runs != 1 || d2.runs != 1 {
		t.Errorf("runs = (%d, %d), want (1, 1)", d1.runs, d2.runs)
	}
}

func TestProcessAllGatesRapidReruns(t *testing.T) {
	d := &stubDetector{kind: model.KindStoppage}
	e := newTestEngine(Options{Enabled: true, MinInterval: time.Minute}, d)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return current }

	if !e.ProcessAll(context.Background()) {
		t.Fatal("first cycle should run")
	}
	if e.ProcessAll(context.Background()) {
		t.Fatal("immediate re-run should be gated off")
	}
	if d.runs != 1 {
		t.Errorf("runs = %d, want 1 while gated", d.runs)
	}

	current = current.Add(61 * time.Second)
	if !e.ProcessAll(context.Background()) {
		t.Fatal("cycle after the interval elapsed should run")
	}
	if d.runs != 2 {
		t.Errorf("runs = %d, want 2", d.runs)
	}
}

func TestProcessAllDisabledEngine(t *testing.T) {
	d := &stubDetector{kind: model.KindStoppage}
	e := newTestEngine(Options{Enabled: false, MinInterval: time.Minute}, d)

	if e.ProcessAll(context.Background()) {
		t.Fatal("disabled engine must not run cycles")
	}
	if d.runs != 0 {
		t.Errorf("runs = %d, want 0", d.runs)
	}
}

func TestProcessAllIsolatesFailures(t *testing.T) {
	panicking := &stubDetector{kind: model.KindStoppage, boom: true}
	failing := &stubDetector{kind: model.KindOverspeeding, fail: errors.New("store down")}
	healthy := &stubDetector{kind: model.KindNoGpsFeed}
	e := newTestEngine(Options{Enabled: true, MinInterval: time.Minute}, panicking, failing, healthy)

	if !e.ProcessAll(context.Background()) {
		t.Fatal("cycle should complete despite detector failures")
	}
	if healthy.runs != 1 {
		t.Errorf("healthy detector runs = %d, want 1: siblings must not be cancelled", healthy.runs)
	}
}
