// Package engine orchestrates the detection cycle: it fans the detector
// kinds out concurrently, isolates their failures from one another, and
// gates re-runs behind a minimum interval.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"fleetwatch/internal/detector"
	"fleetwatch/internal/metrics"
)

// Options configures the engine.
type Options struct {
	// Enabled gates the whole engine; a disabled engine ignores triggers.
	Enabled bool
	// MinInterval is the minimum spacing between cycle starts. A trigger
	// arriving earlier is dropped. The gate lives in process memory only
	// and resets on restart.
	MinInterval time.Duration
	// TickInterval, when positive, runs a cycle on a fixed timer.
	TickInterval time.Duration
	// TriggerSubject, when set together with a NATS connection, runs a
	// cycle whenever the ingestion pipeline announces a batch.
	TriggerSubject string
}

// Engine runs all detectors per cycle. Concurrent overlapping cycles over the
// same vehicle can race; correctness relies on the idempotent raise/clear
// operations and per-row store atomicity, not on any lock held here.
type Engine struct {
	detectors []detector.Detector
	opts      Options
	metrics   *metrics.Set
	now       func() time.Time

	mu        sync.Mutex
	lastStart time.Time

	natsConn *nats.Conn
	sub      *nats.Subscription
	ticker   *time.Ticker
	done     chan struct{}
}

// New creates an engine over the given detectors. natsConn and metricSet may
// be nil.
func New(detectors []detector.Detector, natsConn *nats.Conn, metricSet *metrics.Set, opts Options) *Engine {
	return &Engine{
		detectors: detectors,
		opts:      opts,
		metrics:   metricSet,
		now:       time.Now,
		natsConn:  natsConn,
		done:      make(chan struct{}),
	}
}

// Start wires the engine's triggers: the fixed ticker and the ingestion
// batch subscription. The manual HTTP trigger calls ProcessAll directly.
func (e *Engine) Start(ctx context.Context) error {
	if e.natsConn != nil && e.opts.TriggerSubject != "" {
		sub, err := e.natsConn.Subscribe(e.opts.TriggerSubject, func(msg *nats.Msg) {
			e.ProcessAll(ctx)
		})
		if err != nil {
			return err
		}
		e.sub = sub
		log.Printf("[Engine] subscribed to %s", e.opts.TriggerSubject)
	}

	if e.opts.TickInterval > 0 {
		e.ticker = time.NewTicker(e.opts.TickInterval)
		go func() {
			for {
				select {
				case <-e.ticker.C:
					e.ProcessAll(ctx)
				case <-e.done:
					return
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	log.Println("[Engine] started")
	return nil
}

// Stop tears down the engine's triggers.
func (e *Engine) Stop() {
	if e.sub != nil {
		e.sub.Unsubscribe()
	}
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.done)
	log.Println("[Engine] stopped")
}

// ProcessAll runs one detection cycle: every detector kind concurrently, each
// isolated so an error or panic in one kind never cancels its siblings.
// Returns false when the cycle was gated off.
func (e *Engine) ProcessAll(ctx context.Context) bool {
	if !e.opts.Enabled {
		return false
	}

	now := e.now()
	e.mu.Lock()
	if !e.lastStart.IsZero() && now.Sub(e.lastStart) < e.opts.MinInterval {
		e.mu.Unlock()
		if e.metrics != nil {
			e.metrics.CyclesSkipped.Inc()
		}
		return false
	}
	e.lastStart = now
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.CyclesTotal.Inc()
	}

	var wg sync.WaitGroup
	for _, d := range e.detectors {
		wg.Add(1)
		go func(d detector.Detector) {
			defer wg.Done()
			e.runDetector(ctx, d)
		}(d)
	}
	wg.Wait()

	if e.metrics != nil {
		e.metrics.CycleDuration.Observe(e.now().Sub(now).Seconds())
	}
	return true
}

func (e *Engine) runDetector(ctx context.Context, d detector.Detector) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[Engine] detector %s panicked: %v", d.Kind(), r)
			if e.metrics != nil {
				e.metrics.DetectorErrors.WithLabelValues(string(d.Kind())).Inc()
			}
		}
	}()

	if err := d.Run(ctx); err != nil {
		log.Printf("[Engine] detector %s failed: %v", d.Kind(), err)
		if e.metrics != nil {
			e.metrics.DetectorErrors.WithLabelValues(string(d.Kind())).Inc()
		}
	}
}
