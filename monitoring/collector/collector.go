// Package collector periodically samples a recorder registry and
// republishes it through the monitoring package's Prometheus gauges. It
// is kept separate from monitoring itself so that monitoring (which
// recorder.Record/RecordFast import directly to increment the capture
// counter on the hot path) never has to import recorder back.
package collector

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/flightrecorder/flightrecorder/monitoring"
	"github.com/flightrecorder/flightrecorder/recorder"
)

// Config configures a Collector's polling behavior.
type Config struct {
	// PollInterval is how often the collector snapshots every registered
	// recorder's readable depth and overflow count into gauges.
	PollInterval time.Duration
}

// DefaultConfig returns a sensible default polling configuration.
func DefaultConfig() *Config {
	return &Config{PollInterval: 10 * time.Second}
}

// Collector periodically polls a recorder registry and republishes each
// recorder's ring depth and overflow count as Prometheus gauges. It does
// not touch the hot record path -- monitoring.RecordCaptured is called
// directly by recorder.record -- it only samples state that would
// otherwise require walking the registry from a scrape handler.
type Collector struct {
	reg          *recorder.Registry
	pollInterval time.Duration

	started atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
}

// Option configures a Collector.
type Option func(*Collector)

// WithPollInterval overrides the default poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Collector) { c.pollInterval = d }
}

// New creates a Collector over reg. Pass recorder.Global() to monitor the
// process-wide registry.
func New(reg *recorder.Registry, opts ...Option) *Collector {
	c := &Collector{reg: reg, pollInterval: 10 * time.Second}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start begins the background polling loop. Safe to call once; repeat
// calls are no-ops until Stop is called.
func (c *Collector) Start() {
	if !c.started.CompareAndSwap(false, true) {
		return
	}

	c.mu.Lock()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.mu.Unlock()

	go c.run(ctx)
}

// Stop halts the background polling loop.
func (c *Collector) Stop() {
	if !c.started.CompareAndSwap(true, false) {
		return
	}
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (c *Collector) run(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	c.Poll()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Poll()
		}
	}
}

// Poll snapshots every registered recorder once, outside of the regular
// polling interval. Exported so a caller (or a test) can force an
// up-to-date scrape without waiting for the next tick.
func (c *Collector) Poll() {
	count := 0
	c.reg.Each(func(r *recorder.Recorder) bool {
		count++
		monitoring.UpdateReadable(r.Name(), r.Readable())
		monitoring.UpdateOverflow(r.Name(), r.Overflow())
		return true
	})
	monitoring.UpdateActiveRecorders(count)
}
