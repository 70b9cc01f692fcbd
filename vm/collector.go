package vm

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tliron/commonlog"
)

// ---------------------------------------------------------------------------
// Collector: periodic collection for a Heap
// ---------------------------------------------------------------------------

// RootFunc reports the values the embedding interpreter currently holds
// (operand stack, locals, globals). They are marked in addition to the
// heap's registered roots. A Collector calls it from its own goroutine.
type RootFunc func() []Value

// Collector periodically collects a heap. A tick that finds a mutation in
// progress is skipped rather than waiting, so the mutator is never blocked
// by the schedule.
type Collector struct {
	heap     *Heap
	roots    RootFunc
	interval time.Duration
	enabled  atomic.Bool
	stop     chan struct{}
	stopped  chan struct{}
	mu       sync.Mutex // protects start/stop lifecycle

	sweepCount atomic.Uint64
	skipped    atomic.Uint64

	log commonlog.Logger
}

// DefaultCollectInterval is the default collection interval.
const DefaultCollectInterval = 30 * time.Second

// NewCollector creates a Collector for heap. roots may be nil.
func NewCollector(heap *Heap, interval time.Duration, roots RootFunc) *Collector {
	if interval <= 0 {
		interval = DefaultCollectInterval
	}
	c := &Collector{
		heap:     heap,
		roots:    roots,
		interval: interval,
		log:      commonlog.GetLogger("objcore.collector"),
	}
	c.enabled.Store(true)
	return c
}

// Start begins the periodic collection goroutine. It is safe to call Start
// multiple times; only one loop will run.
func (c *Collector) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stop != nil {
		return
	}

	c.stop = make(chan struct{})
	c.stopped = make(chan struct{})

	// Capture channels locally so the goroutine does not read c.stop/c.stopped
	// after Stop() has nilled them out.
	stopCh := c.stop
	stoppedCh := c.stopped
	go c.loop(stopCh, stoppedCh)
}

// Stop halts the collection goroutine and waits for it to finish.
// It is safe to call Stop multiple times or on a Collector that was never
// started.
func (c *Collector) Stop() {
	c.mu.Lock()
	stopCh := c.stop
	stoppedCh := c.stopped
	c.stop = nil
	c.stopped = nil
	c.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-stoppedCh
	}
}

// SetEnabled enables or disables collection. When disabled, the goroutine
// still runs but skips its ticks.
func (c *Collector) SetEnabled(enabled bool) {
	c.enabled.Store(enabled)
}

// IsEnabled returns whether collection is currently enabled.
func (c *Collector) IsEnabled() bool {
	return c.enabled.Load()
}

// Interval returns the collection interval.
func (c *Collector) Interval() time.Duration {
	return c.interval
}

// SweepCount returns the number of completed collections.
func (c *Collector) SweepCount() uint64 {
	return c.sweepCount.Load()
}

// Skipped returns the number of ticks that found a mutation in progress.
func (c *Collector) Skipped() uint64 {
	return c.skipped.Load()
}

// LastStats returns the heap's most recent collection statistics, or nil.
func (c *Collector) LastStats() *CollectStats {
	return c.heap.Stats().Last
}

// CollectNow performs an immediate collection regardless of the timer.
func (c *Collector) CollectNow() (*CollectStats, error) {
	var extra []Value
	if c.roots != nil {
		extra = c.roots()
	}
	stats, err := c.heap.Collect(extra...)
	if err != nil {
		if errors.Is(err, ErrMutationInProgress) {
			c.skipped.Add(1)
		}
		return nil, err
	}
	c.sweepCount.Add(1)
	return stats, nil
}

// loop is the collection goroutine. stopCh and stoppedCh are captured copies
// of c.stop and c.stopped.
func (c *Collector) loop(stopCh <-chan struct{}, stoppedCh chan struct{}) {
	defer close(stoppedCh)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !c.enabled.Load() {
				continue
			}
			if _, err := c.CollectNow(); err != nil {
				c.log.Debugf("collection skipped: %s", err)
			}
		}
	}
}
