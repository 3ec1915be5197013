package galaxy

import (
	"sync"
	"sync/atomic"
	"time"
)

// Driver schedules frames for hosts without a render loop. It re-arms
// its timer before doing the frame's work, so a slow frame delays the
// next tick but never stacks a second one.
type Driver struct {
	g        *Galaxy
	interval time.Duration

	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
	running  atomic.Bool
	ticks    atomic.Int64
}

// NewDriver creates a driver that calls Frame every interval. A
// non-positive interval defaults to 60 ticks per second.
func NewDriver(g *Galaxy, interval time.Duration) *Driver {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Driver{g: g, interval: interval}
}

// Start launches the loop. Returns false if it is already running.
func (d *Driver) Start() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.CompareAndSwap(false, true) {
		return false
	}
	d.stopChan = make(chan struct{})
	d.wg.Add(1)
	go d.loop(d.stopChan)
	return true
}

// Stop halts the loop and waits for the in-flight frame to finish.
// Safe to call when not running; Start works again afterwards.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running.CompareAndSwap(true, false) {
		return
	}
	close(d.stopChan)
	d.wg.Wait()
}

// Running reports whether the loop is active.
func (d *Driver) Running() bool {
	return d.running.Load()
}

// Ticks returns the number of frames driven since creation.
func (d *Driver) Ticks() int64 {
	return d.ticks.Load()
}

func (d *Driver) loop(stop <-chan struct{}) {
	defer d.wg.Done()

	timer := time.NewTimer(d.interval)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		// Re-arm before the work so frame cost never compounds the
		// schedule.
		timer.Reset(d.interval)
		d.g.Frame(time.Now())
		d.ticks.Add(1)
	}
}
