package timectrl

import (
	"sync"
	"time"
)

// SimClock is an interface for accessing simulation time, so consumers
// (forwarding engine, export service) can depend on a clock abstraction
// rather than the concrete controller.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// SinceEpochNs returns the nanoseconds elapsed since the epoch
	// (the controller's start time). The topological resolver keys its
	// t=0 initialization off this value.
	SinceEpochNs() int64
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still stepping by Tick.
	Accelerated
)

// TimeController drives simulation time and notifies registered tick
// listeners with both the simulation instant and its epoch-relative
// nanosecond index. It implements SimClock.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time

	listeners []func(simTime time.Time, sinceEpochNs int64)
}

// NewTimeController constructs a controller anchored at start.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time. Implements SimClock.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// SinceEpochNs returns nanoseconds between the epoch and the current
// simulation time. Implements SimClock.
func (tc *TimeController) SinceEpochNs() int64 {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime.Sub(tc.StartTime).Nanoseconds()
}

// SetTime moves the simulation clock to an arbitrary instant.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.currentTime = t
}

// AddListener registers a callback invoked on every tick, including the
// initial tick at the epoch itself (sinceEpochNs == 0).
func (tc *TimeController) AddListener(fn func(simTime time.Time, sinceEpochNs int64)) {
	tc.listeners = append(tc.listeners, fn)
}

// Start runs the controller for the specified duration in a separate
// goroutine and returns a channel closed when it finishes. The first
// listener invocation happens immediately at the epoch so per-run
// initialization (address assignment, forwarding tables) observes t=0.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.mu.Lock()
		simTime := tc.StartTime
		tc.currentTime = simTime
		tc.mu.Unlock()

		tc.notify(simTime)

		elapsed := time.Duration(0)
		var ticker *time.Ticker
		if tc.Mode == RealTime {
			ticker = time.NewTicker(tc.Tick)
			defer ticker.Stop()
		}

		for {
			if duration > 0 && elapsed >= duration {
				return
			}

			if ticker != nil {
				<-ticker.C
			}
			simTime = simTime.Add(tc.Tick)
			elapsed += tc.Tick

			tc.mu.Lock()
			tc.currentTime = simTime
			tc.mu.Unlock()

			tc.notify(simTime)
		}
	}()
	return done
}

func (tc *TimeController) notify(simTime time.Time) {
	sinceEpochNs := simTime.Sub(tc.StartTime).Nanoseconds()
	for _, fn := range tc.listeners {
		fn(simTime, sinceEpochNs)
	}
}
