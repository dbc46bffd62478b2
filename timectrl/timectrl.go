// Package timectrl drives a simulation clock in fixed ticks. The coordconv
// track command samples SGP4 positions on each tick.
package timectrl

import (
	"context"
	"sort"
	"sync"
	"time"
)

// SimClock is the read side of a simulation clock.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
	// After returns a channel that receives the simulation time once d has
	// elapsed in simulation time.
	After(d time.Duration) <-chan time.Time
}

// Mode describes how the TimeController advances simulation time.
type Mode int

const (
	// RealTime advances according to wall-clock time.
	RealTime Mode = iota
	// Accelerated advances as quickly as the loop can run while still stepping by Tick.
	Accelerated
)

func (m Mode) String() string {
	if m == Accelerated {
		return "accelerated"
	}
	return "realtime"
}

type timer struct {
	at time.Time
	ch chan time.Time
}

// TimeController drives simulation time and notifies registered listeners.
type TimeController struct {
	mu        sync.RWMutex
	StartTime time.Time
	Tick      time.Duration
	Mode      Mode

	currentTime time.Time
	listeners   []func(time.Time)
	timers      []timer
}

var _ SimClock = (*TimeController)(nil)

// NewTimeController constructs a controller.
func NewTimeController(start time.Time, tick time.Duration, mode Mode) *TimeController {
	return &TimeController{
		StartTime:   start,
		Tick:        tick,
		Mode:        mode,
		currentTime: start,
	}
}

// Now returns the current simulation time.
func (tc *TimeController) Now() time.Time {
	tc.mu.RLock()
	defer tc.mu.RUnlock()
	return tc.currentTime
}

// ElapsedSince returns the simulation seconds between epoch and Now. With
// epoch at the instant the ECI and ECEF frames coincide this is the elapsed
// ECI time carried by a Coordinate.
func (tc *TimeController) ElapsedSince(epoch time.Time) float64 {
	return tc.Now().Sub(epoch).Seconds()
}

// After returns a channel that receives the simulation time once it has
// advanced by d. A non-positive d fires immediately.
func (tc *TimeController) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if d <= 0 {
		ch <- tc.currentTime
		return ch
	}
	tc.timers = append(tc.timers, timer{at: tc.currentTime.Add(d), ch: ch})
	sort.SliceStable(tc.timers, func(i, j int) bool { return tc.timers[i].at.Before(tc.timers[j].at) })
	return ch
}

// AddListener registers a callback invoked on every tick.
func (tc *TimeController) AddListener(fn func(time.Time)) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.listeners = append(tc.listeners, fn)
}

// SetTime jumps the clock to t and fires any timers that are now due.
// Listeners are not called.
func (tc *TimeController) SetTime(t time.Time) {
	tc.mu.Lock()
	tc.currentTime = t
	due := tc.popDueLocked()
	tc.mu.Unlock()
	fire(due, t)
}

// Step advances the clock by one tick, fires due timers and calls every
// listener with the new time.
func (tc *TimeController) Step() time.Time {
	tc.mu.Lock()
	tc.currentTime = tc.currentTime.Add(tc.Tick)
	now := tc.currentTime
	due := tc.popDueLocked()
	listeners := append([]func(time.Time){}, tc.listeners...)
	tc.mu.Unlock()

	fire(due, now)
	for _, fn := range listeners {
		fn(now)
	}
	return now
}

// Start runs the controller for the specified duration in a separate goroutine.
// It returns a channel that is closed when the controller finishes.
func (tc *TimeController) Start(duration time.Duration) <-chan struct{} {
	return tc.StartContext(context.Background(), duration)
}

// StartContext is Start with cancellation. A non-positive duration runs
// until ctx is done. The clock is reset to StartTime first.
func (tc *TimeController) StartContext(ctx context.Context, duration time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		tc.SetTime(tc.StartTime)

		var tickC <-chan time.Time
		if tc.Mode == RealTime {
			ticker := time.NewTicker(tc.Tick)
			defer ticker.Stop()
			tickC = ticker.C
		}

		elapsed := time.Duration(0)
		for {
			if duration > 0 && elapsed >= duration {
				return
			}
			if tickC != nil {
				select {
				case <-ctx.Done():
					return
				case <-tickC:
				}
			} else if ctx.Err() != nil {
				return
			}
			tc.Step()
			elapsed += tc.Tick
		}
	}()
	return done
}

func (tc *TimeController) popDueLocked() []timer {
	n := 0
	for n < len(tc.timers) && !tc.timers[n].at.After(tc.currentTime) {
		n++
	}
	if n == 0 {
		return nil
	}
	due := append([]timer(nil), tc.timers[:n]...)
	tc.timers = append(tc.timers[:0], tc.timers[n:]...)
	return due
}

func fire(due []timer, now time.Time) {
	for _, t := range due {
		t.ch <- now
	}
}
