// Package timer provides the cancellable periodic tick source driving
// both the breathing phase countdowns and the hold duration counter.
package timer

import (
	"errors"
	"sync"
	"time"
)

// Resolution is the tick interval used by the breathing core.
const Resolution = 100 * time.Millisecond

// ErrAlreadyRunning is returned by Start when the timer is ticking.
var ErrAlreadyRunning = errors.New("timer: already running")

// TickFunc is invoked once per tick on the timer's goroutine. Ticks
// never overlap: a slow callback delays subsequent ticks rather than
// running them concurrently.
type TickFunc func(now time.Time)

// Timer delivers periodic ticks until stopped. It is purely a scheduling
// primitive with no side effects of its own. Stop is idempotent and safe
// to call at any time, including from within the tick callback; once
// Stop is called no new tick begins. Consumers that transition state on
// ticks guard their own state, so a tick racing a stop observes the
// stopped state and becomes a no-op.
type Timer struct {
	mu      sync.Mutex
	done    chan struct{}
	running bool
}

// New creates a stopped timer.
func New() *Timer {
	return &Timer{}
}

// Start begins periodic invocation of onTick at the given interval.
// Returns ErrAlreadyRunning if the timer is already ticking.
func (t *Timer) Start(interval time.Duration, onTick TickFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrAlreadyRunning
	}

	done := make(chan struct{})
	t.done = done
	t.running = true

	go loop(interval, onTick, done)
	return nil
}

// Stop cancels tick delivery. Safe to call when not running.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	close(t.done)
	t.running = false
}

// Running reports whether the timer is currently ticking.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

func loop(interval time.Duration, onTick TickFunc, done chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case now := <-ticker.C:
			// Re-check so a stop that raced the ticker wins.
			select {
			case <-done:
				return
			default:
			}
			onTick(now)
		}
	}
}
