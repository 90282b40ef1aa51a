// Package hold owns the breath-hold timer: elapsed-time accumulation,
// milestone crossing detection, and new-personal-record detection
// against a supplied baseline.
package hold

import (
	"fmt"
	"sort"
	"sync"

	"github.com/zjrosen/breathe/internal/events"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/pubsub"
	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/sessions/domain"
)

// DefaultMilestones are the shipped milestone thresholds in seconds.
func DefaultMilestones() []float64 {
	return []float64{10, 20, 30, 45, 60, 90, 120, 180}
}

// Status represents the controller's lifecycle.
type Status string

const (
	// StatusIdle means the hold has not started.
	StatusIdle Status = "idle"
	// StatusRunning means elapsed time is accumulating.
	StatusRunning Status = "running"
	// StatusCompleted means the hold was released and the duration frozen.
	StatusCompleted Status = "completed"
)

// Controller accumulates hold time and emits milestone and new-record
// events. All methods are safe for concurrent use; ticks against a
// completed controller are no-ops.
type Controller struct {
	mu        sync.Mutex
	sessionID string
	broker    *pubsub.Broker[events.SessionEvent]

	status  Status
	elapsed float64
	target  float64

	// milestones is ascending; next indexes the first unannounced one.
	milestones []float64
	next       int

	// record is monotonic: once set it stays set for the session.
	record bool
}

// NewController creates a controller with the given milestone thresholds.
// Thresholds are sorted ascending; a nil slice uses the defaults.
func NewController(sessionID string, milestones []float64, broker *pubsub.Broker[events.SessionEvent]) *Controller {
	if milestones == nil {
		milestones = DefaultMilestones()
	}
	ms := make([]float64, len(milestones))
	copy(ms, milestones)
	sort.Float64s(ms)

	return &Controller{
		sessionID:  sessionID,
		broker:     broker,
		status:     StatusIdle,
		milestones: ms,
	}
}

// Start begins accumulation against the given personal best target.
// Target is 0 when no prior sessions exist.
func (c *Controller) Start(personalBestTarget float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusIdle {
		return &domain.PreconditionError{Op: "hold.Start", Reason: "controller already started"}
	}
	c.status = StatusRunning
	c.target = personalBestTarget
	log.Info(log.CatHold, "hold started", "session", c.sessionID, "target", personalBestTarget)
	return nil
}

// Restore re-enters a hold at a previously captured resumption point.
// Milestones at or below the restored elapsed time are marked announced
// so they never re-fire, and a record already beaten stays beaten
// without a duplicate event.
func (c *Controller) Restore(elapsed, target float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusIdle {
		return &domain.PreconditionError{Op: "hold.Restore", Reason: "controller already started"}
	}
	c.status = StatusRunning
	c.elapsed = elapsed
	c.target = target
	for c.next < len(c.milestones) && c.milestones[c.next] <= elapsed {
		c.next++
	}
	if elapsed > target {
		c.record = true
	}
	log.Info(log.CatHold, "hold restored", "session", c.sessionID, "elapsed", elapsed, "target", target)
	return nil
}

// Tick advances elapsed time by delta seconds and fires any newly
// crossed milestone or record events, each at most once per session.
func (c *Controller) Tick(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusRunning {
		return
	}
	c.elapsed += delta

	for c.next < len(c.milestones) && c.elapsed >= c.milestones[c.next] {
		threshold := c.milestones[c.next]
		c.next++
		c.broker.Publish(pubsub.UpdatedEvent, events.SessionEvent{
			Type:             events.MilestoneCrossed,
			SessionID:        c.sessionID,
			MilestoneSeconds: threshold,
			Elapsed:          c.elapsed,
			Haptic:           events.HapticMilestone,
			Announcement:     announceMilestone(threshold),
		})
	}

	if !c.record && c.elapsed > c.target {
		c.record = true
		c.broker.Publish(pubsub.UpdatedEvent, events.SessionEvent{
			Type:         events.NewRecord,
			SessionID:    c.sessionID,
			Elapsed:      c.elapsed,
			Haptic:       events.HapticRecord,
			Announcement: "New personal record",
		})
	}
}

// Release stops accumulation, freezes the elapsed duration, and returns
// it. Releasing a hold that is not running is a precondition failure.
func (c *Controller) Release() (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusRunning {
		return 0, &domain.PreconditionError{Op: "hold.Release", Reason: "hold not running"}
	}
	c.status = StatusCompleted
	log.Info(log.CatHold, "hold released", "session", c.sessionID, "elapsed", c.elapsed)
	return c.elapsed, nil
}

// EmergencyRelease forces an immediate release from any trigger source,
// bypassing normal flow. Unlike Release it is a no-op rather than an
// error when the hold is not running, so an emergency signal can always
// be fired safely.
func (c *Controller) EmergencyRelease() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusRunning {
		c.status = StatusCompleted
		log.Warn(log.CatHold, "emergency release", "session", c.sessionID, "elapsed", c.elapsed)
	}
	return c.elapsed
}

// Elapsed returns the accumulated hold time in seconds.
func (c *Controller) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed
}

// Target returns the personal best target supplied at start.
func (c *Controller) Target() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

// RecordSet reports whether the new-record event fired this session.
func (c *Controller) RecordSet() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.record
}

// Status returns the controller's lifecycle status.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Snapshot captures the current resumption point as a holding state.
func (c *Controller) Snapshot() session.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return session.Holding(c.elapsed, c.target)
}

// announceMilestone builds the accessibility string for a threshold.
func announceMilestone(threshold float64) string {
	total := int(threshold)
	minutes, seconds := total/60, total%60
	switch {
	case minutes == 0:
		return fmt.Sprintf("%d seconds", seconds)
	case seconds == 0 && minutes == 1:
		return "1 minute"
	case seconds == 0:
		return fmt.Sprintf("%d minutes", minutes)
	case minutes == 1:
		return fmt.Sprintf("1 minute %d seconds", seconds)
	default:
		return fmt.Sprintf("%d minutes %d seconds", minutes, seconds)
	}
}
