// Package events defines typed event structures for the breathing core.
// These events are published via the pubsub broker and consumed by the
// TUI and other notification sinks (haptics, accessibility). Delivery is
// fire-and-forget; the core never waits for acknowledgement.
package events

import (
	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/sessions/domain"
)

// SessionEventType identifies the kind of session event.
type SessionEventType string

const (
	// PhaseChanged is emitted on every breathing phase transition.
	PhaseChanged SessionEventType = "phase_changed"
	// BreathingFinished is emitted when the preparation sequence ends,
	// either naturally or via skip-to-hold.
	BreathingFinished SessionEventType = "breathing_finished"
	// MilestoneCrossed is emitted once per milestone threshold during
	// a breath hold.
	MilestoneCrossed SessionEventType = "milestone_crossed"
	// NewRecord is emitted the first instant the hold exceeds the
	// personal best target.
	NewRecord SessionEventType = "new_record"
	// SessionCompleted is emitted with the frozen record when the
	// session reaches its terminal state.
	SessionCompleted SessionEventType = "session_completed"
	// InterruptionOccurred is emitted when an active session is
	// suspended by an external cause.
	InterruptionOccurred SessionEventType = "interruption_occurred"
	// RecoveryAvailable is emitted when a valid snapshot is offered
	// for resumption.
	RecoveryAvailable SessionEventType = "recovery_available"
)

// HapticClass classifies the feedback signal accompanying an event.
// Phase entry and exit are distinct so the sink can render different
// vibration patterns.
type HapticClass string

const (
	// HapticPhaseEntry accompanies entering a breathing phase.
	HapticPhaseEntry HapticClass = "phase_entry"
	// HapticPhaseExit accompanies leaving a breathing phase.
	HapticPhaseExit HapticClass = "phase_exit"
	// HapticMilestone accompanies a milestone crossing.
	HapticMilestone HapticClass = "milestone"
	// HapticRecord accompanies a new personal record.
	HapticRecord HapticClass = "record"
	// HapticWarning accompanies interruptions and emergency stops.
	HapticWarning HapticClass = "warning"
)

// SessionEvent represents an event from the breathing core. Only the
// fields relevant to Type are populated.
type SessionEvent struct {
	// Type identifies the kind of event.
	Type SessionEventType

	// SessionID identifies the session that produced the event.
	SessionID string

	// Phase is the newly entered phase for phase change events.
	Phase session.Phase
	// Round is the current breathing round for phase change events.
	Round int
	// Remaining is the duration left in the new phase, in seconds.
	Remaining float64

	// Haptic classifies the feedback signal for this event.
	Haptic HapticClass
	// Announcement is the accessibility string describing the event.
	Announcement string

	// MilestoneSeconds is the crossed threshold for milestone events.
	MilestoneSeconds float64
	// Elapsed is the hold duration at emission time, in seconds.
	Elapsed float64

	// Record is the frozen session record for completion events.
	Record *domain.Record

	// Cause is the interruption cause for interruption events.
	Cause session.Cause
	// Resumable reports whether the interruption allows silent resume.
	Resumable bool

	// Snapshot is the offered snapshot for recovery events.
	Snapshot *session.RecoverySnapshot
}
