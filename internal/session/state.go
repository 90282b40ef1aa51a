package session

import "fmt"

// StateKind discriminates the State tagged union.
type StateKind string

const (
	// KindIdle means no session is running.
	KindIdle StateKind = "idle"
	// KindBreathing means the preparation sequence is ticking.
	KindBreathing StateKind = "breathing"
	// KindHolding means the breath-hold timer is ticking.
	KindHolding StateKind = "holding"
	// KindInterrupted means an active session was suspended by an
	// external cause and wraps the state to resume from.
	KindInterrupted StateKind = "interrupted"
	// KindCompleted means the session reached its terminal state.
	KindCompleted StateKind = "completed"
	// KindErrored means the session failed with a non-recoverable fault.
	KindErrored StateKind = "errored"
)

// BreathingDetail carries the resumption point of an in-flight
// preparation sequence.
type BreathingDetail struct {
	Round         int     `json:"round"`
	Phase         Phase   `json:"phase"`
	TimeRemaining float64 `json:"time_remaining"`
}

// HoldingDetail carries the resumption point of an in-flight breath hold.
type HoldingDetail struct {
	Elapsed float64 `json:"elapsed"`
	Target  float64 `json:"target"`
}

// InterruptedDetail wraps the previously active state together with the
// cause that suspended it. Saved is never itself an interrupted state.
type InterruptedDetail struct {
	Cause Cause  `json:"cause"`
	Saved *State `json:"saved"`
}

// CompletedDetail carries the final frozen hold duration.
type CompletedDetail struct {
	FinalDuration float64 `json:"final_duration"`
}

// ErroredDetail carries a human-readable failure description.
type ErroredDetail struct {
	Description string `json:"description"`
}

// State is the tagged union describing a running session. Exactly the
// payload matching Kind is non-nil; all constructors maintain this.
type State struct {
	Kind        StateKind          `json:"kind"`
	Breathing   *BreathingDetail   `json:"breathing,omitempty"`
	Holding     *HoldingDetail     `json:"holding,omitempty"`
	Interrupted *InterruptedDetail `json:"interrupted,omitempty"`
	Completed   *CompletedDetail   `json:"completed,omitempty"`
	Errored     *ErroredDetail     `json:"errored,omitempty"`
}

// Idle returns the idle state.
func Idle() State {
	return State{Kind: KindIdle}
}

// Breathing returns an active breathing state at the given resumption point.
func Breathing(round int, phase Phase, timeRemaining float64) State {
	return State{
		Kind:      KindBreathing,
		Breathing: &BreathingDetail{Round: round, Phase: phase, TimeRemaining: timeRemaining},
	}
}

// Holding returns an active holding state at the given resumption point.
func Holding(elapsed, target float64) State {
	return State{
		Kind:    KindHolding,
		Holding: &HoldingDetail{Elapsed: elapsed, Target: target},
	}
}

// Interrupted wraps a previously active state with an interruption cause.
// Wrapping an already-interrupted state is a programming error; callers
// must unwrap first so interrupted states never nest.
func Interrupted(cause Cause, saved State) State {
	if saved.Kind == KindInterrupted {
		panic("session: interrupted state must not nest")
	}
	inner := saved
	return State{
		Kind:        KindInterrupted,
		Interrupted: &InterruptedDetail{Cause: cause, Saved: &inner},
	}
}

// Completed returns the terminal completed state.
func Completed(finalDuration float64) State {
	return State{
		Kind:      KindCompleted,
		Completed: &CompletedDetail{FinalDuration: finalDuration},
	}
}

// Errored returns the terminal error state.
func Errored(description string) State {
	return State{
		Kind:    KindErrored,
		Errored: &ErroredDetail{Description: description},
	}
}

// IsActive reports whether the state is one an interruption can suspend;
// only breathing and holding qualify.
func (s State) IsActive() bool {
	return s.Kind == KindBreathing || s.Kind == KindHolding
}

// String returns a short description of the state for logs.
func (s State) String() string {
	switch s.Kind {
	case KindBreathing:
		return fmt.Sprintf("breathing(round=%d phase=%s remaining=%.1fs)",
			s.Breathing.Round, s.Breathing.Phase, s.Breathing.TimeRemaining)
	case KindHolding:
		return fmt.Sprintf("holding(elapsed=%.1fs target=%.1fs)",
			s.Holding.Elapsed, s.Holding.Target)
	case KindInterrupted:
		return fmt.Sprintf("interrupted(cause=%s saved=%s)",
			s.Interrupted.Cause, s.Interrupted.Saved)
	case KindCompleted:
		return fmt.Sprintf("completed(duration=%.1fs)", s.Completed.FinalDuration)
	case KindErrored:
		return fmt.Sprintf("errored(%s)", s.Errored.Description)
	default:
		return string(s.Kind)
	}
}
