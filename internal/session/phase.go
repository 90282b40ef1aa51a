// Package session defines the shared session types for the breathing core:
// the breathing phase enumeration, the tagged session state union, the
// interruption cause table, and the persisted recovery snapshot.
package session

// Phase represents one step of the breathing preparation sequence.
type Phase string

const (
	// PhaseReady is the countdown before the first breathing round.
	PhaseReady Phase = "ready"
	// PhaseInhale is the inhale step of a breathing round.
	PhaseInhale Phase = "inhale"
	// PhaseHoldFull is the lungs-full hold step of a breathing round.
	PhaseHoldFull Phase = "hold_full"
	// PhaseExhale is the exhale step of a breathing round.
	PhaseExhale Phase = "exhale"
	// PhaseHoldEmpty is the lungs-empty hold step of a breathing round.
	PhaseHoldEmpty Phase = "hold_empty"
	// PhaseFinalInhale is the last deep inhale before the breath hold.
	PhaseFinalInhale Phase = "final_inhale"
	// PhaseFinalExhale is the partial exhale that starts the breath hold.
	PhaseFinalExhale Phase = "final_exhale"
)

// String returns the string representation of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsValid returns true if the phase is a recognized breathing phase.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseReady, PhaseInhale, PhaseHoldFull, PhaseExhale, PhaseHoldEmpty, PhaseFinalInhale, PhaseFinalExhale:
		return true
	default:
		return false
	}
}

// IsFinal returns true for the two final-breath phases that follow the
// last breathing round.
func (p Phase) IsFinal() bool {
	return p == PhaseFinalInhale || p == PhaseFinalExhale
}
