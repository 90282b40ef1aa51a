// Package breathing drives the guided preparation sequence: a fixed
// number of box-breathing rounds followed by the final-breath
// sub-sequence that hands off to the breath hold.
package breathing

import (
	"fmt"

	"github.com/zjrosen/breathe/internal/session"
)

// Round bounds for a protocol. Protocols vary, but every protocol runs
// between one and ten preparation rounds.
const (
	MinRounds = 1
	MaxRounds = 10
)

// Protocol describes the fixed durations of a preparation sequence.
// All durations are in seconds.
type Protocol struct {
	// Name identifies the protocol on persisted records.
	Name string

	// TotalRounds is the number of breathing rounds before the final
	// breath. Adjustable per protocol; the shipped box protocol uses 4.
	TotalRounds int

	// ReadySeconds is the countdown before the first round.
	ReadySeconds float64

	// InhaleSeconds, HoldFullSeconds, ExhaleSeconds and HoldEmptySeconds
	// are the four steps of one round. Box breathing keeps them equal.
	InhaleSeconds    float64
	HoldFullSeconds  float64
	ExhaleSeconds    float64
	HoldEmptySeconds float64

	// FinalInhaleSeconds and FinalExhaleSeconds are the final-breath
	// sub-sequence leading into the hold.
	FinalInhaleSeconds float64
	FinalExhaleSeconds float64
}

// DefaultProtocol returns the shipped 4-4-4-4 box breathing protocol.
func DefaultProtocol() Protocol {
	return Protocol{
		Name:               "box-4-4-4-4",
		TotalRounds:        4,
		ReadySeconds:       3,
		InhaleSeconds:      4,
		HoldFullSeconds:    4,
		ExhaleSeconds:      4,
		HoldEmptySeconds:   4,
		FinalInhaleSeconds: 4,
		FinalExhaleSeconds: 2,
	}
}

// Validate checks the protocol is usable.
func (p Protocol) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("protocol name must not be empty")
	}
	if p.TotalRounds < MinRounds || p.TotalRounds > MaxRounds {
		return fmt.Errorf("protocol rounds must be between %d and %d, got %d", MinRounds, MaxRounds, p.TotalRounds)
	}
	for _, d := range []float64{
		p.ReadySeconds, p.InhaleSeconds, p.HoldFullSeconds, p.ExhaleSeconds,
		p.HoldEmptySeconds, p.FinalInhaleSeconds, p.FinalExhaleSeconds,
	} {
		if d <= 0 {
			return fmt.Errorf("protocol phase durations must be positive")
		}
	}
	return nil
}

// Duration returns the fixed duration of a phase under this protocol,
// in seconds.
func (p Protocol) Duration(phase session.Phase) float64 {
	switch phase {
	case session.PhaseReady:
		return p.ReadySeconds
	case session.PhaseInhale:
		return p.InhaleSeconds
	case session.PhaseHoldFull:
		return p.HoldFullSeconds
	case session.PhaseExhale:
		return p.ExhaleSeconds
	case session.PhaseHoldEmpty:
		return p.HoldEmptySeconds
	case session.PhaseFinalInhale:
		return p.FinalInhaleSeconds
	case session.PhaseFinalExhale:
		return p.FinalExhaleSeconds
	default:
		return 0
	}
}

// announcement builds the accessibility string for entering a phase.
func (p Protocol) announcement(phase session.Phase) string {
	switch phase {
	case session.PhaseReady:
		return fmt.Sprintf("Get ready, starting in %.0f seconds", p.ReadySeconds)
	case session.PhaseInhale:
		return fmt.Sprintf("Breathe in for %.0f seconds", p.InhaleSeconds)
	case session.PhaseHoldFull:
		return fmt.Sprintf("Hold for %.0f seconds", p.HoldFullSeconds)
	case session.PhaseExhale:
		return fmt.Sprintf("Breathe out for %.0f seconds", p.ExhaleSeconds)
	case session.PhaseHoldEmpty:
		return fmt.Sprintf("Stay empty for %.0f seconds", p.HoldEmptySeconds)
	case session.PhaseFinalInhale:
		return fmt.Sprintf("Take a final deep breath for %.0f seconds", p.FinalInhaleSeconds)
	case session.PhaseFinalExhale:
		return fmt.Sprintf("Let go and begin your hold in %.0f seconds", p.FinalExhaleSeconds)
	default:
		return ""
	}
}
