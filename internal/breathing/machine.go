package breathing

import (
	"sync"

	"github.com/zjrosen/breathe/internal/events"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/pubsub"
	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/sessions/domain"
)

// timeEpsilon absorbs float drift from repeated 0.1s decrements so a
// countdown that lands within a nanosecond of zero still advances on
// the expected tick.
const timeEpsilon = 1e-9

// Status represents the machine's lifecycle around the phase sequence.
type Status string

const (
	// StatusNotStarted means Start has not been called.
	StatusNotStarted Status = "not_started"
	// StatusRunning means the sequence is ticking.
	StatusRunning Status = "running"
	// StatusPaused means ticks are received but time does not advance.
	StatusPaused Status = "paused"
	// StatusTerminated means the sequence ended, naturally or not.
	StatusTerminated Status = "terminated"
)

// Machine is the breathing phase state machine. It consumes ticks from
// the timer primitive and emits phase change events through the broker.
// All methods are safe for concurrent use; a tick racing a stop or an
// interruption observes the terminated state and becomes a no-op.
type Machine struct {
	mu        sync.Mutex
	protocol  Protocol
	sessionID string
	broker    *pubsub.Broker[events.SessionEvent]

	status    Status
	phase     session.Phase
	round     int
	remaining float64

	completedRounds int
	skipped         bool
}

// NewMachine creates a machine for one session. The broker receives a
// PhaseChanged event per transition and one BreathingFinished event when
// the sequence hands off to the hold controller.
func NewMachine(sessionID string, protocol Protocol, broker *pubsub.Broker[events.SessionEvent]) (*Machine, error) {
	if err := protocol.Validate(); err != nil {
		return nil, err
	}
	return &Machine{
		protocol:  protocol,
		sessionID: sessionID,
		broker:    broker,
		status:    StatusNotStarted,
	}, nil
}

// Start enters the ready phase and begins the sequence.
// Starting a machine twice is a precondition failure.
func (m *Machine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusNotStarted {
		return &domain.PreconditionError{Op: "breathing.Start", Reason: "machine already started"}
	}
	m.status = StatusRunning
	m.enterPhase(session.PhaseReady)
	return nil
}

// Restore re-enters the sequence at a previously captured resumption
// point, used when resuming an interrupted session. The machine must
// not have been started.
func (m *Machine) Restore(round int, phase session.Phase, remaining float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusNotStarted {
		return &domain.PreconditionError{Op: "breathing.Restore", Reason: "machine already started"}
	}
	if !phase.IsValid() {
		return &domain.PreconditionError{Op: "breathing.Restore", Reason: "unknown phase " + phase.String()}
	}
	m.status = StatusRunning
	m.phase = phase
	m.round = round
	m.remaining = remaining
	switch {
	case phase.IsFinal():
		m.completedRounds = round
	case round > 0:
		m.completedRounds = round - 1
	}
	log.Info(log.CatBreath, "restored breathing sequence",
		"session", m.sessionID, "phase", phase, "round", round, "remaining", remaining)
	return nil
}

// Tick advances the sequence by delta seconds. A phase advances exactly
// when its remaining time reaches zero, never early. Ticks against a
// paused or terminated machine are no-ops.
func (m *Machine) Tick(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusRunning {
		return
	}

	m.remaining -= delta
	for m.remaining <= timeEpsilon && m.status == StatusRunning {
		carry := m.remaining
		m.advance()
		if m.status == StatusRunning {
			m.remaining += carry
		}
	}
}

// advance moves to the successor phase. Callers hold m.mu.
func (m *Machine) advance() {
	switch m.phase {
	case session.PhaseReady:
		m.round = 1
		m.enterPhase(session.PhaseInhale)
	case session.PhaseInhale:
		m.enterPhase(session.PhaseHoldFull)
	case session.PhaseHoldFull:
		m.enterPhase(session.PhaseExhale)
	case session.PhaseExhale:
		m.enterPhase(session.PhaseHoldEmpty)
	case session.PhaseHoldEmpty:
		m.completedRounds = m.round
		if m.round < m.protocol.TotalRounds {
			m.round++
			m.enterPhase(session.PhaseInhale)
		} else {
			m.enterPhase(session.PhaseFinalInhale)
		}
	case session.PhaseFinalInhale:
		m.enterPhase(session.PhaseFinalExhale)
	case session.PhaseFinalExhale:
		m.finish("Preparation complete, hold your breath")
	}
}

// enterPhase sets the phase, resets its countdown, and emits the phase
// change with its haptic class and announcement. Callers hold m.mu.
func (m *Machine) enterPhase(phase session.Phase) {
	m.phase = phase
	m.remaining = m.protocol.Duration(phase)

	log.Debug(log.CatBreath, "phase transition",
		"session", m.sessionID, "phase", phase, "round", m.round, "duration", m.remaining)

	m.broker.Publish(pubsub.UpdatedEvent, events.SessionEvent{
		Type:         events.PhaseChanged,
		SessionID:    m.sessionID,
		Phase:        phase,
		Round:        m.round,
		Remaining:    m.remaining,
		Haptic:       events.HapticPhaseEntry,
		Announcement: m.protocol.announcement(phase),
	})
}

// finish terminates the sequence and emits the handoff event.
// Callers hold m.mu.
func (m *Machine) finish(announcement string) {
	m.status = StatusTerminated
	m.remaining = 0

	m.broker.Publish(pubsub.UpdatedEvent, events.SessionEvent{
		Type:         events.BreathingFinished,
		SessionID:    m.sessionID,
		Round:        m.round,
		Haptic:       events.HapticPhaseExit,
		Announcement: announcement,
	})
}

// Pause suspends the countdown. Ticks received while paused do not
// decrement time and no phase advances.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusRunning {
		m.status = StatusPaused
	}
}

// Resume continues a paused countdown.
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusPaused {
		m.status = StatusRunning
	}
}

// SkipToHold forcibly terminates the sequence and proceeds directly to
// the breath hold, regardless of current phase or round.
func (m *Machine) SkipToHold() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusTerminated {
		return
	}
	m.skipped = true
	log.Info(log.CatBreath, "skipping to hold",
		"session", m.sessionID, "phase", m.phase, "round", m.round)
	m.finish("Skipped ahead, hold your breath")
}

// Stop terminates the sequence immediately without a handoff event.
// This is the only path back to idle. Stop is idempotent.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status == StatusTerminated {
		return
	}
	m.status = StatusTerminated
	m.remaining = 0
}

// Status returns the machine's lifecycle status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Skipped reports whether the sequence ended via skip-to-hold.
func (m *Machine) Skipped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.skipped
}

// CompletedRounds returns the number of fully completed breathing rounds.
func (m *Machine) CompletedRounds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completedRounds
}

// Snapshot captures the current resumption point as a breathing state.
func (m *Machine) Snapshot() session.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return session.Breathing(m.round, m.phase, m.remaining)
}
