// Package recovery implements the interruption and recovery manager. It
// observes external lifecycle causes, suspends the active session state,
// persists recovery snapshots for auto-resumable causes, and offers
// restoration within a bounded window after relaunch.
package recovery

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/zjrosen/breathe/internal/events"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/pubsub"
	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/sessions/domain"
	"github.com/zjrosen/breathe/internal/timer"
)

// DefaultWindow is the bound on snapshot age. A snapshot older than this
// is expired: discarded on read, never offered for resume.
const DefaultWindow = 300 * time.Second

// Manager is the state machine over session.State that handles
// interruptions. Cause signals arrive asynchronously relative to timer
// ticks; all transitions are atomic under the manager's lock, so a tick
// observing an interrupted state is a no-op at the runner level.
type Manager struct {
	mu        sync.Mutex
	sessionID string
	state     session.State

	store  domain.SnapshotRepository
	broker *pubsub.Broker[events.SessionEvent]
	clock  timer.Clock
	window time.Duration

	hasRecoverable bool
}

// NewManager creates a manager against the given snapshot store. A zero
// window uses DefaultWindow.
func NewManager(store domain.SnapshotRepository, broker *pubsub.Broker[events.SessionEvent], clock timer.Clock, window time.Duration) *Manager {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Manager{
		store:  store,
		broker: broker,
		clock:  clock,
		window: window,
		state:  session.Idle(),
	}
}

// Begin resets the manager for a fresh session.
func (m *Manager) Begin(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessionID = sessionID
	m.state = session.Idle()
	m.hasRecoverable = false
}

// SetActive records the latest active state captured from the ticking
// controller. Updates against an interrupted or terminal state are
// ignored; the interruption owns the resumption point from then on.
func (m *Manager) SetActive(state session.State) {
	if !state.IsActive() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Kind == session.KindInterrupted || m.terminal() {
		return
	}
	m.state = state
}

// State returns the current session state.
func (m *Manager) State() session.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// HasRecoverableSession reports whether an auto-resumable snapshot was
// written for the current interruption. Surfaced to the UI layer.
func (m *Manager) HasRecoverableSession() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hasRecoverable
}

// Interrupt handles an external cause signal. Against an active state it
// transitions to interrupted, wrapping the active state as the
// resumption point. Against an already-interrupted state the cause with
// the lower priority rank wins and replaces the stored cause; the
// wrapped state is untouched and the snapshot is rewritten under the new
// policy. Against any other state the signal is ignored.
func (m *Manager) Interrupt(ctx context.Context, cause session.Cause) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state.Kind {
	case session.KindBreathing, session.KindHolding:
		saved := m.state
		m.state = session.Interrupted(cause, saved)
		m.applyPolicy(ctx, cause)
		m.emitInterruption(cause)
		log.Info(log.CatRecovery, "session interrupted",
			"session", m.sessionID, "cause", cause, "resumable", cause.AutoResumable())

	case session.KindInterrupted:
		current := m.state.Interrupted.Cause
		if cause.Priority() >= current.Priority() {
			return
		}
		m.state.Interrupted.Cause = cause
		m.applyPolicy(ctx, cause)
		m.emitInterruption(cause)
		log.Info(log.CatRecovery, "interruption cause replaced",
			"session", m.sessionID, "old", current, "new", cause)

	default:
		// Nothing active to suspend.
	}
}

// applyPolicy persists or clears the snapshot per the cause policy.
// Storage failures are non-fatal: the state transition already happened
// and the failure is only logged. Callers hold m.mu.
func (m *Manager) applyPolicy(ctx context.Context, cause session.Cause) {
	if cause.AutoResumable() {
		snap := &session.RecoverySnapshot{
			SessionID:     m.sessionID,
			SavedAt:       m.clock.Now(),
			InterruptedAt: m.clock.Now(),
			Cause:         cause,
			State:         *m.state.Interrupted.Saved,
		}
		if err := m.store.SaveSnapshot(ctx, snap); err != nil {
			log.ErrorErr(log.CatRecovery, "snapshot write failed", err, "session", m.sessionID)
		}
		m.hasRecoverable = true
		return
	}
	m.hasRecoverable = false
	if err := m.store.ClearSnapshot(ctx, m.sessionID); err != nil {
		log.ErrorErr(log.CatRecovery, "snapshot clear failed", err, "session", m.sessionID)
	}
}

// emitInterruption publishes the interruption event. Callers hold m.mu.
func (m *Manager) emitInterruption(cause session.Cause) {
	m.broker.Publish(pubsub.UpdatedEvent, events.SessionEvent{
		Type:         events.InterruptionOccurred,
		SessionID:    m.sessionID,
		Cause:        cause,
		Resumable:    cause.AutoResumable(),
		Haptic:       events.HapticWarning,
		Announcement: "Session interrupted",
	})
}

// Resume restores the wrapped state as the current state. Only permitted
// when interrupted with an auto-resumable cause; otherwise the state is
// left unchanged and a precondition failure is returned. The snapshot is
// cleared on success.
func (m *Manager) Resume(ctx context.Context) (session.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Kind != session.KindInterrupted {
		return session.State{}, &domain.PreconditionError{Op: "recovery.Resume", Reason: "session not interrupted"}
	}
	cause := m.state.Interrupted.Cause
	if !cause.AutoResumable() {
		return session.State{}, &domain.PreconditionError{Op: "recovery.Resume", Reason: "cause " + cause.String() + " requires explicit restart"}
	}

	restored := *m.state.Interrupted.Saved
	m.state = restored
	m.hasRecoverable = false
	if err := m.store.ClearSnapshot(ctx, m.sessionID); err != nil {
		log.ErrorErr(log.CatRecovery, "snapshot clear failed", err, "session", m.sessionID)
	}
	log.Info(log.CatRecovery, "session resumed", "session", m.sessionID, "state", restored.String())
	return restored, nil
}

// Discard abandons the interrupted session: the state returns to idle
// and the snapshot is cleared unconditionally.
func (m *Manager) Discard(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = session.Idle()
	m.hasRecoverable = false
	if m.sessionID != "" {
		if err := m.store.ClearSnapshot(ctx, m.sessionID); err != nil {
			log.ErrorErr(log.CatRecovery, "snapshot clear failed", err, "session", m.sessionID)
		}
	}
}

// Complete marks the session terminal and clears any snapshot.
func (m *Manager) Complete(ctx context.Context, finalDuration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = session.Completed(finalDuration)
	m.hasRecoverable = false
	if err := m.store.ClearSnapshot(ctx, m.sessionID); err != nil {
		log.ErrorErr(log.CatRecovery, "snapshot clear failed", err, "session", m.sessionID)
	}
}

// Fail marks the session errored.
func (m *Manager) Fail(description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = session.Errored(description)
	m.hasRecoverable = false
}

// Recoverable returns the most recent persisted snapshot if one exists
// inside the recovery window. Expiry is evaluated lazily here, at read
// time: an expired snapshot is cleared as a side effect and reported
// absent. A valid snapshot is announced through the broker.
func (m *Manager) Recoverable(ctx context.Context) (*session.RecoverySnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap, err := m.store.LatestSnapshot(ctx)
	if err != nil {
		var notFound *domain.SnapshotNotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}

	if snap.Expired(m.clock.Now(), m.window) {
		log.Info(log.CatRecovery, "snapshot expired",
			"session", snap.SessionID, "age", snap.Age(m.clock.Now()).Round(time.Second))
		if err := m.store.ClearSnapshot(ctx, snap.SessionID); err != nil {
			log.ErrorErr(log.CatRecovery, "snapshot clear failed", err, "session", snap.SessionID)
		}
		return nil, nil
	}

	m.broker.Publish(pubsub.UpdatedEvent, events.SessionEvent{
		Type:         events.RecoveryAvailable,
		SessionID:    snap.SessionID,
		Snapshot:     snap,
		Announcement: "A previous session can be resumed",
	})
	return snap, nil
}

// AdoptSnapshot rebinds the manager to a snapshot loaded across a
// relaunch, placing it in the interrupted state so the normal
// resume-or-discard flow applies.
func (m *Manager) AdoptSnapshot(snap *session.RecoverySnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !snap.State.IsActive() {
		return &domain.PreconditionError{Op: "recovery.AdoptSnapshot", Reason: "snapshot state is not resumable"}
	}
	m.sessionID = snap.SessionID
	m.state = session.Interrupted(snap.Cause, snap.State)
	m.hasRecoverable = snap.Cause.AutoResumable()
	return nil
}

// terminal reports whether the state is completed or errored.
// Callers hold m.mu.
func (m *Manager) terminal() bool {
	return m.state.Kind == session.KindCompleted || m.state.Kind == session.KindErrored
}
