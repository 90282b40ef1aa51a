// Package trainer wires the breathing phase machine, the hold
// controller, and the recovery manager into one session runner. The
// runner owns the single active timer: the two state machines are
// mutually exclusive in time, each driven through the runner's tick.
package trainer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zjrosen/breathe/internal/breathing"
	"github.com/zjrosen/breathe/internal/events"
	"github.com/zjrosen/breathe/internal/hold"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/pubsub"
	"github.com/zjrosen/breathe/internal/recovery"
	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/sessions/domain"
	"github.com/zjrosen/breathe/internal/timer"
)

// tickSeconds is the fixed delta applied per timer tick.
const tickSeconds = 0.1

type mode int

const (
	modeIdle mode = iota
	modeBreathing
	modeHolding
	modeDone
)

// Config assembles the runner's collaborators.
type Config struct {
	// Protocol is the preparation protocol to run.
	Protocol breathing.Protocol

	// Milestones are the hold thresholds in seconds; nil uses defaults.
	Milestones []float64

	// PersonalBestTarget is the longest prior hold, 0 if none.
	PersonalBestTarget float64

	// Records receives the frozen record on completion.
	Records domain.RecordRepository

	// Snapshots backs the recovery manager.
	Snapshots domain.SnapshotRepository

	// Broker receives all session events.
	Broker *pubsub.Broker[events.SessionEvent]

	// Clock supplies time; nil uses the system clock.
	Clock timer.Clock

	// RecoveryWindow bounds snapshot age; zero uses the default 300s.
	RecoveryWindow time.Duration

	// Headless disables the internal timer; the driver feeds ticks
	// through Tick instead. Used by tests and scripted replays.
	Headless bool
}

// Runner executes one training session end to end.
type Runner struct {
	mu sync.Mutex

	cfg     Config
	clock   timer.Clock
	manager *recovery.Manager
	tick    *timer.Timer

	id      string
	mode    mode
	record  *domain.Record
	machine *breathing.Machine
	holdC   *hold.Controller
}

// NewRunner creates a runner. The recovery manager is constructed here
// so the caller holds a single handle for the whole session lifecycle.
func NewRunner(cfg Config) *Runner {
	clock := cfg.Clock
	if clock == nil {
		clock = timer.SystemClock{}
	}
	return &Runner{
		cfg:     cfg,
		clock:   clock,
		manager: recovery.NewManager(cfg.Snapshots, cfg.Broker, clock, cfg.RecoveryWindow),
		tick:    timer.New(),
	}
}

// Start begins a fresh session: a new record is created, the machine
// enters the ready phase, and the timer starts ticking.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != modeIdle {
		return &domain.PreconditionError{Op: "trainer.Start", Reason: "session already running"}
	}

	id := uuid.NewString()
	machine, err := breathing.NewMachine(id, r.cfg.Protocol, r.cfg.Broker)
	if err != nil {
		return fmt.Errorf("creating breathing machine: %w", err)
	}

	r.id = id
	r.record = domain.NewRecord(id, r.clock.Now(), r.cfg.Protocol.Name, r.clock.Now())
	r.machine = machine
	r.holdC = hold.NewController(id, r.cfg.Milestones, r.cfg.Broker)
	r.manager.Begin(id)

	if err := r.machine.Start(); err != nil {
		return err
	}
	r.mode = modeBreathing
	r.manager.SetActive(r.machine.Snapshot())

	if err := r.startTimer(ctx); err != nil {
		return err
	}
	log.Info(log.CatSession, "session started", "session", id, "protocol", r.cfg.Protocol.Name)
	return nil
}

// startTimer starts tick delivery, converting a scheduling failure into
// a timerFault interruption so the session is not silently lost.
// Callers hold r.mu.
func (r *Runner) startTimer(ctx context.Context) error {
	if r.cfg.Headless {
		return nil
	}
	if err := r.tick.Start(timer.Resolution, func(time.Time) { r.onTick(ctx) }); err != nil {
		r.manager.Interrupt(ctx, session.CauseTimerFault)
		return fmt.Errorf("starting session timer: %w", err)
	}
	return nil
}

// onTick advances whichever state machine is active. A tick arriving
// against an interrupted state is a no-op.
func (r *Runner) onTick(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.manager.State().Kind == session.KindInterrupted {
		return
	}

	switch r.mode {
	case modeBreathing:
		r.machine.Tick(tickSeconds)
		if r.machine.Status() == breathing.StatusTerminated {
			r.enterHold()
			return
		}
		r.manager.SetActive(r.machine.Snapshot())

	case modeHolding:
		r.holdC.Tick(tickSeconds)
		r.manager.SetActive(r.holdC.Snapshot())
	}
}

// enterHold hands off from the preparation sequence to the hold
// controller. Callers hold r.mu.
func (r *Runner) enterHold() {
	if r.mode != modeBreathing {
		return
	}
	r.mode = modeHolding
	if err := r.holdC.Start(r.cfg.PersonalBestTarget); err != nil {
		log.ErrorErr(log.CatSession, "hold start failed", err, "session", r.id)
		return
	}
	r.manager.SetActive(r.holdC.Snapshot())
	log.Info(log.CatSession, "entering hold",
		"session", r.id, "rounds", r.machine.CompletedRounds(), "target", r.cfg.PersonalBestTarget)
}

// SkipToHold forcibly ends the preparation sequence and starts the hold
// immediately, regardless of current phase or round.
func (r *Runner) SkipToHold() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != modeBreathing {
		return
	}
	r.machine.SkipToHold()
	r.enterHold()
}

// Pause suspends the breathing countdown; ticks keep arriving but time
// does not advance. Pausing a hold is not supported by the protocol.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == modeBreathing {
		r.machine.Pause()
	}
}

// Unpause continues a paused breathing countdown.
func (r *Runner) Unpause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.mode == modeBreathing {
		r.machine.Resume()
	}
}

// Release ends the hold normally: the elapsed duration is frozen, the
// record completed and saved, and the session becomes terminal. A
// storage failure is returned to the caller but leaves the completed
// in-memory state intact.
func (r *Runner) Release(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != modeHolding {
		return &domain.PreconditionError{Op: "trainer.Release", Reason: "no hold in progress"}
	}
	elapsed, err := r.holdC.Release()
	if err != nil {
		return err
	}
	return r.finalize(ctx, elapsed)
}

// EmergencyStop forces an immediate release-and-terminate from any
// trigger source, bypassing normal flow. Unlike the interruption path
// it is never resumable: a hold in progress is frozen and recorded, a
// preparation sequence is abandoned.
func (r *Runner) EmergencyStop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.mode {
	case modeHolding:
		elapsed := r.holdC.EmergencyRelease()
		log.Warn(log.CatSession, "emergency stop during hold", "session", r.id, "elapsed", elapsed)
		return r.finalize(ctx, elapsed)
	case modeBreathing:
		log.Warn(log.CatSession, "emergency stop during preparation", "session", r.id)
		r.stopLocked(ctx)
		return nil
	default:
		return nil
	}
}

// finalize freezes the record, persists it, and emits the completion
// event. Callers hold r.mu.
func (r *Runner) finalize(ctx context.Context, elapsed float64) error {
	r.tick.Stop()
	r.mode = modeDone
	rounds := r.cfg.Protocol.TotalRounds
	if r.machine != nil {
		rounds = r.machine.CompletedRounds()
	}
	r.record.Complete(elapsed, rounds, r.clock.Now())
	r.manager.Complete(ctx, elapsed)

	r.cfg.Broker.Publish(pubsub.UpdatedEvent, events.SessionEvent{
		Type:         events.SessionCompleted,
		SessionID:    r.id,
		Elapsed:      elapsed,
		Record:       r.record,
		Haptic:       events.HapticPhaseExit,
		Announcement: fmt.Sprintf("Session complete, you held for %.1f seconds", elapsed),
	})

	if err := r.cfg.Records.Save(ctx, r.record); err != nil {
		log.ErrorErr(log.CatSession, "record save failed", err, "session", r.id)
		return fmt.Errorf("saving session record: %w", err)
	}
	log.Info(log.CatSession, "session completed", "session", r.id, "hold", elapsed)
	return nil
}

// Interrupt delivers an external cause signal. Tick delivery stops while
// interrupted; the recovery manager decides whether the session can be
// silently resumed.
func (r *Runner) Interrupt(ctx context.Context, cause session.Cause) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != modeBreathing && r.mode != modeHolding {
		return
	}
	r.tick.Stop()
	r.manager.Interrupt(ctx, cause)
}

// Resume continues an interrupted session from its saved resumption
// point. The machine or controller is rebuilt from the saved state
// exactly; nothing is re-derived.
func (r *Runner) Resume(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	restored, err := r.manager.Resume(ctx)
	if err != nil {
		return err
	}
	return r.restore(ctx, restored)
}

// restore rebuilds the active state machine from a saved state and
// restarts tick delivery. Callers hold r.mu.
func (r *Runner) restore(ctx context.Context, restored session.State) error {
	switch restored.Kind {
	case session.KindBreathing:
		machine, err := breathing.NewMachine(r.id, r.cfg.Protocol, r.cfg.Broker)
		if err != nil {
			return err
		}
		detail := restored.Breathing
		if err := machine.Restore(detail.Round, detail.Phase, detail.TimeRemaining); err != nil {
			return err
		}
		r.machine = machine
		r.mode = modeBreathing

	case session.KindHolding:
		controller := hold.NewController(r.id, r.cfg.Milestones, r.cfg.Broker)
		detail := restored.Holding
		if err := controller.Restore(detail.Elapsed, detail.Target); err != nil {
			return err
		}
		r.holdC = controller
		r.mode = modeHolding

	default:
		return &domain.PreconditionError{Op: "trainer.Resume", Reason: "saved state is not resumable"}
	}

	r.manager.SetActive(restored)
	return r.startTimer(ctx)
}

// ResumeFromSnapshot restores a session across a relaunch from a
// persisted snapshot. The original record is rehydrated from storage
// when present so the session keeps its identity.
func (r *Runner) ResumeFromSnapshot(ctx context.Context, snap *session.RecoverySnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mode != modeIdle {
		return &domain.PreconditionError{Op: "trainer.ResumeFromSnapshot", Reason: "session already running"}
	}
	if err := r.manager.AdoptSnapshot(snap); err != nil {
		return err
	}

	r.id = snap.SessionID
	record, err := r.cfg.Records.FindByID(ctx, snap.SessionID)
	if err != nil {
		record = domain.NewRecord(snap.SessionID, snap.InterruptedAt, r.cfg.Protocol.Name, r.clock.Now())
	}
	r.record = record
	r.machine = nil
	r.holdC = hold.NewController(r.id, r.cfg.Milestones, r.cfg.Broker)

	restored, err := r.manager.Resume(ctx)
	if err != nil {
		return err
	}
	return r.restore(ctx, restored)
}

// Discard abandons an interrupted session and returns to idle.
func (r *Runner) Discard(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tick.Stop()
	r.manager.Discard(ctx)
	r.mode = modeIdle
}

// Stop aborts the session at any point and returns to idle. This is the
// only path back to idle from an active session; nothing is recorded.
// Stop is idempotent.
func (r *Runner) Stop(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked(ctx)
}

// stopLocked aborts and releases the timer. Callers hold r.mu.
func (r *Runner) stopLocked(ctx context.Context) {
	r.tick.Stop()
	if r.machine != nil {
		r.machine.Stop()
	}
	r.manager.Discard(ctx)
	r.mode = modeIdle
}

// Recoverable reports a resumable snapshot inside the recovery window,
// clearing expired ones as a side effect.
func (r *Runner) Recoverable(ctx context.Context) (*session.RecoverySnapshot, error) {
	return r.manager.Recoverable(ctx)
}

// HasRecoverableSession reports whether the current interruption wrote
// a snapshot.
func (r *Runner) HasRecoverableSession() bool {
	return r.manager.HasRecoverableSession()
}

// State returns the session state as seen by the recovery manager.
func (r *Runner) State() session.State {
	return r.manager.State()
}

// ID returns the session identifier, empty before Start.
func (r *Runner) ID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.id
}

// Record returns the session record, nil before Start.
func (r *Runner) Record() *domain.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.record
}

// Tick advances the session by one timer resolution step without the
// real timer, for deterministic tests and headless drivers.
func (r *Runner) Tick(ctx context.Context) {
	r.onTick(ctx)
}
