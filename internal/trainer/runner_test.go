package trainer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/breathe/internal/breathing"
	"github.com/zjrosen/breathe/internal/events"
	"github.com/zjrosen/breathe/internal/pubsub"
	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/testutil"
	"github.com/zjrosen/breathe/internal/timer"
)

type harness struct {
	runner    *Runner
	records   *testutil.MemoryRecordStore
	snapshots *testutil.MemorySnapshotStore
	clock     *timer.ManualClock
	ch        <-chan pubsub.Event[events.SessionEvent]
}

func newHarness(t *testing.T, target float64) *harness {
	t.Helper()
	broker := pubsub.NewBrokerWithBuffer[events.SessionEvent](1024)
	t.Cleanup(broker.Close)

	records := testutil.NewMemoryRecordStore()
	snapshots := testutil.NewMemorySnapshotStore()
	clock := timer.NewManualClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	runner := NewRunner(Config{
		Protocol:           breathing.DefaultProtocol(),
		PersonalBestTarget: target,
		Records:            records,
		Snapshots:          snapshots,
		Broker:             broker,
		Clock:              clock,
		Headless:           true,
	})
	return &harness{
		runner:    runner,
		records:   records,
		snapshots: snapshots,
		clock:     clock,
		ch:        broker.Subscribe(t.Context()),
	}
}

func (h *harness) drain() []events.SessionEvent {
	var out []events.SessionEvent
	for {
		select {
		case e := <-h.ch:
			out = append(out, e.Payload)
		default:
			return out
		}
	}
}

// tickFor advances the session by the given number of seconds.
func (h *harness) tickFor(t *testing.T, seconds float64) {
	t.Helper()
	for i := 0; i < int(seconds*10); i++ {
		h.runner.Tick(t.Context())
	}
}

// defaultProtocolSeconds is the full preparation duration of the shipped
// protocol: 3s ready + 4 rounds of 16s + 4s final inhale + 2s final exhale.
const defaultProtocolSeconds = 73

func TestRunner_FullSessionFlow(t *testing.T) {
	h := newHarness(t, 45)
	require.NoError(t, h.runner.Start(t.Context()))
	require.NotEmpty(t, h.runner.ID())

	// Drive the whole preparation sequence; the runner hands off to the
	// hold automatically on the terminating tick.
	h.tickFor(t, defaultProtocolSeconds)
	require.Equal(t, session.KindHolding, h.runner.State().Kind)

	// Hold for 10s, then release.
	h.tickFor(t, 10)
	require.NoError(t, h.runner.Release(t.Context()))

	state := h.runner.State()
	require.Equal(t, session.KindCompleted, state.Kind)
	require.InDelta(t, 10.0, state.Completed.FinalDuration, 1e-6)

	// The record is frozen and persisted.
	record := h.runner.Record()
	require.True(t, record.IsCompleted())
	require.InDelta(t, 10.0, record.HoldDurationSeconds(), 1e-6)
	require.Equal(t, 4, record.PreparationRounds())
	require.Equal(t, "box-4-4-4-4", record.ProtocolType())

	saved, err := h.records.FindByID(t.Context(), record.ID())
	require.NoError(t, err)
	require.Equal(t, record, saved)

	// The event stream saw every phase once, the handoff, and completion.
	var phases, finished, completed int
	for _, e := range h.drain() {
		switch e.Type {
		case events.PhaseChanged:
			phases++
		case events.BreathingFinished:
			finished++
		case events.SessionCompleted:
			completed++
			require.NotNil(t, e.Record)
		}
	}
	require.Equal(t, 19, phases, "ready + 16 round phases + 2 final phases")
	require.Equal(t, 1, finished)
	require.Equal(t, 1, completed)
}

func TestRunner_StartTwice(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))
	require.Error(t, h.runner.Start(t.Context()))
}

func TestRunner_ReleaseWithoutHold(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))
	require.Error(t, h.runner.Release(t.Context()), "release during preparation must be rejected")
}

func TestRunner_SkipToHold(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))

	h.tickFor(t, 5) // partway into round 1
	h.runner.SkipToHold()

	require.Equal(t, session.KindHolding, h.runner.State().Kind)

	h.tickFor(t, 3)
	require.NoError(t, h.runner.Release(t.Context()))
	require.InDelta(t, 3.0, h.runner.Record().HoldDurationSeconds(), 1e-6)
}

func TestRunner_PauseDuringBreathing(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))

	h.tickFor(t, 1)
	h.runner.Pause()
	before := h.runner.State()

	h.tickFor(t, 30)
	require.Equal(t, before, h.runner.State(), "paused ticks must not advance the countdown")

	h.runner.Unpause()
	h.tickFor(t, 2)
	require.Equal(t, session.PhaseInhale, h.runner.State().Breathing.Phase)
}

func TestRunner_InterruptDuringHoldAndResume(t *testing.T) {
	h := newHarness(t, 45)
	require.NoError(t, h.runner.Start(t.Context()))
	h.runner.SkipToHold()
	h.tickFor(t, 12.5)

	h.runner.Interrupt(t.Context(), session.CauseBackgrounded)

	interrupted := h.runner.State()
	require.Equal(t, session.KindInterrupted, interrupted.Kind)
	require.True(t, h.runner.HasRecoverableSession())
	savedElapsed := interrupted.Interrupted.Saved.Holding.Elapsed

	// Ticks while interrupted are no-ops.
	h.tickFor(t, 5)
	require.Equal(t, interrupted, h.runner.State())

	require.NoError(t, h.runner.Resume(t.Context()))
	state := h.runner.State()
	require.Equal(t, session.KindHolding, state.Kind)
	require.Equal(t, savedElapsed, state.Holding.Elapsed, "hold continues from the saved elapsed, losing nothing")

	h.tickFor(t, 1)
	require.NoError(t, h.runner.Release(t.Context()))
	require.InDelta(t, savedElapsed+1, h.runner.Record().HoldDurationSeconds(), 1e-6)
}

func TestRunner_InterruptDuringBreathingAndResume(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))
	h.tickFor(t, 8) // round 1, into the hold-full phase

	h.runner.Interrupt(t.Context(), session.CauseSystemAlert)
	saved := *h.runner.State().Interrupted.Saved

	require.NoError(t, h.runner.Resume(t.Context()))
	require.Equal(t, saved, h.runner.State(), "breathing resumes at the exact phase, round, and remaining time")

	// The rebuilt machine still finishes the sequence.
	h.tickFor(t, defaultProtocolSeconds)
	require.Equal(t, session.KindHolding, h.runner.State().Kind)
}

func TestRunner_NonResumableInterruptRequiresDiscard(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))
	h.runner.SkipToHold()
	h.tickFor(t, 5)

	h.runner.Interrupt(t.Context(), session.CauseUserInitiated)

	require.Error(t, h.runner.Resume(t.Context()))
	require.False(t, h.runner.HasRecoverableSession())
	require.Zero(t, h.snapshots.Count())

	h.runner.Discard(t.Context())
	require.Equal(t, session.KindIdle, h.runner.State().Kind)
}

func TestRunner_EmergencyStopDuringHold(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))
	h.runner.SkipToHold()
	h.tickFor(t, 7)

	require.NoError(t, h.runner.EmergencyStop(t.Context()))

	// The hold is frozen and recorded; the session is terminal.
	require.Equal(t, session.KindCompleted, h.runner.State().Kind)
	require.InDelta(t, 7.0, h.runner.Record().HoldDurationSeconds(), 1e-6)

	_, err := h.records.FindByID(t.Context(), h.runner.ID())
	require.NoError(t, err, "an emergency-stopped hold still persists its record")
}

func TestRunner_EmergencyStopDuringBreathing(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))
	h.tickFor(t, 5)

	require.NoError(t, h.runner.EmergencyStop(t.Context()))

	// Abandoning the preparation records nothing.
	require.Equal(t, session.KindIdle, h.runner.State().Kind)
	records, err := h.records.List(t.Context())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestRunner_ResumeFromSnapshotAcrossRelaunch(t *testing.T) {
	h := newHarness(t, 45)
	require.NoError(t, h.runner.Start(t.Context()))
	h.runner.SkipToHold()
	h.tickFor(t, 20)
	h.runner.Interrupt(t.Context(), session.CauseBackgrounded)
	originalID := h.runner.ID()

	// Simulate a relaunch: a fresh runner over the same stores.
	relaunched := NewRunner(Config{
		Protocol:           breathing.DefaultProtocol(),
		PersonalBestTarget: 45,
		Records:            h.records,
		Snapshots:          h.snapshots,
		Broker:             pubsub.NewBrokerWithBuffer[events.SessionEvent](256),
		Clock:              h.clock,
		Headless:           true,
	})

	snap, err := relaunched.Recoverable(t.Context())
	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Equal(t, originalID, snap.SessionID)

	require.NoError(t, relaunched.ResumeFromSnapshot(t.Context(), snap))
	require.Equal(t, originalID, relaunched.ID(), "the session keeps its identity across relaunch")

	state := relaunched.State()
	require.Equal(t, session.KindHolding, state.Kind)
	require.InDelta(t, 20.0, state.Holding.Elapsed, 1e-6)
	require.Zero(t, h.snapshots.Count(), "resume consumes the snapshot")

	for i := 0; i < 10; i++ {
		relaunched.Tick(t.Context())
	}
	require.NoError(t, relaunched.Release(t.Context()))
	require.InDelta(t, 21.0, relaunched.Record().HoldDurationSeconds(), 1e-6)
}

func TestRunner_RecoverableExpiredAfterWindow(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))
	h.runner.SkipToHold()
	h.tickFor(t, 5)
	h.runner.Interrupt(t.Context(), session.CauseBackgrounded)
	require.Equal(t, 1, h.snapshots.Count())

	h.clock.Advance(301 * time.Second)

	snap, err := h.runner.Recoverable(t.Context())
	require.NoError(t, err)
	require.Nil(t, snap)
	require.Zero(t, h.snapshots.Count())
}

func TestRunner_StopReturnsToIdle(t *testing.T) {
	h := newHarness(t, 0)
	require.NoError(t, h.runner.Start(t.Context()))
	h.tickFor(t, 10)

	h.runner.Stop(t.Context())
	h.runner.Stop(t.Context()) // idempotent

	require.Equal(t, session.KindIdle, h.runner.State().Kind)
	records, err := h.records.List(t.Context())
	require.NoError(t, err)
	require.Empty(t, records, "an aborted session records nothing")
}

// TestRunner_SQLitePersistence runs a full session against the real
// storage layer and checks the record and snapshot survive a relaunch.
func TestRunner_SQLitePersistence(t *testing.T) {
	db := testutil.NewTestDB(t)
	broker := pubsub.NewBrokerWithBuffer[events.SessionEvent](1024)
	t.Cleanup(broker.Close)
	clock := timer.NewManualClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))

	cfg := Config{
		Protocol:  breathing.DefaultProtocol(),
		Records:   db.Records(),
		Snapshots: db.Snapshots(),
		Broker:    broker,
		Clock:     clock,
		Headless:  true,
	}

	runner := NewRunner(cfg)
	require.NoError(t, runner.Start(t.Context()))
	runner.SkipToHold()
	for i := 0; i < 150; i++ {
		runner.Tick(t.Context())
	}
	runner.Interrupt(t.Context(), session.CauseBackgrounded)

	relaunched := NewRunner(cfg)
	snap, err := relaunched.Recoverable(t.Context())
	require.NoError(t, err, "snapshot should load from sqlite")
	require.NotNil(t, snap, "the interruption should survive the relaunch")
	require.NoError(t, relaunched.ResumeFromSnapshot(t.Context(), snap))
	require.NoError(t, relaunched.Release(t.Context()))

	records, err := db.Records().List(t.Context())
	require.NoError(t, err)
	require.Len(t, records, 1, "the completed session should be stored")
	require.True(t, records[0].IsCompleted(), "the stored record should be frozen")
	require.InDelta(t, 15.0, records[0].HoldDurationSeconds(), 1e-6, "the stored hold should match the ticks delivered")
}
