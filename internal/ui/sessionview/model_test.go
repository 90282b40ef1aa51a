package sessionview

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/breathe/internal/breathing"
	"github.com/zjrosen/breathe/internal/events"
	"github.com/zjrosen/breathe/internal/pubsub"
	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/testutil"
	"github.com/zjrosen/breathe/internal/timer"
	"github.com/zjrosen/breathe/internal/trainer"
)

func newTestModel(t *testing.T) (Model, *trainer.Runner) {
	t.Helper()
	broker := pubsub.NewBrokerWithBuffer[events.SessionEvent](1024)
	t.Cleanup(broker.Close)

	runner := trainer.NewRunner(trainer.Config{
		Protocol:  breathing.DefaultProtocol(),
		Records:   testutil.NewMemoryRecordStore(),
		Snapshots: testutil.NewMemorySnapshotStore(),
		Broker:    broker,
		Clock:     timer.NewManualClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)),
		Headless:  true,
	})
	m := New(t.Context(), runner, broker, breathing.DefaultProtocol().TotalRounds, true, nil)
	m.width = 80
	return m, runner
}

func press(m Model, key string) Model {
	var msg tea.KeyMsg
	switch key {
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func apply(m Model, e events.SessionEvent) Model {
	updated, _ := m.Update(pubsub.Event[events.SessionEvent]{Type: pubsub.UpdatedEvent, Payload: e})
	return updated.(Model)
}

func TestModel_IdleView(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	require.Contains(t, view, "breathe", "idle view should show the app title")
	require.Contains(t, view, "s start", "idle view should show the start hint")
}

func TestModel_StartBeginsBreathing(t *testing.T) {
	m, runner := newTestModel(t)
	m = press(m, "s")

	require.Equal(t, session.KindBreathing, runner.State().Kind, "s should start the session")
	require.Contains(t, m.View(), "Get ready", "ready phase should render its label")
}

func TestModel_PhaseChangeUpdatesView(t *testing.T) {
	m, runner := newTestModel(t)
	m = press(m, "s")
	for i := 0; i < 30; i++ { // through the 3s ready countdown
		runner.Tick(t.Context())
	}
	m = apply(m, events.SessionEvent{
		Type:         events.PhaseChanged,
		Phase:        session.PhaseInhale,
		Round:        1,
		Remaining:    4.0,
		Announcement: "Breathe in through your nose",
	})

	view := m.View()
	require.Contains(t, view, "Breathe in", "inhale phase should render its label")
	require.Contains(t, view, "round 1 of 4", "round counter should come from the live state")
	require.Contains(t, view, "Breathe in through your nose", "announcement should render when enabled")
}

func TestModel_SpaceSkipsToHold(t *testing.T) {
	m, runner := newTestModel(t)
	m = press(m, "s")
	m = press(m, " ")

	require.Equal(t, session.KindHolding, runner.State().Kind, "space during breathing should skip to hold")
	require.Contains(t, m.View(), "Hold", "hold view should render")
}

func TestModel_SpaceReleasesHold(t *testing.T) {
	m, runner := newTestModel(t)
	m = press(m, "s")
	m = press(m, " ")
	for i := 0; i < 50; i++ {
		runner.Tick(t.Context())
	}
	m = press(m, " ")

	require.Equal(t, session.KindCompleted, runner.State().Kind, "space during hold should release and complete")
	m = apply(m, events.SessionEvent{Type: events.SessionCompleted, Elapsed: 5.0})
	view := m.View()
	require.Contains(t, view, "Session complete", "completed view should render")
	require.Contains(t, view, "5.0s", "final hold duration should render")
}

func TestModel_MilestoneAndRecordRender(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(m, "s")
	m = press(m, " ")

	m = apply(m, events.SessionEvent{Type: events.MilestoneCrossed, Announcement: "30 seconds"})
	require.Contains(t, m.View(), "30 seconds", "milestone announcement should render")

	m = apply(m, events.SessionEvent{Type: events.NewRecord})
	require.Contains(t, m.View(), "New personal record", "record banner should replace the milestone")
}

func TestModel_QuitWhileActiveWritesSnapshot(t *testing.T) {
	m, runner := newTestModel(t)
	m = press(m, "s")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd, "q should produce a quit command")
	_ = updated

	require.Equal(t, session.KindInterrupted, runner.State().Kind, "quitting mid-session should interrupt")
	require.True(t, runner.HasRecoverableSession(), "backgrounding should leave a snapshot behind")
}

func TestModel_InterruptedViewOffersResume(t *testing.T) {
	m, runner := newTestModel(t)
	m = press(m, "s")
	runner.Interrupt(t.Context(), session.CauseBackgrounded)

	view := m.View()
	require.Contains(t, view, "Session interrupted", "interrupted view should render")
	require.Contains(t, view, "app went to background", "cause should be spelled out")
	require.Contains(t, view, "r resume", "resumable causes should offer resume")

	m = press(m, "r")
	require.Equal(t, session.KindBreathing, runner.State().Kind, "r should resume the session")
}

func TestModel_NonResumableCauseHidesResume(t *testing.T) {
	m, runner := newTestModel(t)
	m = press(m, "s")
	runner.Interrupt(t.Context(), session.CauseExternalAudio)

	view := m.View()
	require.NotContains(t, view, "r resume", "non-resumable causes should not offer resume")
	require.Contains(t, view, "fresh start", "non-resumable causes should explain the restart")

	m = press(m, "d")
	require.Equal(t, session.KindIdle, runner.State().Kind, "d should discard the interrupted session")
}

// relaunch simulates the next app launch: a fresh runner over the same
// stores, with the stored snapshot offered to the view.
func relaunch(t *testing.T) (Model, *trainer.Runner) {
	t.Helper()
	broker := pubsub.NewBrokerWithBuffer[events.SessionEvent](1024)
	t.Cleanup(broker.Close)

	records := testutil.NewMemoryRecordStore()
	snapshots := testutil.NewMemorySnapshotStore()
	clock := timer.NewManualClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	cfg := trainer.Config{
		Protocol:  breathing.DefaultProtocol(),
		Records:   records,
		Snapshots: snapshots,
		Broker:    broker,
		Clock:     clock,
		Headless:  true,
	}

	first := trainer.NewRunner(cfg)
	require.NoError(t, first.Start(t.Context()), "session should start")
	first.Interrupt(t.Context(), session.CauseBackgrounded)

	second := trainer.NewRunner(cfg)
	snap, err := second.Recoverable(t.Context())
	require.NoError(t, err, "snapshot should be readable after relaunch")
	require.NotNil(t, snap, "an interrupted session should leave a snapshot")

	m := New(t.Context(), second, broker, cfg.Protocol.TotalRounds, true, snap)
	m.width = 80
	return m, second
}

func TestModel_RecoveryPromptResume(t *testing.T) {
	m, runner := relaunch(t)

	view := m.View()
	require.Contains(t, view, "Resume previous session", "prompt should render")
	require.Contains(t, view, "y resume", "prompt should show its keys")

	m = press(m, "y")
	require.Nil(t, m.pendingSnapshot, "answering should dismiss the prompt")
	require.Equal(t, session.KindBreathing, runner.State().Kind, "y should resume from the snapshot")
}

func TestModel_RecoveryPromptDiscard(t *testing.T) {
	m, runner := relaunch(t)

	m = press(m, "n")
	require.Nil(t, m.pendingSnapshot, "answering should dismiss the prompt")
	require.Equal(t, session.KindIdle, runner.State().Kind, "n should discard the session")

	recovered, err := runner.Recoverable(t.Context())
	require.NoError(t, err, "recoverable read should not fail")
	require.Nil(t, recovered, "discard should consume the snapshot")
}

func TestModel_RestartAfterCompletion(t *testing.T) {
	m, runner := newTestModel(t)
	m = press(m, "s")
	m = press(m, " ")
	m = press(m, " ")
	require.Equal(t, session.KindCompleted, runner.State().Kind, "release should complete the session")

	m = press(m, "s")
	require.Equal(t, session.KindBreathing, runner.State().Kind, "s after completion should start fresh")
	require.False(t, m.completed, "display state should reset on restart")
}

func TestModel_AnnouncementsCanBeDisabled(t *testing.T) {
	m, _ := newTestModel(t)
	m.announcements = false
	m = press(m, "s")
	m = apply(m, events.SessionEvent{
		Type:         events.PhaseChanged,
		Phase:        session.PhaseExhale,
		Round:        1,
		Remaining:    4.0,
		Announcement: "Breathe out slowly",
	})

	require.NotContains(t, m.View(), "Breathe out slowly", "announcements off should suppress the text")
}
