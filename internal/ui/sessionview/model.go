// Package sessionview renders the live training session: the guided
// preparation countdown, the breath-hold timer, interruption handling,
// and the resume-or-discard prompt after a relaunch.
package sessionview

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/breathe/internal/events"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/pubsub"
	"github.com/zjrosen/breathe/internal/session"
	"github.com/zjrosen/breathe/internal/trainer"
	"github.com/zjrosen/breathe/internal/ui/styles"
)

// refreshInterval drives the display refresh; the session core ticks on
// its own timer regardless.
const refreshInterval = 100 * time.Millisecond

type refreshMsg time.Time

// Model is the Bubble Tea model for a training session.
type Model struct {
	ctx      context.Context
	runner   *trainer.Runner
	listener *pubsub.ContinuousListener[events.SessionEvent]
	progress progress.Model

	width  int
	height int

	// announcements mirrors the ui.announcements config flag.
	announcements bool

	// phase display state, updated from events
	totalRounds   int
	phaseDuration float64
	announcement  string

	// hold display state
	lastMilestone string
	record        bool

	// terminal display state
	completed     bool
	finalDuration float64

	// pendingSnapshot drives the resume-or-discard prompt on launch.
	pendingSnapshot *session.RecoverySnapshot

	errText string
}

// New creates the session view. A non-nil snapshot opens the view on the
// resume-or-discard prompt.
func New(ctx context.Context, runner *trainer.Runner, broker *pubsub.Broker[events.SessionEvent], totalRounds int, announcements bool, snapshot *session.RecoverySnapshot) Model {
	return Model{
		ctx:             ctx,
		runner:          runner,
		listener:        pubsub.NewContinuousListener(ctx, broker),
		progress:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		totalRounds:     totalRounds,
		announcements:   announcements,
		pendingSnapshot: snapshot,
	}
}

// Init starts event listening and the display refresh loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listener.Listen(), m.refresh())
}

func (m Model) refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// Update handles key presses, session events, and display refreshes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(msg.Width-8, 60)
		return m, nil

	case refreshMsg:
		return m, m.refresh()

	case pubsub.Event[events.SessionEvent]:
		m = m.applyEvent(msg.Payload)
		return m, m.listener.Listen()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The recovery prompt swallows everything except its own keys.
	if m.pendingSnapshot != nil {
		switch msg.String() {
		case "y", "enter":
			snap := m.pendingSnapshot
			m.pendingSnapshot = nil
			if err := m.runner.ResumeFromSnapshot(m.ctx, snap); err != nil {
				m.errText = err.Error()
			}
		case "n", "d":
			m.pendingSnapshot = nil
			m.runner.Discard(m.ctx)
		case "q", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	state := m.runner.State()

	switch msg.String() {
	case "q", "ctrl+c":
		// Leaving mid-session is a backgrounding: snapshot and go.
		if state.IsActive() {
			m.runner.Interrupt(m.ctx, session.CauseBackgrounded)
		}
		return m, tea.Quit

	case "s":
		if state.Kind == session.KindIdle || state.Kind == session.KindCompleted || state.Kind == session.KindErrored {
			m.runner.Stop(m.ctx)
			m = m.reset()
			if err := m.runner.Start(m.ctx); err != nil {
				m.errText = err.Error()
			}
		}

	case " ":
		switch state.Kind {
		case session.KindBreathing:
			m.runner.SkipToHold()
		case session.KindHolding:
			if err := m.runner.Release(m.ctx); err != nil {
				m.errText = err.Error()
			}
		}

	case "p":
		if state.Kind == session.KindBreathing {
			m.runner.Pause()
		}
	case "o":
		if state.Kind == session.KindBreathing {
			m.runner.Unpause()
		}

	case "e":
		if state.IsActive() {
			if err := m.runner.EmergencyStop(m.ctx); err != nil {
				m.errText = err.Error()
			}
		}

	case "r":
		if state.Kind == session.KindInterrupted {
			if err := m.runner.Resume(m.ctx); err != nil {
				m.errText = err.Error()
			}
		}

	case "d":
		if state.Kind == session.KindInterrupted {
			m.runner.Discard(m.ctx)
			m = m.reset()
		}
	}
	return m, nil
}

// reset clears per-session display state before a fresh start.
func (m Model) reset() Model {
	m.completed = false
	m.finalDuration = 0
	m.record = false
	m.lastMilestone = ""
	m.announcement = ""
	m.errText = ""
	return m
}

// applyEvent folds a session event into display state.
func (m Model) applyEvent(e events.SessionEvent) Model {
	switch e.Type {
	case events.PhaseChanged:
		m.phaseDuration = e.Remaining
		if m.announcements {
			m.announcement = e.Announcement
		}

	case events.BreathingFinished:
		if m.announcements {
			m.announcement = e.Announcement
		}

	case events.MilestoneCrossed:
		m.lastMilestone = e.Announcement

	case events.NewRecord:
		m.record = true

	case events.SessionCompleted:
		m.completed = true
		m.finalDuration = e.Elapsed

	case events.InterruptionOccurred:
		log.Debug(log.CatUI, "interruption shown", "cause", e.Cause)

	case events.RecoveryAvailable:
		m.pendingSnapshot = e.Snapshot
	}
	return m
}

// View renders the session.
func (m Model) View() string {
	var body string
	switch {
	case m.pendingSnapshot != nil:
		body = m.recoveryPromptView()
	case m.completed:
		body = m.completedView()
	default:
		body = m.stateView(m.runner.State())
	}

	if m.errText != "" {
		body += "\n" + styles.ErrorStyle.Render(m.errText)
	}
	return styles.BoxStyle.Render(body)
}

func (m Model) stateView(state session.State) string {
	switch state.Kind {
	case session.KindBreathing:
		return m.breathingView(state.Breathing)
	case session.KindHolding:
		return m.holdingView(state.Holding)
	case session.KindInterrupted:
		return m.interruptedView(state.Interrupted)
	case session.KindErrored:
		return styles.ErrorStyle.Render("Session failed: "+state.Errored.Description) +
			m.footer("s start again", "q quit")
	default:
		return m.idleView()
	}
}

func (m Model) idleView() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("breathe"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%d rounds of box breathing, then hold.\n", m.totalRounds))
	b.WriteString(m.footer("s start", "q quit"))
	return b.String()
}

func (m Model) breathingView(d *session.BreathingDetail) string {
	var b strings.Builder

	phaseStyle := styles.PhaseStyle.Foreground(styles.PhaseColor(string(d.Phase)))
	b.WriteString(phaseStyle.Render(phaseLabel(d.Phase)))
	if d.Round > 0 && !d.Phase.IsFinal() {
		b.WriteString(styles.FooterStyle.Render(fmt.Sprintf("  round %d of %d", d.Round, m.totalRounds)))
	}
	b.WriteString("\n\n")

	percent := 0.0
	if m.phaseDuration > 0 {
		percent = 1 - d.TimeRemaining/m.phaseDuration
	}
	b.WriteString(m.progress.ViewAs(percent))
	b.WriteString(fmt.Sprintf("\n%.1fs", d.TimeRemaining))

	if m.announcement != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.AnnouncementStyle.Render(m.announcement))
	}
	b.WriteString(m.footer("space skip to hold", "p pause", "o resume", "e stop", "q quit"))
	return b.String()
}

func (m Model) holdingView(d *session.HoldingDetail) string {
	var b strings.Builder
	b.WriteString(styles.PhaseStyle.Foreground(styles.HoldTimerColor).Render("Hold"))
	b.WriteString("\n\n")
	b.WriteString(styles.HoldElapsedStyle.Render(formatElapsed(d.Elapsed)))
	if d.Target > 0 {
		b.WriteString(styles.FooterStyle.Render(fmt.Sprintf("  best %s", formatElapsed(d.Target))))
	}
	if m.record {
		b.WriteString("\n\n")
		b.WriteString(styles.RecordStyle.Render("★ New personal record"))
	} else if m.lastMilestone != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.MilestoneStyle.Render(m.lastMilestone))
	}
	b.WriteString(m.footer("space release", "e emergency stop", "q quit"))
	return b.String()
}

func (m Model) interruptedView(d *session.InterruptedDetail) string {
	var b strings.Builder
	b.WriteString(styles.WarningStyle.Render("Session interrupted"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Cause: %s\n", causeLabel(d.Cause)))
	if d.Cause.AutoResumable() {
		b.WriteString(m.footer("r resume", "d discard", "q quit"))
	} else {
		b.WriteString("This interruption needs a fresh start.\n")
		b.WriteString(m.footer("d discard", "q quit"))
	}
	return b.String()
}

func (m Model) completedView() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Session complete"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("You held for %s", styles.HoldElapsedStyle.Render(formatElapsed(m.finalDuration))))
	if m.record {
		b.WriteString("\n")
		b.WriteString(styles.RecordStyle.Render("★ New personal record"))
	}
	b.WriteString("\n")
	b.WriteString(m.footer("s go again", "q quit"))
	return b.String()
}

func (m Model) recoveryPromptView() string {
	snap := m.pendingSnapshot
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Resume previous session?"))
	b.WriteString("\n\n")
	switch snap.State.Kind {
	case session.KindHolding:
		b.WriteString(fmt.Sprintf("You were %s into a breath hold.\n", formatElapsed(snap.State.Holding.Elapsed)))
	case session.KindBreathing:
		b.WriteString(fmt.Sprintf("You were in round %d of the preparation.\n", snap.State.Breathing.Round))
	}
	b.WriteString(fmt.Sprintf("Interrupted %s ago (%s).\n", snap.Age(time.Now()).Round(time.Second), causeLabel(snap.Cause)))
	b.WriteString(m.footer("y resume", "n discard", "q quit"))
	return b.String()
}

func (m Model) footer(hints ...string) string {
	return styles.FooterStyle.Render("\n" + strings.Join(hints, " · "))
}

// phaseLabel maps a phase to its display name.
func phaseLabel(p session.Phase) string {
	switch p {
	case session.PhaseReady:
		return "Get ready"
	case session.PhaseInhale:
		return "Breathe in"
	case session.PhaseHoldFull:
		return "Hold"
	case session.PhaseExhale:
		return "Breathe out"
	case session.PhaseHoldEmpty:
		return "Stay empty"
	case session.PhaseFinalInhale:
		return "Deep breath in"
	case session.PhaseFinalExhale:
		return "Let go"
	default:
		return string(p)
	}
}

// causeLabel maps an interruption cause to its display name.
func causeLabel(c session.Cause) string {
	switch c {
	case session.CauseBackgrounded:
		return "app went to background"
	case session.CauseExternalAudio:
		return "audio interruption"
	case session.CauseSystemAlert:
		return "system alert"
	case session.CauseLowBattery:
		return "low battery"
	case session.CauseUserInitiated:
		return "paused by you"
	case session.CauseEmergencyStop:
		return "emergency stop"
	case session.CauseTimerFault:
		return "timer fault"
	default:
		return string(c)
	}
}

func formatElapsed(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	total := int(seconds)
	return fmt.Sprintf("%dm %02d.%ds", total/60, total%60, int(seconds*10)%10)
}
