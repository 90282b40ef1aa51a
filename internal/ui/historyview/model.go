// Package historyview renders the session history and aggregate stats:
// personal best, streaks, the recent trend, and the full session list.
package historyview

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/sessions/domain"
	"github.com/zjrosen/breathe/internal/stats"
	"github.com/zjrosen/breathe/internal/ui/styles"
)

// visibleRows caps the session list so the view fits a small terminal.
const visibleRows = 10

// trendGlyphs are the spark levels for the trend line, shortest to tallest.
var trendGlyphs = []rune("▁▂▃▄▅▆▇█")

type loadedMsg struct {
	summary *stats.Summary
	records []*domain.Record
	err     error
}

// dbChangedMsg arrives from the database watcher channel.
type dbChangedMsg struct{}

// Model is the Bubble Tea model for the history screen.
type Model struct {
	ctx        context.Context
	records    domain.RecordRepository
	aggregator *stats.Aggregator
	changes    <-chan struct{}

	width  int
	height int
	offset int

	summary *stats.Summary
	list    []*domain.Record
	errText string
}

// New creates the history view. changes may be nil when auto refresh is
// disabled.
func New(ctx context.Context, records domain.RecordRepository, aggregator *stats.Aggregator, changes <-chan struct{}) Model {
	return Model{
		ctx:        ctx,
		records:    records,
		aggregator: aggregator,
		changes:    changes,
	}
}

// Init loads the history and starts waiting for database changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.load(), m.waitForChange())
}

// load fetches the summary and session list off the update loop.
func (m Model) load() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.aggregator.Summary(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		records, err := m.records.List(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{summary: summary, records: records}
	}
}

// waitForChange blocks on the watcher channel and reloads when it fires.
func (m Model) waitForChange() tea.Cmd {
	if m.changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-m.changes; !ok {
			return nil
		}
		return dbChangedMsg{}
	}
}

// Update handles loads, watcher signals, and scrolling.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loadedMsg:
		if msg.err != nil {
			m.errText = msg.err.Error()
			return m, nil
		}
		m.errText = ""
		m.summary = msg.summary
		m.list = msg.records
		m.offset = clampOffset(m.offset, len(m.list))
		return m, nil

	case dbChangedMsg:
		log.Debug(log.CatUI, "history refresh triggered")
		m.aggregator.Invalidate(m.ctx)
		return m, tea.Batch(m.load(), m.waitForChange())

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			m.offset = clampOffset(m.offset-1, len(m.list))
		case "down", "j":
			m.offset = clampOffset(m.offset+1, len(m.list))
		case "g":
			m.offset = 0
		case "G":
			m.offset = clampOffset(len(m.list), len(m.list))
		case "r":
			m.aggregator.Invalidate(m.ctx)
			return m, m.load()
		}
		return m, nil
	}
	return m, nil
}

func clampOffset(offset, total int) int {
	max := total - visibleRows
	if max < 0 {
		max = 0
	}
	if offset > max {
		offset = max
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// View renders the stats block, the trend line, and the session list.
func (m Model) View() string {
	if m.errText != "" {
		return styles.BoxStyle.Render(styles.ErrorStyle.Render("History unavailable: " + m.errText))
	}
	if m.summary == nil {
		return styles.BoxStyle.Render(styles.FooterStyle.Render("Loading history..."))
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("History"))
	b.WriteString("\n\n")
	b.WriteString(m.statsView())

	if len(m.summary.Trend) > 1 {
		b.WriteString("\n")
		b.WriteString(styles.StatLabelStyle.Render("Trend"))
		b.WriteString(trendLine(m.summary.Trend))
	}

	b.WriteString("\n\n")
	b.WriteString(m.listView())
	b.WriteString(styles.FooterStyle.Render("\nj/k scroll · r refresh · q back"))
	return styles.BoxStyle.Render(b.String())
}

func (m Model) statsView() string {
	s := m.summary
	rows := []struct {
		label string
		value string
	}{
		{"Sessions", fmt.Sprintf("%d", s.TotalSessions)},
		{"Personal best", formatHold(s.PersonalBest)},
		{"Average hold", formatHold(s.AverageHold)},
		{"Current streak", formatDays(s.CurrentStreakDays)},
		{"Longest streak", formatDays(s.LongestStreakDays)},
	}

	var b strings.Builder
	for _, row := range rows {
		b.WriteString(styles.StatLabelStyle.Render(row.label))
		b.WriteString(styles.StatValueStyle.Render(row.value))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) listView() string {
	if len(m.list) == 0 {
		return styles.FooterStyle.Render("No sessions yet. Start one to build your history.")
	}

	var b strings.Builder
	end := m.offset + visibleRows
	if end > len(m.list) {
		end = len(m.list)
	}
	for _, rec := range m.list[m.offset:end] {
		b.WriteString(recordLine(rec))
		b.WriteString("\n")
	}
	if end < len(m.list) {
		b.WriteString(styles.FooterStyle.Render(fmt.Sprintf("… %d more", len(m.list)-end)))
	}
	return strings.TrimRight(b.String(), "\n")
}

// recordLine formats one session for the list.
func recordLine(rec *domain.Record) string {
	date := rec.StartedAt().Local().Format("Jan 02 15:04")
	if !rec.IsCompleted() {
		return fmt.Sprintf("%s  %s", date, styles.WarningStyle.Render("abandoned"))
	}
	hold := styles.HoldElapsedStyle.Render(formatHold(rec.HoldDurationSeconds()))
	return fmt.Sprintf("%s  %s  %s", date, hold,
		styles.FooterStyle.UnsetMargins().Render(fmt.Sprintf("%d rounds", rec.PreparationRounds())))
}

// trendLine renders hold durations as a sparkline, oldest first.
func trendLine(trend []float64) string {
	max := 0.0
	for _, v := range trend {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return ""
	}

	var b strings.Builder
	for _, v := range trend {
		idx := int(v / max * float64(len(trendGlyphs)-1))
		b.WriteRune(trendGlyphs[idx])
	}
	return lipgloss.NewStyle().Foreground(styles.HoldTimerColor).Render(b.String())
}

func formatHold(seconds float64) string {
	if seconds <= 0 {
		return "–"
	}
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	d := time.Duration(seconds * float64(time.Second))
	return fmt.Sprintf("%dm %02ds", int(d.Minutes()), int(d.Seconds())%60)
}

func formatDays(days int) string {
	switch days {
	case 0:
		return "–"
	case 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
