// Package styles contains Lip Gloss style definitions.
package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Semantic color names - Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#CCCCCC"} // Main/primary text
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BBBBBB"} // Labels, secondary info
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#999999", Dark: "#696969"} // Hints, help text, footers

	// Semantic color names - Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"} // Records, completed sessions
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"} // Interruptions
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"} // Errors, emergency stop

	// Phase colors - one per breathing motion so the session view reads
	// at a glance.
	PhaseInhaleColor = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"} // inhale: blue
	PhaseHoldColor   = lipgloss.AdaptiveColor{Light: "#8839EF", Dark: "#CBA6F7"} // lungs full/empty: mauve
	PhaseExhaleColor = lipgloss.AdaptiveColor{Light: "#179299", Dark: "#94E2D5"} // exhale: teal
	PhaseReadyColor  = lipgloss.AdaptiveColor{Light: "#DF8E1D", Dark: "#F9E2AF"} // countdown: yellow
	HoldTimerColor   = lipgloss.AdaptiveColor{Light: "#FE640B", Dark: "#FAB387"} // breath hold: peach

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#696969"}

	// Shared styles
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)

	PhaseStyle = lipgloss.NewStyle().Bold(true)

	AnnouncementStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Italic(true)

	HoldElapsedStyle = lipgloss.NewStyle().Bold(true).Foreground(HoldTimerColor)

	MilestoneStyle = lipgloss.NewStyle().Foreground(StatusSuccessColor)

	RecordStyle = lipgloss.NewStyle().Bold(true).Foreground(StatusSuccessColor)

	WarningStyle = lipgloss.NewStyle().Bold(true).Foreground(StatusWarningColor)

	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(StatusErrorColor)

	FooterStyle = lipgloss.NewStyle().Foreground(TextMutedColor).MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderDefaultColor).
			Padding(1, 3)

	StatLabelStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Width(16)

	StatValueStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
)

// PhaseColor maps a breathing phase name to its display color.
func PhaseColor(phase string) lipgloss.AdaptiveColor {
	switch phase {
	case "inhale", "final_inhale":
		return PhaseInhaleColor
	case "hold_full", "hold_empty":
		return PhaseHoldColor
	case "exhale", "final_exhale":
		return PhaseExhaleColor
	case "ready":
		return PhaseReadyColor
	default:
		return TextPrimaryColor
	}
}
