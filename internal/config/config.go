// Package config provides configuration types, defaults, and persistence for breathe.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zjrosen/breathe/internal/breathing"
	"github.com/zjrosen/breathe/internal/hold"
	"github.com/zjrosen/breathe/internal/log"
)

// ProtocolConfig defines the breathing protocol used for new sessions.
type ProtocolConfig struct {
	Name               string  `mapstructure:"name"`
	Rounds             int     `mapstructure:"rounds"`
	ReadySeconds       float64 `mapstructure:"ready_seconds"`
	InhaleSeconds      float64 `mapstructure:"inhale_seconds"`
	HoldFullSeconds    float64 `mapstructure:"hold_full_seconds"`
	ExhaleSeconds      float64 `mapstructure:"exhale_seconds"`
	HoldEmptySeconds   float64 `mapstructure:"hold_empty_seconds"`
	FinalInhaleSeconds float64 `mapstructure:"final_inhale_seconds"`
	FinalExhaleSeconds float64 `mapstructure:"final_exhale_seconds"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool   `mapstructure:"show_status_bar"`
	MarkdownStyle string `mapstructure:"markdown_style"` // "dark" (default) or "light"
	Announcements bool   `mapstructure:"announcements"`  // Show spoken-style phase cues in the session view
}

// Config holds all configuration options for breathe.
type Config struct {
	DatabasePath          string         `mapstructure:"database_path"`
	AutoRefresh           bool           `mapstructure:"auto_refresh"`
	Protocol              ProtocolConfig `mapstructure:"protocol"`
	Milestones            []float64      `mapstructure:"milestones"`
	RecoveryWindowSeconds int            `mapstructure:"recovery_window_seconds"`
	UI                    UIConfig       `mapstructure:"ui"`
}

// DefaultDatabasePath returns ~/.breathe/breathe.db, or a relative
// fallback when the home directory cannot be resolved.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "breathe.db"
	}
	return filepath.Join(home, ".breathe", "breathe.db")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	p := breathing.DefaultProtocol()
	return Config{
		DatabasePath: DefaultDatabasePath(),
		AutoRefresh:  true,
		Protocol: ProtocolConfig{
			Name:               p.Name,
			Rounds:             p.TotalRounds,
			ReadySeconds:       p.ReadySeconds,
			InhaleSeconds:      p.InhaleSeconds,
			HoldFullSeconds:    p.HoldFullSeconds,
			ExhaleSeconds:      p.ExhaleSeconds,
			HoldEmptySeconds:   p.HoldEmptySeconds,
			FinalInhaleSeconds: p.FinalInhaleSeconds,
			FinalExhaleSeconds: p.FinalExhaleSeconds,
		},
		Milestones:            hold.DefaultMilestones(),
		RecoveryWindowSeconds: 300,
		UI: UIConfig{
			ShowStatusBar: true,
			MarkdownStyle: "dark",
			Announcements: true,
		},
	}
}

// BreathingProtocol converts the configured protocol into the runtime type.
// Zero-valued fields fall back to the defaults so a partial config section
// still produces a usable protocol.
func (c Config) BreathingProtocol() breathing.Protocol {
	p := breathing.DefaultProtocol()
	if c.Protocol.Name != "" {
		p.Name = c.Protocol.Name
	}
	if c.Protocol.Rounds > 0 {
		p.TotalRounds = c.Protocol.Rounds
	}
	if c.Protocol.ReadySeconds > 0 {
		p.ReadySeconds = c.Protocol.ReadySeconds
	}
	if c.Protocol.InhaleSeconds > 0 {
		p.InhaleSeconds = c.Protocol.InhaleSeconds
	}
	if c.Protocol.HoldFullSeconds > 0 {
		p.HoldFullSeconds = c.Protocol.HoldFullSeconds
	}
	if c.Protocol.ExhaleSeconds > 0 {
		p.ExhaleSeconds = c.Protocol.ExhaleSeconds
	}
	if c.Protocol.HoldEmptySeconds > 0 {
		p.HoldEmptySeconds = c.Protocol.HoldEmptySeconds
	}
	if c.Protocol.FinalInhaleSeconds > 0 {
		p.FinalInhaleSeconds = c.Protocol.FinalInhaleSeconds
	}
	if c.Protocol.FinalExhaleSeconds > 0 {
		p.FinalExhaleSeconds = c.Protocol.FinalExhaleSeconds
	}
	return p
}

// HoldMilestones returns the configured milestone thresholds in ascending
// order, or the built-in defaults when none are configured.
func (c Config) HoldMilestones() []float64 {
	if len(c.Milestones) == 0 {
		return hold.DefaultMilestones()
	}
	out := make([]float64, len(c.Milestones))
	copy(out, c.Milestones)
	sort.Float64s(out)
	return out
}

// RecoveryWindow returns the configured recovery window as a duration.
// Non-positive values fall back to the five minute default.
func (c Config) RecoveryWindow() time.Duration {
	if c.RecoveryWindowSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.RecoveryWindowSeconds) * time.Second
}

// ValidateProtocol checks protocol configuration for errors.
// Returns nil if the section is valid or entirely zero (will use defaults).
func ValidateProtocol(p ProtocolConfig) error {
	if p.Rounds != 0 && (p.Rounds < breathing.MinRounds || p.Rounds > breathing.MaxRounds) {
		return fmt.Errorf("protocol.rounds must be between %d and %d, got %d", breathing.MinRounds, breathing.MaxRounds, p.Rounds)
	}
	durations := map[string]float64{
		"ready_seconds":        p.ReadySeconds,
		"inhale_seconds":       p.InhaleSeconds,
		"hold_full_seconds":    p.HoldFullSeconds,
		"exhale_seconds":       p.ExhaleSeconds,
		"hold_empty_seconds":   p.HoldEmptySeconds,
		"final_inhale_seconds": p.FinalInhaleSeconds,
		"final_exhale_seconds": p.FinalExhaleSeconds,
	}
	for field, v := range durations {
		if v < 0 {
			return fmt.Errorf("protocol.%s must not be negative, got %v", field, v)
		}
	}
	return nil
}

// ValidateMilestones checks milestone configuration for errors.
// Returns nil if milestones are valid or empty (will use defaults).
func ValidateMilestones(milestones []float64) error {
	seen := make(map[float64]bool, len(milestones))
	for i, m := range milestones {
		if m <= 0 {
			return fmt.Errorf("milestone %d: must be positive, got %v", i, m)
		}
		if seen[m] {
			return fmt.Errorf("milestone %d: duplicate value %v", i, m)
		}
		seen[m] = true
	}
	return nil
}

// Validate checks the full configuration for errors.
func Validate(c Config) error {
	if err := ValidateProtocol(c.Protocol); err != nil {
		return err
	}
	if err := ValidateMilestones(c.Milestones); err != nil {
		return err
	}
	if c.RecoveryWindowSeconds < 0 {
		return fmt.Errorf("recovery_window_seconds must not be negative, got %d", c.RecoveryWindowSeconds)
	}
	if c.UI.MarkdownStyle != "" && c.UI.MarkdownStyle != "dark" && c.UI.MarkdownStyle != "light" {
		return fmt.Errorf("ui.markdown_style must be \"dark\" or \"light\", got %q", c.UI.MarkdownStyle)
	}
	return nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Breathe Configuration

# Path to the session database (default: ~/.breathe/breathe.db)
# database_path: /path/to/breathe.db

# Refresh history views when the database changes on disk
auto_refresh: true

# Breathing protocol used for new sessions
protocol:
  name: box-4-4-4-4
  rounds: 4                 # Preparation rounds before the breath hold (1-10)
  ready_seconds: 3          # Countdown before the first inhale
  inhale_seconds: 4
  hold_full_seconds: 4
  exhale_seconds: 4
  hold_empty_seconds: 4
  final_inhale_seconds: 4   # Deep inhale before the hold
  final_exhale_seconds: 2   # Release into the hold

# Breath-hold milestones in seconds (ascending)
milestones: [10, 20, 30, 45, 60, 90, 120, 180]

# How long an interrupted session stays resumable (seconds)
recovery_window_seconds: 300

# UI settings
ui:
  show_status_bar: true   # Show status bar at bottom
  # markdown_style: dark  # Markdown rendering style: "dark" (default) or "light"
  announcements: true     # Show phase cues ("Breathe in", "Hold") in the session view
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
