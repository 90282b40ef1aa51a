package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/breathe/internal/cachemanager"
	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/events"
	"github.com/zjrosen/breathe/internal/infrastructure/sqlite"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/pubsub"
	"github.com/zjrosen/breathe/internal/stats"
	"github.com/zjrosen/breathe/internal/trainer"
	"github.com/zjrosen/breathe/internal/ui/sessionview"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in input fields.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	logFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:     "breathe",
	Short:   "A terminal breath-hold trainer",
	Long:    `A terminal breath-hold trainer: guided box-breathing preparation rounds followed by a timed breath hold, with milestones, personal records, and session history.`,
	Version: version,
	RunE:    runSession,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/breathe/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "",
		"write debug logs to this file")
	rootCmd.Flags().String("db", "",
		"path to the session database")
	rootCmd.Flags().Bool("no-announcements", false,
		"disable spoken-style phase cues in the session view")

	// Bind flags to viper
	_ = viper.BindPFlag("database_path", rootCmd.Flags().Lookup("db"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("database_path", defaults.DatabasePath)
	viper.SetDefault("auto_refresh", defaults.AutoRefresh)
	viper.SetDefault("recovery_window_seconds", defaults.RecoveryWindowSeconds)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.markdown_style", defaults.UI.MarkdownStyle)
	viper.SetDefault("ui.announcements", defaults.UI.Announcements)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .breathe/config.yaml (current directory)
		// 2. ~/.config/breathe/config.yaml (user config)
		if _, err := os.Stat(".breathe/config.yaml"); err == nil {
			viper.SetConfigFile(".breathe/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "breathe"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .breathe/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".breathe/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// initLogging wires the optional debug log. The returned cleanup is a
// no-op when logging is disabled.
func initLogging() func() {
	if logFile == "" {
		return func() {}
	}
	cleanup, err := log.Init(logFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
		return func() {}
	}
	return cleanup
}

func runSession(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cleanup := initLogging()
	defer cleanup()

	if noAnnouncements, _ := cmd.Flags().GetBool("no-announcements"); noAnnouncements {
		cfg.UI.Announcements = false
	}

	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx := cmd.Context()
	broker := pubsub.NewBroker[events.SessionEvent]()
	defer broker.Close()

	aggregator := stats.NewAggregator(
		db.Records(),
		cachemanager.NewInMemoryCacheManager[string, *stats.Summary]("stats",
			cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
		nil,
	)
	target, err := aggregator.PersonalBest(ctx)
	if err != nil {
		return fmt.Errorf("loading personal best: %w", err)
	}

	protocol := cfg.BreathingProtocol()
	runner := trainer.NewRunner(trainer.Config{
		Protocol:           protocol,
		Milestones:         cfg.HoldMilestones(),
		PersonalBestTarget: target,
		Records:            db.Records(),
		Snapshots:          db.Snapshots(),
		Broker:             broker,
		RecoveryWindow:     cfg.RecoveryWindow(),
	})

	// A snapshot left by a previous launch opens the resume prompt.
	snapshot, err := runner.Recoverable(ctx)
	if err != nil {
		log.ErrorErr(log.CatSession, "recovery check failed", err)
	}

	model := sessionview.New(ctx, runner, broker, protocol.TotalRounds, cfg.UI.Announcements, snapshot)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
