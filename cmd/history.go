package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zjrosen/breathe/internal/cachemanager"
	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/infrastructure/sqlite"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/stats"
	"github.com/zjrosen/breathe/internal/ui/historyview"
	"github.com/zjrosen/breathe/internal/watcher"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past sessions and streaks",
	Long:  `Browse the session history: every completed hold, personal best, average, streaks, and the recent trend. The view refreshes automatically when another process writes a session.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Bool("no-auto-refresh", false,
		"disable automatic refresh when the database changes")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cleanup := initLogging()
	defer cleanup()

	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer func() { _ = db.Close() }()

	aggregator := stats.NewAggregator(
		db.Records(),
		cachemanager.NewInMemoryCacheManager[string, *stats.Summary]("stats",
			cachemanager.DefaultExpiration, cachemanager.DefaultCleanupInterval),
		nil,
	)

	// Handle --no-auto-refresh flag (negated logic)
	autoRefresh := cfg.AutoRefresh
	if noAutoRefresh, _ := cmd.Flags().GetBool("no-auto-refresh"); noAutoRefresh {
		autoRefresh = false
	}

	var changes <-chan struct{}
	if autoRefresh {
		w, err := watcher.New(watcher.DefaultConfig(cfg.DatabasePath))
		if err != nil {
			log.ErrorErr(log.CatWatcher, "watcher unavailable", err)
		} else {
			ch, err := w.Start()
			if err != nil {
				log.ErrorErr(log.CatWatcher, "watcher start failed", err)
			} else {
				changes = ch
				defer func() { _ = w.Stop() }()
			}
		}
	}

	model := historyview.New(cmd.Context(), db.Records(), aggregator, changes)
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}
