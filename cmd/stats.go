package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/breathe/internal/config"
	"github.com/zjrosen/breathe/internal/infrastructure/sqlite"
	"github.com/zjrosen/breathe/internal/stats"
	"github.com/zjrosen/breathe/internal/ui/styles"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print a summary of your training",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := sqlite.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening session database: %w", err)
	}
	defer func() { _ = db.Close() }()

	aggregator := stats.NewAggregator(db.Records(), nil, nil)
	summary, err := aggregator.Summary(cmd.Context())
	if err != nil {
		return fmt.Errorf("computing summary: %w", err)
	}

	out := cmd.OutOrStdout()
	printStat := func(label, value string) {
		fmt.Fprintf(out, "%s%s\n", styles.StatLabelStyle.Render(label), styles.StatValueStyle.Render(value))
	}

	printStat("Sessions", fmt.Sprintf("%d", summary.TotalSessions))
	printStat("Personal best", formatSeconds(summary.PersonalBest))
	printStat("Average hold", formatSeconds(summary.AverageHold))
	printStat("Current streak", fmt.Sprintf("%d days", summary.CurrentStreakDays))
	printStat("Longest streak", fmt.Sprintf("%d days", summary.LongestStreakDays))
	return nil
}

func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "none yet"
	}
	if seconds < 60 {
		return fmt.Sprintf("%.1fs", seconds)
	}
	return fmt.Sprintf("%dm %02ds", int(seconds)/60, int(seconds)%60)
}
