// Package stats computes aggregates over completed session records:
// personal best, streaks, averages, and a recent trend. Pure aggregation
// over the repository's list; results are cached briefly since the
// history only changes when a session completes.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/breathe/internal/cachemanager"
	"github.com/zjrosen/breathe/internal/log"
	"github.com/zjrosen/breathe/internal/sessions/domain"
	"github.com/zjrosen/breathe/internal/timer"
)

// TrendLength is the number of most recent holds included in the trend.
const TrendLength = 7

const summaryKey = "summary"

// Summary holds the aggregates over all completed sessions.
type Summary struct {
	// TotalSessions counts completed sessions.
	TotalSessions int

	// PersonalBest is the longest hold in seconds, 0 with no history.
	PersonalBest float64

	// AverageHold is the mean hold duration in seconds.
	AverageHold float64

	// CurrentStreakDays counts consecutive calendar days with at least
	// one completed session, ending today or yesterday.
	CurrentStreakDays int

	// LongestStreakDays is the longest such run in the history.
	LongestStreakDays int

	// Trend is the last up-to-TrendLength hold durations, oldest first.
	Trend []float64
}

// Aggregator computes summaries from the record repository.
type Aggregator struct {
	records domain.RecordRepository
	cache   cachemanager.CacheManager[string, *Summary]
	clock   timer.Clock
}

// NewAggregator creates an aggregator. A nil cache disables caching; a
// nil clock uses the system clock.
func NewAggregator(records domain.RecordRepository, cache cachemanager.CacheManager[string, *Summary], clock timer.Clock) *Aggregator {
	if clock == nil {
		clock = timer.SystemClock{}
	}
	return &Aggregator{records: records, cache: cache, clock: clock}
}

// Summary returns the aggregates, served from cache when fresh.
func (a *Aggregator) Summary(ctx context.Context) (*Summary, error) {
	if a.cache != nil {
		if cached, ok := a.cache.Get(ctx, summaryKey); ok {
			return cached, nil
		}
	}

	records, err := a.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions for aggregation: %w", err)
	}

	summary := a.aggregate(records)
	if a.cache != nil {
		a.cache.Set(ctx, summaryKey, summary, cachemanager.DefaultExpiration)
	}
	return summary, nil
}

// PersonalBest returns the longest completed hold, 0 with no history.
// Used to seed the hold controller's record detection.
func (a *Aggregator) PersonalBest(ctx context.Context) (float64, error) {
	summary, err := a.Summary(ctx)
	if err != nil {
		return 0, err
	}
	return summary.PersonalBest, nil
}

// Invalidate drops the cached summary, called when a session completes.
func (a *Aggregator) Invalidate(ctx context.Context) {
	if a.cache != nil {
		if err := a.cache.Delete(ctx, summaryKey); err != nil {
			log.ErrorErr(log.CatStats, "cache invalidation failed", err)
		}
	}
}

// aggregate folds the records, newest first, into a Summary. Incomplete
// records are skipped: only frozen sessions count.
func (a *Aggregator) aggregate(records []*domain.Record) *Summary {
	summary := &Summary{}

	var total float64
	var trendNewestFirst []float64
	days := make(map[string]struct{})

	for _, record := range records {
		if !record.IsCompleted() {
			continue
		}
		summary.TotalSessions++
		hold := record.HoldDurationSeconds()
		total += hold
		if hold > summary.PersonalBest {
			summary.PersonalBest = hold
		}
		if len(trendNewestFirst) < TrendLength {
			trendNewestFirst = append(trendNewestFirst, hold)
		}
		days[record.CompletedAt().Format("2006-01-02")] = struct{}{}
	}

	if summary.TotalSessions > 0 {
		summary.AverageHold = total / float64(summary.TotalSessions)
	}

	// Trend is reported oldest first.
	summary.Trend = make([]float64, len(trendNewestFirst))
	for i, hold := range trendNewestFirst {
		summary.Trend[len(trendNewestFirst)-1-i] = hold
	}

	summary.CurrentStreakDays, summary.LongestStreakDays = streaks(days, a.clock.Now())
	return summary
}

// streaks computes the current and longest runs of consecutive days
// with at least one completed session. The current streak survives if
// the last session was yesterday; today without a session yet does not
// break it.
func streaks(days map[string]struct{}, now time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	// Longest run anywhere in the history.
	for day := range days {
		start, _ := time.Parse("2006-01-02", day)
		if _, ok := days[start.AddDate(0, 0, -1).Format("2006-01-02")]; ok {
			continue // not the start of a run
		}
		run := 0
		for d := start; ; d = d.AddDate(0, 0, 1) {
			if _, ok := days[d.Format("2006-01-02")]; !ok {
				break
			}
			run++
		}
		if run > longest {
			longest = run
		}
	}

	// Current run ending today or yesterday.
	anchor := now
	if _, ok := days[anchor.Format("2006-01-02")]; !ok {
		anchor = anchor.AddDate(0, 0, -1)
	}
	for {
		if _, ok := days[anchor.Format("2006-01-02")]; !ok {
			break
		}
		current++
		anchor = anchor.AddDate(0, 0, -1)
	}
	return current, longest
}
