// Package analytics derives read-only history views for display: the
// sleep-debt streak and the deviation heatmap. Nothing here feeds back into
// scoring.
package analytics

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/adherence/internal/clock"
	"github.com/roach88/adherence/internal/model"
)

// Window is the number of days each view covers.
const Window = 30

// SleepDebtHours is the threshold below which a night counts as debt.
const SleepDebtHours = 6.0

// UnknownDeviation labels deviations logged without a type.
const UnknownDeviation = "Unknown"

// Reader is the read side of the log store. Implemented by *store.Store.
type Reader interface {
	LoadDay(ctx context.Context, date string) (model.DayLog, error)
	LoadSupport(ctx context.Context, date string) (model.SupportLog, error)
}

// SleepDebt summarizes short nights before today.
type SleepDebt struct {
	// Streak counts consecutive debt nights walking back from yesterday. A
	// night without logged hours ends the streak.
	Streak int `json:"streak"`
	// Last30 counts debt nights among the 30 days before today.
	Last30 int `json:"last30"`
}

// SleepDebtStats scans the Window days before today (YYYY-MM-DD).
func SleepDebtStats(ctx context.Context, r Reader, today string) (SleepDebt, error) {
	var out SleepDebt
	streakAlive := true
	for i := 1; i <= Window; i++ {
		date, err := clock.AddDays(today, -i)
		if err != nil {
			return SleepDebt{}, fmt.Errorf("sleep debt: %w", err)
		}
		log, err := r.LoadSupport(ctx, date)
		if err != nil {
			return SleepDebt{}, fmt.Errorf("sleep debt: %w", err)
		}

		debt := isDebt(log.Sleep)
		if debt {
			out.Last30++
		}
		if streakAlive && debt {
			out.Streak++
		} else {
			streakAlive = false
		}
	}
	return out, nil
}

func isDebt(s model.SleepRecord) bool {
	return s.HasHours() && *s.Hours < SleepDebtHours
}

// DeviationHeatmap counts deviation types over today and the Window-1 days
// before it, sealed and open days alike. Types are trimmed and NFC-normalized
// so visually identical labels share a bucket.
func DeviationHeatmap(ctx context.Context, r Reader, today string) (map[string]int, error) {
	counts := map[string]int{}
	for i := 0; i < Window; i++ {
		date, err := clock.AddDays(today, -i)
		if err != nil {
			return nil, fmt.Errorf("deviation heatmap: %w", err)
		}
		day, err := r.LoadDay(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("deviation heatmap: %w", err)
		}
		for _, dev := range day.MajorDeviations {
			counts[deviationKey(dev.Type)]++
		}
	}
	return counts, nil
}

func deviationKey(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return UnknownDeviation
	}
	return norm.NFC.String(t)
}

// HeatmapEntry is one bucket of a heatmap.
type HeatmapEntry struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Ranked orders a heatmap by descending count, then type.
func Ranked(heatmap map[string]int) []HeatmapEntry {
	out := make([]HeatmapEntry, 0, len(heatmap))
	for t, n := range heatmap {
		out = append(out, HeatmapEntry{Type: t, Count: n})
	}
	slices.SortFunc(out, func(a, b HeatmapEntry) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Type, b.Type)
	})
	return out
}
