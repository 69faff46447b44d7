package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/adherence/internal/analytics"
)

// StatsResult holds the derived analytics for one date.
type StatsResult struct {
	Date       string                   `json:"date"`
	SleepDebt  analytics.SleepDebt      `json:"sleep_debt"`
	Deviations []analytics.HeatmapEntry `json:"deviations"`
	SealedDays int                      `json:"sealed_days"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show sleep debt and the deviation heatmap",
		Long: fmt.Sprintf(`Show derived analytics relative to the active date:

  sleep debt   nights under %gh, as a streak ending yesterday and a count
               over the previous %d days
  deviations   major deviation types over the active date and the %d days before`,
			analytics.SleepDebtHours, analytics.Window, analytics.Window-1),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				res, err := collectStats(ctx, s)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read logs", err)
				}
				return newFormatter(opts, cmd).Emit(res, func(w io.Writer) {
					renderStats(w, res)
				})
			})
		},
	}
}

func collectStats(ctx context.Context, s *session) (StatsResult, error) {
	st := s.engine.State()
	debt, err := analytics.SleepDebtStats(ctx, s.store, st.ViewDate)
	if err != nil {
		return StatsResult{}, err
	}
	heat, err := analytics.DeviationHeatmap(ctx, s.store, st.ViewDate)
	if err != nil {
		return StatsResult{}, err
	}
	return StatsResult{
		Date:       st.ViewDate,
		SleepDebt:  debt,
		Deviations: analytics.Ranked(heat),
		SealedDays: st.SealedDays,
	}, nil
}

func renderStats(w io.Writer, res StatsResult) {
	fmt.Fprintf(w, "Stats as of %s\n", res.Date)
	fmt.Fprintf(w, "  Sleep debt streak: %d night(s)\n", res.SleepDebt.Streak)
	fmt.Fprintf(w, "  Sleep debt, last %d days: %d\n", analytics.Window, res.SleepDebt.Last30)
	fmt.Fprintf(w, "  Sealed days: %d\n", res.SealedDays)
	if len(res.Deviations) == 0 {
		fmt.Fprintln(w, "  No major deviations.")
		return
	}
	fmt.Fprintln(w, "  Deviations:")
	for _, e := range res.Deviations {
		fmt.Fprintf(w, "    %-20s %d\n", e.Type, e.Count)
	}
}
