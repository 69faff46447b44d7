package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/adherence/internal/engine"
	"github.com/roach88/adherence/internal/model"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the day's protocol, score and progress",
		Long: `Show the derived protocol of the active date with the logged status of
every requirement, the compliance score and its loss breakdown.

Examples:
  adherence status --plan plan.json
  adherence status --date 2024-01-05 --format json
  adherence status --mock-time 22:30`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				return printState(newFormatter(opts, cmd), s.engine.State())
			})
		},
	}
}

// printState emits st in the configured format.
func printState(f *OutputFormatter, st engine.State) error {
	return f.Emit(st, func(w io.Writer) {
		renderState(w, st)
	})
}

func renderState(w io.Writer, st engine.State) {
	var flags []string
	if st.Pinned {
		flags = append(flags, "pinned")
	}
	if st.ReadOnly {
		flags = append(flags, "sealed")
	}
	header := fmt.Sprintf("%s  %s %s", st.ViewDate, st.Time, strings.ToLower(string(st.Phase)))
	if len(flags) > 0 {
		header += "  [" + strings.Join(flags, ", ") + "]"
	}
	fmt.Fprintln(w, header)

	if st.Protocol == nil {
		fmt.Fprintln(w, "No protocol for this date.")
		return
	}
	fmt.Fprintf(w, "Day %d (%s)  Score %d/100  Progress %d%%  Sealed days %d\n",
		st.Protocol.DayIndex, st.Protocol.DietType, st.Score.Total, st.Progress, st.SealedDays)

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tWEIGHT\tSTATUS\tEXPECTED")
	for _, it := range append(append([]model.RequirementItem{}, st.Protocol.Meals...), st.Protocol.Support...) {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n",
			it.Label, it.Weight, itemStatus(st, it), strings.Join(it.ExpectedItems, ", "))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t\t\n", st.Protocol.TotalWeight())
	tw.Flush()

	if len(st.Score.Breakdown) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Losses:")
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for _, b := range st.Score.Breakdown {
			fmt.Fprintf(tw, "  %s\t%g\t%s\n", b.Label, b.Loss, b.Reason)
		}
		tw.Flush()
	}
}

// itemStatus renders the logged state of one requirement, "-" when pending.
func itemStatus(st engine.State, it model.RequirementItem) string {
	var s string
	switch it.Kind {
	case model.KindMeal:
		s = string(st.Day.Meal(it.ID).Status)
	case model.KindWake:
		s = st.Support.Sleep.WakeTime
	case model.KindBedtime:
		s = st.Support.Sleep.BedTime
	default:
		if r, ok := st.Support.Record(it.ID); ok {
			s = string(r.Status)
		}
	}
	if s == "" {
		return "-"
	}
	return s
}
