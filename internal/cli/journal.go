package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/adherence/internal/model"
)

// NewJournalCommand creates the journal command.
func NewJournalCommand(opts *RootOptions) *cobra.Command {
	var (
		limit   int
		payload bool
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List the most recent committed snapshots",
		Long: `List the snapshot journal: one immutable, content-hashed snapshot per
committed change, in commit order. These are the records an external
replicator consumes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				snaps, err := s.store.ListSnapshots(ctx, limit)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read journal", err)
				}
				return newFormatter(opts, cmd).Emit(snaps, func(w io.Writer) {
					renderJournal(w, snaps, payload)
				})
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of snapshots (0 for all)")
	cmd.Flags().BoolVar(&payload, "payload", false, "print each snapshot payload")
	return cmd
}

func renderJournal(w io.Writer, snaps []model.Snapshot, payload bool) {
	if len(snaps) == 0 {
		fmt.Fprintln(w, "Journal is empty.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tDATE\tKIND\tACTION\tHASH")
	for _, s := range snaps {
		hash := s.Hash
		if len(hash) > 12 {
			hash = hash[:12]
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.Seq, s.Date, s.Kind, s.Action, hash)
		if payload {
			fmt.Fprintf(tw, "\t%s\n", s.Payload)
		}
	}
	tw.Flush()
}
