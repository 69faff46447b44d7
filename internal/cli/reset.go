package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewResetCommand creates the reset command.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset --yes",
		Short: "Wipe every stored log",
		Long: `Delete every day log, support log and journaled snapshot, then reload
the live date. The plan document is not touched. Requires --yes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "refusing to wipe all logs without --yes")
			}
			f := newFormatter(opts, cmd)
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.engine.ResetAll(ctx); err != nil {
					return f.CommandFailed(err)
				}
				st := s.engine.State()
				return f.Emit(st, func(w io.Writer) {
					fmt.Fprintf(w, "All logs wiped. Active date %s.\n", st.ViewDate)
				})
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the wipe")
	return cmd
}
