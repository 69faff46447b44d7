package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

// NewSealCommand creates the seal command.
func NewSealCommand(opts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Seal the active date: pending items become losses",
		Long: `Seal the active date. The score is recomputed as final, so every item
still pending is counted as fully lost (UNLOGGED), and the day becomes
read-only until unsealed.

Sealing is refused while requirements are pending unless --force is given.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, opts, func(ctx context.Context, s *session, date string) error {
				if !force {
					if pending := pendingItems(s); len(pending) > 0 {
						return NewExitError(ExitFailure, "requirements still pending: "+strings.Join(pending, ", ")+" (use --force to seal anyway)")
					}
				}
				return s.engine.Seal(ctx, date)
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "seal even with pending requirements")
	return cmd
}

// NewUnsealCommand creates the unseal command.
func NewUnsealCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "unseal",
		Short:         "Reopen a sealed date for editing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, opts, func(ctx context.Context, s *session, date string) error {
				return s.engine.Unseal(ctx, date)
			})
		},
	}
}

// pendingItems lists the requirement ids with no logged status.
func pendingItems(s *session) []string {
	st := s.engine.State()
	if st.Protocol == nil {
		return nil
	}
	var ids []string
	for _, it := range st.Protocol.Meals {
		if itemStatus(st, it) == "-" {
			ids = append(ids, it.ID)
		}
	}
	for _, it := range st.Protocol.Support {
		if itemStatus(st, it) == "-" {
			ids = append(ids, it.ID)
		}
	}
	return ids
}
