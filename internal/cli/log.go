package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/adherence/internal/model"
)

// NewLogCommand creates the log command group.
func NewLogCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log meals, habits, sleep and notes for the active date",
		Long: `Log an entry against the active date (the live biological date, or the
date given with --date). Sealed days reject every log command.`,
	}

	cmd.AddCommand(newLogMealCommand(opts))
	cmd.AddCommand(newLogSupportCommand(opts))
	cmd.AddCommand(newLogSleepCommand(opts))
	cmd.AddCommand(newLogContextCommand(opts))
	cmd.AddCommand(newLogDeviationsCommand(opts))

	return cmd
}

// mutate runs one engine command against the view date and prints the
// resulting state.
func mutate(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *session, date string) error) error {
	f := newFormatter(opts, cmd)
	return withSession(cmd, opts, func(ctx context.Context, s *session) error {
		date := s.engine.State().ViewDate
		if err := fn(ctx, s, date); err != nil {
			return f.CommandFailed(err)
		}
		return printState(f, s.engine.State())
	})
}

func newLogMealCommand(opts *RootOptions) *cobra.Command {
	var (
		consumed []string
		detail   string
	)

	cmd := &cobra.Command{
		Use:   "meal <juice|lunch|dinner> <FOLLOWED|PARTIAL|DIFFERENT|SKIPPED>",
		Short: "Log a meal slot",
		Example: `  adherence log meal lunch followed
  adherence log meal dinner different --consumed Pizza --detail "work dinner"`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := model.MealUpdate{Status: statusFlag(args[1])}
			if cmd.Flags().Changed("consumed") {
				u.ActualConsumed = consumed
			}
			if cmd.Flags().Changed("detail") {
				u.Detail = &detail
			}
			return mutate(cmd, opts, func(ctx context.Context, s *session, date string) error {
				return s.engine.LogMeal(ctx, date, strings.ToLower(args[0]), u)
			})
		},
	}

	cmd.Flags().StringSliceVar(&consumed, "consumed", nil, "what was actually eaten")
	cmd.Flags().StringVar(&detail, "detail", "", "free-text detail")
	return cmd
}

func newLogSupportCommand(opts *RootOptions) *cobra.Command {
	var meta map[string]string

	cmd := &cobra.Command{
		Use:   "support <id> <TAKEN|COMPLETED|MISSED|SKIPPED|VIOLATION>",
		Short: "Log a habit (water, gym, walks, psyllium, black_coffee)",
		Example: `  adherence log support water completed
  adherence log support gym completed --meta kind=run --meta minutes=40`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			u := model.SupportUpdate{Status: statusFlag(args[1]), Metadata: meta}
			return mutate(cmd, opts, func(ctx context.Context, s *session, date string) error {
				return s.engine.LogSupport(ctx, date, strings.ToLower(args[0]), u)
			})
		},
	}

	cmd.Flags().StringToStringVar(&meta, "meta", nil, "metadata key=value pairs")
	return cmd
}

func newLogSleepCommand(opts *RootOptions) *cobra.Command {
	var (
		wake, bed, window, reason string
		hours                     float64
	)

	cmd := &cobra.Command{
		Use:   "sleep",
		Short: "Log wake time, bed time or a sleep summary",
		Example: `  adherence log sleep --wake 06:45
  adherence log sleep --bed 22:30
  adherence log sleep --hours 5.5 --reason "late flight"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var u model.SleepUpdate
			fl := cmd.Flags()
			if fl.Changed("wake") {
				u.WakeTime = &wake
			}
			if fl.Changed("bed") {
				u.BedTime = &bed
			}
			if fl.Changed("hours") {
				u.Hours = &hours
			}
			if fl.Changed("window") {
				u.SleepWindow = &window
			}
			if fl.Changed("reason") {
				u.Reason = &reason
			}
			return mutate(cmd, opts, func(ctx context.Context, s *session, date string) error {
				return s.engine.LogSleep(ctx, date, u)
			})
		},
	}

	cmd.Flags().StringVar(&wake, "wake", "", "wake time HH:MM")
	cmd.Flags().StringVar(&bed, "bed", "", "bed time HH:MM")
	cmd.Flags().Float64Var(&hours, "hours", 0, "hours slept")
	cmd.Flags().StringVar(&window, "window", "", "sleep window, e.g. 22:30-06:00")
	cmd.Flags().StringVar(&reason, "reason", "", "why sleep was short")
	return cmd
}

func newLogContextCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "context <text>",
		Short:         "Replace the day's context note",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutate(cmd, opts, func(ctx context.Context, s *session, date string) error {
				return s.engine.LogContext(ctx, date, args[0])
			})
		},
	}
}

func newLogDeviationsCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "deviations [type...]",
		Short: "Replace the day's list of major deviations",
		Long: `Replace the whole list of major deviations. Give deviation types as
arguments, or a YAML list of {type, quantity, time, notes} entries with
--file. No arguments and no file clears the list.`,
		Example: `  adherence log deviations party "late snack"
  adherence log deviations --file deviations.yaml
  adherence log deviations`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := make([]model.DeviationEntry, 0, len(args))
			if file != "" {
				fromFile, err := loadDeviations(file)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to read deviations", err)
				}
				list = append(list, fromFile...)
			}
			for _, typ := range args {
				list = append(list, model.DeviationEntry{Type: typ})
			}
			return mutate(cmd, opts, func(ctx context.Context, s *session, date string) error {
				return s.engine.LogDeviations(ctx, date, list)
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "YAML file with deviation entries")
	return cmd
}

func loadDeviations(path string) ([]model.DeviationEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []model.DeviationEntry
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&list); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return list, nil
}

// statusFlag upper-cases a status argument; validation is the engine's job.
func statusFlag(s string) *model.Status {
	st := model.Status(strings.ToUpper(strings.TrimSpace(s)))
	return &st
}
