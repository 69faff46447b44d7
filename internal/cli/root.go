package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/adherence/internal/clock"
	"github.com/roach88/adherence/internal/config"
	"github.com/roach88/adherence/internal/engine"
	"github.com/roach88/adherence/internal/model"
	"github.com/roach88/adherence/internal/protocol"
	"github.com/roach88/adherence/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	DBPath     string
	PlanPath   string
	Timezone   string
	MockTime   string
	// Date pins the view to a historical date instead of the live
	// biological date.
	Date string

	// Clock overrides the engine clock (for testing).
	Clock *clock.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the adherence CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adherence",
		Short: "Adherence - 30-day protocol tracker",
		Long: `Track a 30-day health protocol: log meals, habits and sleep against the
day's derived requirements and read back the Deviation-Weighted Compliance
Score.

Days run from 03:00 to 03:00 local time.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			setupLogging(opts.Verbose)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	pf.StringVar(&opts.DBPath, "db", "", "path to SQLite database (default "+config.DefaultDBPath+")")
	pf.StringVar(&opts.PlanPath, "plan", "", "path to plan document (.json|.yaml)")
	pf.StringVar(&opts.Timezone, "tz", "", "IANA timezone (default local)")
	pf.StringVar(&opts.MockTime, "mock-time", "", "pin the clock to HH:MM today")
	pf.StringVar(&opts.Date, "date", "", "view a historical date (YYYY-MM-DD)")

	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewSealCommand(opts))
	cmd.AddCommand(NewUnsealCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setupLogging installs a text handler on stderr; debug level under
// --verbose.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// cmdLogger returns the process logger under --verbose and a discarding
// logger otherwise.
func cmdLogger(opts *RootOptions) *slog.Logger {
	if opts.Verbose {
		return slog.Default()
	}
	return slog.New(slog.DiscardHandler)
}

// resolveConfig layers flags over the config file and environment.
func resolveConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if opts.DBPath != "" {
		cfg.DBPath = opts.DBPath
	}
	if opts.PlanPath != "" {
		cfg.PlanPath = opts.PlanPath
	}
	if opts.Timezone != "" {
		cfg.Timezone = opts.Timezone
	}
	if opts.MockTime != "" {
		cfg.MockTime = opts.MockTime
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// session is an open store plus an engine over it.
type session struct {
	cfg    config.Config
	store  *store.Store
	engine *engine.Engine
	logger *slog.Logger
}

// openSession resolves configuration, opens the store, loads the plan and
// starts an engine on the requested date.
func openSession(ctx context.Context, opts *RootOptions) (*session, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid configuration", err)
	}
	logger := slog.Default()

	clk := opts.Clock
	if clk == nil {
		if clk, err = cfg.Clock(); err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid clock", err)
		}
	}

	var plan *model.Plan
	if cfg.PlanPath != "" {
		if plan, err = protocol.LoadPlan(cfg.PlanPath); err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load plan", err)
		}
	} else {
		logger.Warn("no plan configured; protocol and score are unavailable")
	}

	st, err := store.Open(cfg.DBPath, store.WithLogger(logger))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	last, err := st.LastSnapshotSeq(ctx)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to read journal", err)
	}

	eng, err := engine.New(ctx, st, clk,
		engine.WithPlan(plan),
		engine.WithLogger(logger),
		engine.WithSequence(clock.NewSequenceAt(last)),
	)
	if err != nil {
		st.Close()
		return nil, WrapExitError(ExitCommandError, "failed to start engine", err)
	}

	if opts.Date != "" {
		if err := eng.SetViewDate(ctx, opts.Date); err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "invalid --date", err)
		}
	}

	return &session{cfg: cfg, store: st, engine: eng, logger: logger}, nil
}

// Close releases the store.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Error("error closing database", "error", err)
	}
}

// withSession opens a session, runs fn and closes it.
func withSession(cmd *cobra.Command, opts *RootOptions, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := openSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}
