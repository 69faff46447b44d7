package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/adherence/internal/engine"
	"github.com/roach88/adherence/internal/model"
	"github.com/roach88/adherence/internal/protocol"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	// Interval overrides the configured tick interval.
	Interval time.Duration
	// NoReload disables reloading the plan when its file changes.
	NoReload bool
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the live clock and print every state change",
		Long: `Run the engine against the live clock until interrupted.

Each clock tick is diffed against the previous one; a new biological date
(after 03:00) reloads the day unless --date pinned a historical view. Every
state change prints one line (text) or one JSON object (json). Committed
snapshots are drained from the replication outbox and logged. The plan
file is reloaded when it changes on disk.

Example:
  adherence watch --plan plan.yaml
  adherence watch --plan plan.yaml --interval 10s --format json --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, rootOpts, func(ctx context.Context, s *session) error {
				return runWatch(ctx, opts, s, cmd)
			})
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "tick interval (default from config)")
	cmd.Flags().BoolVar(&opts.NoReload, "no-reload", false, "do not reload the plan when its file changes")

	return cmd
}

func runWatch(parent context.Context, opts *WatchOptions, s *session, cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			s.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	interval := opts.Interval
	if interval <= 0 {
		interval = s.cfg.TickInterval
	}

	p := &statePrinter{w: cmd.OutOrStdout(), json: opts.Format == "json"}
	unsubscribe := s.engine.Subscribe(p.print)
	defer unsubscribe()
	p.print(s.engine.State())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ignoreCancel(s.engine.Run(gctx, interval))
	})

	g.Go(func() error {
		return drainOutbox(gctx, s.engine.Outbox(), s.logger)
	})

	if s.cfg.PlanPath != "" && !opts.NoReload {
		g.Go(func() error {
			return ignoreCancel(protocol.WatchPlan(gctx, s.cfg.PlanPath, protocol.DefaultDebounce, s.logger, func(plan *model.Plan) {
				if err := s.engine.SetPlan(gctx, plan); err != nil {
					s.logger.Error("plan not applied", "error", err)
				}
			}))
		})
	}

	if err := g.Wait(); err != nil {
		return WrapExitError(ExitFailure, "engine error", err)
	}

	s.logger.Info("engine stopped gracefully")
	return nil
}

// drainOutbox hands committed snapshots to the replication log until ctx is
// cancelled or the outbox is closed.
func drainOutbox(ctx context.Context, ob *engine.Outbox, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ob.Wait():
			for _, snap := range ob.Drain() {
				logger.Info("snapshot ready",
					"id", snap.ID,
					"seq", snap.Seq,
					"date", snap.Date,
					"kind", snap.Kind,
					"action", snap.Action,
					"hash", snap.Hash)
			}
			if !ok {
				return nil
			}
		}
	}
}

func ignoreCancel(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// statePrinter serializes state lines from the engine and plan watcher
// goroutines.
type statePrinter struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
}

func (p *statePrinter) print(st engine.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.json {
		_ = json.NewEncoder(p.w).Encode(st)
		return
	}
	line := fmt.Sprintf("%s %s %-8s", st.ViewDate, st.Time, st.Phase)
	if st.Protocol == nil {
		line += " no protocol"
	} else {
		line += fmt.Sprintf(" score=%d progress=%d%%", st.Score.Total, st.Progress)
	}
	if st.ReadOnly {
		line += " sealed"
	}
	fmt.Fprintln(p.w, line)
}
