package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/adherence/internal/clock"
	"github.com/roach88/adherence/internal/engine"
	"github.com/roach88/adherence/internal/store"
	"github.com/roach88/adherence/internal/testutil"
)

// Harness replays scenario steps against a real engine backed by an
// in-memory store and a manual clock.
type Harness struct {
	store  *store.Store
	engine *engine.Engine
	clock  *clock.Clock
	manual *testutil.ManualClock
	logger *slog.Logger
}

// Option configures a harness run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes engine and store logs to l. Logs are discarded by
// default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		c.logger = l
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. Step
// failures and failed assertions mark the result as failed; an error is
// returned only when the scenario cannot be set up at all.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	loc, err := scenario.Location()
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone: %w", err)
	}
	now, err := time.Parse(time.RFC3339, scenario.Now)
	if err != nil {
		return nil, fmt.Errorf("failed to parse now: %w", err)
	}
	plan, err := scenario.LoadPlan()
	if err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	st, err := store.Open(":memory:", store.WithLogger(cfg.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	manual := testutil.NewManualClock(now.In(loc))
	clk := clock.New(clock.WithSource(manual.Now), clock.WithLocation(loc))

	eng, err := engine.New(ctx, st, clk,
		engine.WithPlan(plan),
		engine.WithLogger(cfg.logger),
		engine.WithIDGenerator(testutil.NewSequentialIDGenerator("snap")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	h := &Harness{
		store:  st,
		engine: eng,
		clock:  clk,
		manual: manual,
		logger: cfg.logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, err
		}
	}

	result.Final = eng.State()
	for _, msg := range EvaluateAssertions(result.Final, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep moves the clock if requested, runs one command and records
// its outcome.
func (h *Harness) executeStep(ctx context.Context, i int, step Step, result *Result) error {
	if step.At != "" {
		at, err := time.Parse(time.RFC3339, step.At)
		if err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		h.manual.Set(at.In(h.clock.Location()))
		if err := h.engine.HandleTick(ctx, h.clock.Tick()); err != nil {
			result.AddError(fmt.Sprintf("step %d: tick failed: %v", i, err))
		}
	}

	date := step.Date
	if date == "" {
		date = h.engine.State().ViewDate
	}

	run := commands[step.Command]
	err := run(ctx, h.engine, date, &step.Args)

	code := ""
	var cmdErr *engine.CommandError
	switch {
	case err == nil:
	case errors.As(err, &cmdErr):
		code = string(cmdErr.Code)
	default:
		return fmt.Errorf("step %d (%s): %w", i, step.Command, err)
	}

	switch {
	case step.ExpectError != "" && code != step.ExpectError:
		result.AddError(fmt.Sprintf("step %d (%s): expected error %s, got %q",
			i, step.Command, step.ExpectError, code))
	case step.ExpectError == "" && code != "":
		result.AddError(fmt.Sprintf("step %d (%s): unexpected error: %v",
			i, step.Command, err))
	}

	h.logger.Debug("scenario step completed",
		"step", i,
		"command", step.Command,
		"date", date,
		"error", code)

	result.AddStep(step.Command, date, code, h.engine.State())
	return nil
}
