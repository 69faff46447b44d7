package protocol

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/roach88/adherence/internal/model"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 250 * time.Millisecond

// WatchPlan reloads the plan at path whenever the file changes and hands
// each valid plan to fn. Invalid plans are logged and skipped; the previous
// plan stays in force. The parent directory is watched so atomic
// rename-on-save editors are picked up. Blocks until ctx is cancelled.
func WatchPlan(ctx context.Context, path string, debounce time.Duration, logger *slog.Logger, fn func(*model.Plan)) error {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch plan: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch plan: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch plan %s: %w", path, err)
	}
	logger.Debug("watching plan", "path", abs)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("plan watcher error", "error", err)

		case <-timer.C:
			plan, err := LoadPlan(abs)
			if err != nil {
				logger.Warn("plan reload rejected", "path", abs, "error", err)
				continue
			}
			logger.Info("plan reloaded",
				"path", abs,
				"start", plan.StartDate.Format(time.DateOnly),
				"total_days", plan.TotalDays)
			fn(plan)
		}
	}
}
