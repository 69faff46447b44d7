package harness

import (
	"context"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/adherence/internal/engine"
	"github.com/roach88/adherence/internal/model"
)

// commandFunc applies one scenario step to the engine.
type commandFunc func(ctx context.Context, eng *engine.Engine, date string, args *yaml.Node) error

type mealArgs struct {
	Slot     string   `yaml:"slot"`
	Status   string   `yaml:"status"`
	Consumed []string `yaml:"consumed"`
	Detail   *string  `yaml:"detail"`
}

type supportArgs struct {
	ID       string            `yaml:"id"`
	Status   string            `yaml:"status"`
	Metadata map[string]string `yaml:"metadata"`
}

type sleepArgs struct {
	WakeTime *string  `yaml:"wake_time"`
	BedTime  *string  `yaml:"bed_time"`
	Hours    *float64 `yaml:"hours"`
	Window   *string  `yaml:"window"`
	Reason   *string  `yaml:"reason"`
}

type contextArgs struct {
	Text string `yaml:"text"`
}

type deviationArgs struct {
	Deviations []model.DeviationEntry `yaml:"deviations"`
}

type viewArgs struct {
	Date string `yaml:"date"`
}

var commands = map[string]commandFunc{
	"log_meal": func(ctx context.Context, eng *engine.Engine, date string, args *yaml.Node) error {
		var a mealArgs
		if err := decodeArgs(args, &a); err != nil {
			return err
		}
		return eng.LogMeal(ctx, date, a.Slot, model.MealUpdate{
			Status:         statusArg(a.Status),
			ActualConsumed: a.Consumed,
			Detail:         a.Detail,
		})
	},
	"log_support": func(ctx context.Context, eng *engine.Engine, date string, args *yaml.Node) error {
		var a supportArgs
		if err := decodeArgs(args, &a); err != nil {
			return err
		}
		return eng.LogSupport(ctx, date, a.ID, model.SupportUpdate{
			Status:   statusArg(a.Status),
			Metadata: a.Metadata,
		})
	},
	"log_sleep": func(ctx context.Context, eng *engine.Engine, date string, args *yaml.Node) error {
		var a sleepArgs
		if err := decodeArgs(args, &a); err != nil {
			return err
		}
		return eng.LogSleep(ctx, date, model.SleepUpdate{
			WakeTime:    a.WakeTime,
			BedTime:     a.BedTime,
			Hours:       a.Hours,
			SleepWindow: a.Window,
			Reason:      a.Reason,
		})
	},
	"log_context": func(ctx context.Context, eng *engine.Engine, date string, args *yaml.Node) error {
		var a contextArgs
		if err := decodeArgs(args, &a); err != nil {
			return err
		}
		return eng.LogContext(ctx, date, a.Text)
	},
	"log_deviations": func(ctx context.Context, eng *engine.Engine, date string, args *yaml.Node) error {
		var a deviationArgs
		if err := decodeArgs(args, &a); err != nil {
			return err
		}
		return eng.LogDeviations(ctx, date, a.Deviations)
	},
	"seal": func(ctx context.Context, eng *engine.Engine, date string, _ *yaml.Node) error {
		return eng.Seal(ctx, date)
	},
	"unseal": func(ctx context.Context, eng *engine.Engine, date string, _ *yaml.Node) error {
		return eng.Unseal(ctx, date)
	},
	"set_view_date": func(ctx context.Context, eng *engine.Engine, _ string, args *yaml.Node) error {
		var a viewArgs
		if err := decodeArgs(args, &a); err != nil {
			return err
		}
		return eng.SetViewDate(ctx, a.Date)
	},
	"reset_all": func(ctx context.Context, eng *engine.Engine, _ string, _ *yaml.Node) error {
		return eng.ResetAll(ctx)
	},
}

// Commands lists the step command names, sorted.
func Commands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func decodeArgs(args *yaml.Node, v any) error {
	if args == nil || args.Kind == 0 {
		return nil
	}
	if err := args.Decode(v); err != nil {
		return fmt.Errorf("decode args: %w", err)
	}
	return nil
}

// statusArg maps an omitted status to "leave untouched".
func statusArg(s string) *model.Status {
	if s == "" {
		return nil
	}
	st := model.Status(s)
	return &st
}
