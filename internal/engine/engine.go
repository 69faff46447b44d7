package engine

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/roach88/adherence/internal/clock"
	"github.com/roach88/adherence/internal/model"
	"github.com/roach88/adherence/internal/protocol"
	"github.com/roach88/adherence/internal/scoring"
)

// Actions name the command that produced a snapshot.
const (
	ActionLogSupport    = "LOG_SUPPORT"
	ActionLogMeal       = "LOG_MEAL"
	ActionLogContext    = "LOG_CONTEXT"
	ActionLogDeviations = "LOG_DEVIATIONS"
	ActionLogSleep      = "LOG_SLEEP"
	ActionSeal          = "SEAL"
	ActionUnseal        = "UNSEAL"
	ActionSetViewDate   = "SET_VIEW_DATE"
	ActionResetAll      = "RESET_ALL"
)

// Store is the persistence the engine needs. Implemented by *store.Store.
type Store interface {
	LoadDay(ctx context.Context, date string) (model.DayLog, error)
	LoadSupport(ctx context.Context, date string) (model.SupportLog, error)
	SaveDay(ctx context.Context, date string, log model.DayLog) error
	SaveSupport(ctx context.Context, date string, log model.SupportLog) error
	CountSealed(ctx context.Context) (int, error)
	AppendSnapshot(ctx context.Context, snap model.Snapshot) error
	Wipe(ctx context.Context) error
}

// Observer receives the engine state after every committed change. It is
// called outside the engine lock and may call back into the engine.
type Observer func(State)

type subscription struct {
	id int
	fn Observer
}

// State is a point-in-time view of the active date. Day and Support are
// copies; Protocol is shared and must not be modified.
type State struct {
	BiologicalDate string           `json:"biological_date"`
	ViewDate       string           `json:"view_date"`
	Pinned         bool             `json:"pinned"`
	Time           string           `json:"time"`
	Phase          clock.Phase      `json:"phase"`
	Protocol       *model.Protocol  `json:"protocol"`
	Score          model.Score      `json:"score"`
	ReadOnly       bool             `json:"read_only"`
	Day            model.DayLog     `json:"day"`
	Support        model.SupportLog `json:"support"`
	Progress       int              `json:"progress"`
	SealedDays     int              `json:"sealed_days"`
}

// Engine owns the record of the active view date. Every command targets a
// date; commands for any other date are dropped as stale. A command
// persists first and only then replaces the in-memory record, so a failed
// write leaves the engine exactly as it was.
//
// Thread-safety: all methods are safe for concurrent use. Commands are
// serialized; observers run after the lock is released.
type Engine struct {
	mu     sync.Mutex
	store  Store
	clock  *clock.Clock
	plan   *model.Plan
	logger *slog.Logger
	ids    IDGenerator
	seq    *clock.Sequence
	outbox *Outbox

	observers    []subscription
	nextObserver int

	bioDate    string
	viewDate   string
	day        model.DayLog
	support    model.SupportLog
	protocol   *model.Protocol
	score      model.Score
	sealedDays int
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithPlan sets the plan available at startup. A plan arriving later goes
// through SetPlan.
func WithPlan(p *model.Plan) EngineOption {
	return func(e *Engine) {
		e.plan = p
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator sets the snapshot id generator. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// WithSequence sets the snapshot sequence, e.g. resumed from the journal.
func WithSequence(s *clock.Sequence) EngineOption {
	return func(e *Engine) {
		if s != nil {
			e.seq = s
		}
	}
}

// New creates an Engine and activates the current biological date.
func New(ctx context.Context, s Store, c *clock.Clock, opts ...EngineOption) (*Engine, error) {
	if c == nil {
		c = clock.New()
	}
	e := &Engine{
		store:  s,
		clock:  c,
		logger: slog.Default(),
		ids:    UUIDv7Generator{},
		seq:    clock.NewSequence(),
		outbox: NewOutbox(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.bioDate = c.BiologicalDate()
	if err := e.activateLocked(ctx, e.bioDate); err != nil {
		return nil, err
	}
	return e, nil
}

// Clock returns the engine's clock.
func (e *Engine) Clock() *clock.Clock {
	return e.clock
}

// Outbox returns the replication queue of committed snapshots.
func (e *Engine) Outbox() *Outbox {
	return e.outbox
}

// Plan returns the current plan, or nil if none has arrived.
func (e *Engine) Plan() *model.Plan {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plan
}

// State returns the current state of the active date.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

// Subscribe registers fn for committed changes and returns a function that
// removes it.
func (e *Engine) Subscribe(fn Observer) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextObserver
	e.nextObserver++
	e.observers = append(e.observers, subscription{id: id, fn: fn})

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.observers = slices.DeleteFunc(e.observers, func(s subscription) bool {
			return s.id == id
		})
	}
}

// SetPlan installs a plan and re-derives the active protocol. This covers a
// plan that arrives after the active date was first loaded.
func (e *Engine) SetPlan(ctx context.Context, p *model.Plan) error {
	return e.commit(func() (bool, error) {
		e.plan = p
		proto, err := e.deriveLocked(ctx, e.viewDate)
		if err != nil {
			return false, err
		}
		e.protocol = proto
		e.rescoreLocked()
		return true, nil
	})
}

// LogMeal merges u into the record of a meal slot.
func (e *Engine) LogMeal(ctx context.Context, date, slot string, u model.MealUpdate) error {
	if !slices.Contains(model.MealSlots, slot) {
		return &CommandError{
			Code:    ErrCodeUnknownSlot,
			Message: fmt.Sprintf("unknown meal slot %q", slot),
			Date:    date,
		}
	}
	if u.Status != nil && !u.Status.IsPending() {
		if _, ok := model.ParseStatus(string(*u.Status), model.MealStatuses); !ok {
			return invalidCommand(date, "invalid meal status %q", *u.Status)
		}
	}
	return e.mutateDay(ctx, date, ActionLogMeal, false, func(d *model.DayLog, at time.Time) error {
		d.Meals[slot] = model.MergeMeal(d.Meals[slot], u, at)
		return nil
	})
}

// LogContext replaces the free-text context note.
func (e *Engine) LogContext(ctx context.Context, date, text string) error {
	return e.mutateDay(ctx, date, ActionLogContext, false, func(d *model.DayLog, _ time.Time) error {
		d.Context = text
		return nil
	})
}

// LogDeviations replaces the day's major deviations wholesale.
func (e *Engine) LogDeviations(ctx context.Context, date string, list []model.DeviationEntry) error {
	return e.mutateDay(ctx, date, ActionLogDeviations, false, func(d *model.DayLog, _ time.Time) error {
		d.MajorDeviations = slices.Clone(list)
		if d.MajorDeviations == nil {
			d.MajorDeviations = []model.DeviationEntry{}
		}
		return nil
	})
}

// Seal finalizes the day. No completeness check is made: pending items are
// scored as losses from now on.
func (e *Engine) Seal(ctx context.Context, date string) error {
	return e.mutateDay(ctx, date, ActionSeal, true, func(d *model.DayLog, at time.Time) error {
		if !d.Sealed {
			d.Sealed = true
			d.SealedAt = &at
		}
		return nil
	})
}

// Unseal reopens a sealed day.
func (e *Engine) Unseal(ctx context.Context, date string) error {
	return e.mutateDay(ctx, date, ActionUnseal, true, func(d *model.DayLog, _ time.Time) error {
		d.Sealed = false
		d.SealedAt = nil
		return nil
	})
}

// LogSupport merges u into a boolean-style support record. The sleep record
// is reserved for LogSleep.
func (e *Engine) LogSupport(ctx context.Context, date, id string, u model.SupportUpdate) error {
	switch id {
	case "":
		return invalidCommand(date, "support id is required")
	case model.SupportSleep, model.SupportWake:
		return invalidCommand(date, "%q is part of the sleep record; use LogSleep", id)
	}
	if u.Status != nil && !u.Status.IsPending() {
		if _, ok := model.ParseStatus(string(*u.Status), model.SupportStatuses); !ok {
			return invalidCommand(date, "invalid support status %q", *u.Status)
		}
	}
	return e.mutateSupport(ctx, date, ActionLogSupport, func(s *model.SupportLog, at time.Time) error {
		s.Protocols[id] = model.MergeSupport(s.Protocols[id], u, at)
		return nil
	})
}

// LogSleep merges the given sleep fields, leaving the others untouched.
func (e *Engine) LogSleep(ctx context.Context, date string, u model.SleepUpdate) error {
	if u.Empty() {
		return invalidCommand(date, "no sleep fields given")
	}
	for _, t := range []*string{u.WakeTime, u.BedTime} {
		if t == nil || *t == "" {
			continue
		}
		if _, _, err := clock.ParseHHMM(*t); err != nil {
			return invalidCommand(date, "%v", err)
		}
	}
	if u.Hours != nil && (*u.Hours < 0 || *u.Hours > 24) {
		return invalidCommand(date, "sleep hours %v out of range", *u.Hours)
	}
	return e.mutateSupport(ctx, date, ActionLogSleep, func(s *model.SupportLog, at time.Time) error {
		s.Sleep = model.MergeSleep(s.Sleep, u, at)
		return nil
	})
}

// SetViewDate activates date for viewing and editing. An empty date returns
// to the live biological date.
func (e *Engine) SetViewDate(ctx context.Context, date string) error {
	return e.commit(func() (bool, error) {
		if date == "" {
			date = e.bioDate
		}
		if !clock.ValidDate(date) {
			return false, invalidCommand(date, "invalid date, want YYYY-MM-DD")
		}
		if err := e.activateLocked(ctx, date); err != nil {
			return false, err
		}
		return true, nil
	})
}

// ResetAll wipes every stored log and reactivates the live date.
func (e *Engine) ResetAll(ctx context.Context) error {
	return e.commit(func() (bool, error) {
		if err := e.store.Wipe(ctx); err != nil {
			return false, persistFailed("", ActionResetAll, err)
		}
		e.logger.Warn("all logs wiped")
		e.publishLocked(ctx, e.bioDate, model.SnapshotReset, ActionResetAll, struct{}{})
		if err := e.activateLocked(ctx, e.bioDate); err != nil {
			return true, err
		}
		return true, nil
	})
}

// HandleTick reacts to a clock change. A new biological date reloads the
// active record unless a historical date is pinned.
func (e *Engine) HandleTick(ctx context.Context, ch clock.Change) error {
	return e.commit(func() (bool, error) {
		if ch.Date == "" || ch.Date == e.bioDate {
			return ch.Any(), nil
		}

		prev := e.bioDate
		pinned := e.viewDate != prev
		e.bioDate = ch.Date
		if pinned {
			e.logger.Debug("biological date rolled over while pinned",
				"from", prev,
				"to", ch.Date,
				"view_date", e.viewDate)
			return true, nil
		}

		if err := e.activateLocked(ctx, ch.Date); err != nil {
			// retried on the next tick
			e.bioDate = prev
			return false, err
		}
		e.logger.Info("biological date rolled over",
			"from", prev,
			"to", ch.Date)
		return true, nil
	})
}

// Run drives HandleTick from the clock until ctx is cancelled.
// Tick failures are logged and the loop continues.
func (e *Engine) Run(ctx context.Context, interval time.Duration) error {
	e.logger.Info("engine starting", "date", e.State().BiologicalDate)

	onTick := func(ch clock.Change) {
		if err := e.HandleTick(ctx, ch); err != nil {
			e.logger.Error("tick failed",
				"date", ch.Date,
				"error", err)
		}
	}
	onTick(e.clock.Tick())

	err := e.clock.Run(ctx, interval, onTick)
	e.logger.Info("engine stopping: context cancelled")
	return err
}

// commit runs fn under the lock and, if fn reports a change, notifies
// observers after releasing it.
func (e *Engine) commit(fn func() (bool, error)) error {
	e.mu.Lock()
	changed, err := fn()
	var st State
	var obs []subscription
	if changed {
		st = e.stateLocked()
		obs = slices.Clone(e.observers)
	}
	e.mu.Unlock()

	for _, o := range obs {
		o.fn(st)
	}
	return err
}

func (e *Engine) mutateDay(ctx context.Context, date, action string, allowSealed bool, fn func(*model.DayLog, time.Time) error) error {
	return e.commit(func() (bool, error) {
		if !e.acceptLocked(date, action) {
			return false, nil
		}
		if e.day.Sealed && !allowSealed {
			return false, &CommandError{Code: ErrCodeDaySealed, Message: "day is sealed", Date: date}
		}

		at := e.clock.Now()
		next := e.day.Clone()
		if err := fn(&next, at); err != nil {
			return false, err
		}
		next.UpdatedAt = at

		if err := e.store.SaveDay(ctx, date, next); err != nil {
			return false, persistFailed(date, action, err)
		}
		sealChanged := next.Sealed != e.day.Sealed
		e.day = next

		if sealChanged {
			e.recountSealedLocked(ctx)
		}
		e.rescoreLocked()
		e.publishLocked(ctx, date, model.SnapshotDayLog, action, next)
		return true, nil
	})
}

func (e *Engine) mutateSupport(ctx context.Context, date, action string, fn func(*model.SupportLog, time.Time) error) error {
	return e.commit(func() (bool, error) {
		if !e.acceptLocked(date, action) {
			return false, nil
		}
		if e.day.Sealed {
			return false, &CommandError{Code: ErrCodeDaySealed, Message: "day is sealed", Date: date}
		}

		at := e.clock.Now()
		next := e.support.Clone()
		if err := fn(&next, at); err != nil {
			return false, err
		}
		next.UpdatedAt = at

		if err := e.store.SaveSupport(ctx, date, next); err != nil {
			return false, persistFailed(date, action, err)
		}
		e.support = next

		e.rescoreLocked()
		e.publishLocked(ctx, date, model.SnapshotSupportLog, action, next)
		return true, nil
	})
}

// acceptLocked is the stale-write guard.
func (e *Engine) acceptLocked(date, action string) bool {
	if date == e.viewDate {
		return true
	}
	e.logger.Warn("dropping stale write",
		"action", action,
		"date", date,
		"active_date", e.viewDate)
	return false
}

// activateLocked loads date and everything derived from it. State is only
// replaced once every read has succeeded.
func (e *Engine) activateLocked(ctx context.Context, date string) error {
	day, err := e.store.LoadDay(ctx, date)
	if err != nil {
		return fmt.Errorf("activate %s: %w", date, err)
	}
	support, err := e.store.LoadSupport(ctx, date)
	if err != nil {
		return fmt.Errorf("activate %s: %w", date, err)
	}
	proto, err := e.deriveLocked(ctx, date)
	if err != nil {
		return fmt.Errorf("activate %s: %w", date, err)
	}
	sealed, err := e.store.CountSealed(ctx)
	if err != nil {
		return fmt.Errorf("activate %s: %w", date, err)
	}

	e.viewDate = date
	e.day = day
	e.support = support
	e.protocol = proto
	e.sealedDays = sealed
	e.rescoreLocked()

	e.logger.Debug("date activated",
		"date", date,
		"has_protocol", proto != nil,
		"sealed", day.Sealed)
	return nil
}

func (e *Engine) deriveLocked(ctx context.Context, date string) (*model.Protocol, error) {
	if e.plan == nil {
		return nil, nil
	}
	lb, err := e.lookback(ctx, date)
	if err != nil {
		return nil, err
	}
	return protocol.Derive(date, e.plan, lb), nil
}

// lookback loads the support logs of the two dates before date.
func (e *Engine) lookback(ctx context.Context, date string) (protocol.Lookback, error) {
	var lb protocol.Lookback
	targets := []**model.SupportLog{&lb.DMinus1, &lb.DMinus2}
	for i, dst := range targets {
		d, err := clock.AddDays(date, -(i + 1))
		if err != nil {
			return protocol.Lookback{}, nil
		}
		log, err := e.store.LoadSupport(ctx, d)
		if err != nil {
			return protocol.Lookback{}, fmt.Errorf("look-back %s: %w", d, err)
		}
		*dst = &log
	}
	return lb, nil
}

func (e *Engine) rescoreLocked() {
	e.score = scoring.Score(e.protocol, e.day.Meals, e.support, e.day.Sealed)
}

func (e *Engine) recountSealedLocked(ctx context.Context) {
	n, err := e.store.CountSealed(ctx)
	if err != nil {
		e.logger.Warn("sealed day count unavailable", "error", err)
		return
	}
	e.sealedDays = n
}

// publishLocked journals and enqueues an immutable snapshot of a committed
// record. Replication failures never fail the command.
func (e *Engine) publishLocked(ctx context.Context, date, kind, action string, v any) {
	snap, err := model.NewSnapshot(e.ids.Generate(), e.seq.Next(), date, kind, action, v)
	if err != nil {
		e.logger.Warn("snapshot skipped", "date", date, "kind", kind, "error", err)
		return
	}
	if err := e.store.AppendSnapshot(ctx, snap); err != nil {
		e.logger.Warn("snapshot not journaled", "id", snap.ID, "error", err)
	}
	e.outbox.Enqueue(snap)
}

func (e *Engine) stateLocked() State {
	tk := e.clock.Read()
	score := e.score
	score.Breakdown = slices.Clone(e.score.Breakdown)
	return State{
		BiologicalDate: e.bioDate,
		ViewDate:       e.viewDate,
		Pinned:         e.viewDate != e.bioDate,
		Time:           tk.Time,
		Phase:          tk.Phase,
		Protocol:       e.protocol,
		Score:          score,
		ReadOnly:       e.day.Sealed,
		Day:            e.day.Clone(),
		Support:        e.support.Clone(),
		Progress:       scoring.Progress(e.protocol, e.support),
		SealedDays:     e.sealedDays,
	}
}
