package clock

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DayBoundaryHour is the local hour at which a new biological date begins.
const DayBoundaryHour = 3

// DefaultTickInterval is how often Run re-evaluates the clock.
const DefaultTickInterval = time.Minute

// Phase is a coarse part of the day, used to pick a default UI focus.
type Phase string

const (
	PhaseMorning  Phase = "MORNING"  // 05:00-11:59
	PhaseActivity Phase = "ACTIVITY" // 12:00-19:59
	PhaseShutdown Phase = "SHUTDOWN" // 20:00-04:59
)

// Source supplies the current instant.
type Source func() time.Time

// Tick is the set of values derived from one reading of the clock.
type Tick struct {
	Time  string `json:"time"`
	Date  string `json:"date"`
	Phase Phase  `json:"phase"`
}

// Change is a Tick annotated with what moved since the previous tick, so a
// date rollover can be told apart from a plain minute change.
type Change struct {
	Tick
	TimeChanged  bool
	DateChanged  bool
	PhaseChanged bool
}

// Any reports whether anything changed.
func (c Change) Any() bool {
	return c.TimeChanged || c.DateChanged || c.PhaseChanged
}

// Clock reads wall time in a fixed location, optionally pinned to an
// override instant for deterministic runs.
//
// Thread-safety: all methods are safe for concurrent use.
type Clock struct {
	mu     sync.Mutex
	source Source
	loc    *time.Location
	pinned *time.Time
	last   *Tick
}

// Option configures a Clock.
type Option func(*Clock)

// WithSource replaces time.Now as the source of the current instant.
func WithSource(src Source) Option {
	return func(c *Clock) {
		c.source = src
	}
}

// WithLocation sets the location used for local wall time.
// Default: time.Local.
func WithLocation(loc *time.Location) Option {
	return func(c *Clock) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// New creates a Clock reading time.Now in time.Local unless configured.
func New(opts ...Option) *Clock {
	c := &Clock{
		source: time.Now,
		loc:    time.Local,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the clock's location.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current instant in the clock's location.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nowLocked()
}

func (c *Clock) nowLocked() time.Time {
	if c.pinned != nil {
		return *c.pinned
	}
	return c.source().In(c.loc)
}

// SetOverride pins the clock to hh:mm on the current real date. The pinned
// instant is frozen until ClearOverride is called.
func (c *Clock) SetOverride(hhmm string) error {
	h, m, err := ParseHHMM(hhmm)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	wall := c.source().In(c.loc)
	pinned := time.Date(wall.Year(), wall.Month(), wall.Day(), h, m, 0, 0, c.loc)
	c.pinned = &pinned
	return nil
}

// ClearOverride returns the clock to its source.
func (c *Clock) ClearOverride() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pinned = nil
}

// Overridden reports whether an override is active.
func (c *Clock) Overridden() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pinned != nil
}

// CurrentTimeString returns the local time as zero-padded 24h "HH:MM".
func (c *Clock) CurrentTimeString() string {
	return TimeString(c.Now())
}

// BiologicalDate returns the YYYY-MM-DD date the current instant belongs to.
func (c *Clock) BiologicalDate() string {
	return BiologicalDateOf(c.Now())
}

// Phase returns the current day phase.
func (c *Clock) Phase() Phase {
	return PhaseOf(c.Now())
}

// Read derives a Tick without recording it.
func (c *Clock) Read() Tick {
	return tickOf(c.Now())
}

// Tick reads the clock and reports which fields changed since the previous
// call. The first call reports every field as changed.
func (c *Clock) Tick() Change {
	c.mu.Lock()
	defer c.mu.Unlock()

	cur := tickOf(c.nowLocked())
	ch := Change{Tick: cur}
	if c.last == nil {
		ch.TimeChanged, ch.DateChanged, ch.PhaseChanged = true, true, true
	} else {
		ch.TimeChanged = c.last.Time != cur.Time
		ch.DateChanged = c.last.Date != cur.Date
		ch.PhaseChanged = c.last.Phase != cur.Phase
	}
	c.last = &cur
	return ch
}

// Run ticks every interval and hands each change to fn, until ctx is done.
// Ticks with no change are not delivered. Returns ctx.Err().
func (c *Clock) Run(ctx context.Context, interval time.Duration, fn func(Change)) error {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ch := c.Tick(); ch.Any() {
				fn(ch)
			}
		}
	}
}

func tickOf(t time.Time) Tick {
	return Tick{
		Time:  TimeString(t),
		Date:  BiologicalDateOf(t),
		Phase: PhaseOf(t),
	}
}

// TimeString formats t as "HH:MM".
func TimeString(t time.Time) string {
	return t.Format("15:04")
}

// BiologicalDateOf returns the biological date of t in t's own location:
// before DayBoundaryHour the instant belongs to the previous calendar day.
func BiologicalDateOf(t time.Time) string {
	if t.Hour() < DayBoundaryHour {
		t = t.AddDate(0, 0, -1)
	}
	return t.Format(DateLayout)
}

// PhaseOf classifies the local hour of t.
func PhaseOf(t time.Time) Phase {
	h := t.Hour()
	switch {
	case h >= 5 && h < 12:
		return PhaseMorning
	case h >= 12 && h < 20:
		return PhaseActivity
	default:
		return PhaseShutdown
	}
}

// ParseHHMM parses a 24h "HH:MM" string.
func ParseHHMM(s string) (hour, minute int, err error) {
	hs, ms, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(hs)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(ms)
	if err != nil || minute < 0 || minute > 59 || len(ms) != 2 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
