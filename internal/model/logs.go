package model

import (
	"maps"
	"slices"
	"time"
)

// MealRecord is the logged outcome of one meal slot.
type MealRecord struct {
	Status         Status    `json:"status,omitempty"`
	ActualConsumed []string  `json:"actual_consumed,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	LoggedAt       time.Time `json:"logged_at"`
}

// Pending reports whether the slot has no status yet.
func (r MealRecord) Pending() bool {
	return r.Status.IsPending()
}

// MealUpdate is a partial meal update. Nil fields are left untouched.
type MealUpdate struct {
	Status         *Status
	ActualConsumed []string
	Detail         *string
}

// MergeMeal applies u on top of cur.
func MergeMeal(cur MealRecord, u MealUpdate, at time.Time) MealRecord {
	out := cur
	if u.Status != nil {
		out.Status = *u.Status
	}
	if u.ActualConsumed != nil {
		out.ActualConsumed = slices.Clone(u.ActualConsumed)
	}
	if u.Detail != nil {
		out.Detail = *u.Detail
	}
	out.LoggedAt = at
	return out
}

// SupportRecord is the logged state of a boolean support item.
type SupportRecord struct {
	Status    Status            `json:"status,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// SupportUpdate is a partial support update. Metadata keys are merged.
type SupportUpdate struct {
	Status   *Status
	Metadata map[string]string
}

// MergeSupport applies u on top of cur.
func MergeSupport(cur SupportRecord, u SupportUpdate, at time.Time) SupportRecord {
	out := SupportRecord{
		Status:    cur.Status,
		Metadata:  maps.Clone(cur.Metadata),
		Timestamp: at,
	}
	if u.Status != nil {
		out.Status = *u.Status
	}
	if len(u.Metadata) > 0 {
		if out.Metadata == nil {
			out.Metadata = make(map[string]string, len(u.Metadata))
		}
		maps.Copy(out.Metadata, u.Metadata)
	}
	return out
}

// SleepRecord accumulates the two halves of a biological day's sleep:
// the wake time logged in the morning and the bed time logged at night.
type SleepRecord struct {
	WakeTime    string    `json:"wake_time,omitempty"`
	BedTime     string    `json:"bed_time,omitempty"`
	Hours       *float64  `json:"hours,omitempty"`
	SleepWindow string    `json:"window,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Status      Status    `json:"status,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitzero"`
}

// HasHours reports whether a sleep duration was logged.
func (r SleepRecord) HasHours() bool {
	return r.Hours != nil
}

// SleepUpdate sets any subset of the sleep fields.
type SleepUpdate struct {
	WakeTime    *string
	BedTime     *string
	Hours       *float64
	SleepWindow *string
	Reason      *string
}

// Empty reports whether the update sets nothing.
func (u SleepUpdate) Empty() bool {
	return u.WakeTime == nil && u.BedTime == nil && u.Hours == nil &&
		u.SleepWindow == nil && u.Reason == nil
}

// MergeSleep applies u on top of cur. Setting the wake time never touches the
// bed time and vice versa. Logging a sleep summary (hours, window or reason)
// marks the record TAKEN.
func MergeSleep(cur SleepRecord, u SleepUpdate, at time.Time) SleepRecord {
	out := cur
	if cur.Hours != nil {
		h := *cur.Hours
		out.Hours = &h
	}
	if u.WakeTime != nil {
		out.WakeTime = *u.WakeTime
	}
	if u.BedTime != nil {
		out.BedTime = *u.BedTime
	}
	summary := false
	if u.Hours != nil {
		h := *u.Hours
		out.Hours = &h
		summary = true
	}
	if u.SleepWindow != nil {
		out.SleepWindow = *u.SleepWindow
		summary = true
	}
	if u.Reason != nil {
		out.Reason = *u.Reason
		summary = true
	}
	if summary {
		out.Status = StatusTaken
	}
	out.UpdatedAt = at
	return out
}

// SupportLog holds every support record of one date.
type SupportLog struct {
	Protocols map[string]SupportRecord `json:"protocols"`
	Sleep     SleepRecord              `json:"sleep"`
	UpdatedAt time.Time                `json:"updated_at,omitzero"`
}

// NewSupportLog returns an empty support log.
func NewSupportLog() SupportLog {
	return SupportLog{Protocols: map[string]SupportRecord{}}
}

// Record returns the record for id, if any.
func (l SupportLog) Record(id string) (SupportRecord, bool) {
	r, ok := l.Protocols[id]
	return r, ok
}

// Clone returns a deep copy.
func (l SupportLog) Clone() SupportLog {
	out := l
	out.Protocols = make(map[string]SupportRecord, len(l.Protocols))
	for id, r := range l.Protocols {
		r.Metadata = maps.Clone(r.Metadata)
		out.Protocols[id] = r
	}
	if l.Sleep.Hours != nil {
		h := *l.Sleep.Hours
		out.Sleep.Hours = &h
	}
	return out
}

// DeviationEntry is one major deviation from the protocol (a party, travel,
// an extra meal...).
type DeviationEntry struct {
	Type     string `json:"type" yaml:"type"`
	Quantity string `json:"quantity,omitempty" yaml:"quantity,omitempty"`
	Time     string `json:"time,omitempty" yaml:"time,omitempty"`
	Notes    string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// DayLog is the top-level persisted record of one date.
type DayLog struct {
	Meals map[string]MealRecord `json:"records"`
	// MajorDeviations is replaced wholesale on every save.
	MajorDeviations []DeviationEntry `json:"major_deviations"`
	Context         string           `json:"context,omitempty"`
	Sealed          bool             `json:"sealed"`
	SealedAt        *time.Time       `json:"sealed_at,omitempty"`
	UpdatedAt       time.Time        `json:"updated_at,omitzero"`
}

// NewDayLog returns an empty, open day log.
func NewDayLog() DayLog {
	return DayLog{
		Meals:           map[string]MealRecord{},
		MajorDeviations: []DeviationEntry{},
	}
}

// Meal returns the record for slot; a missing slot is pending.
func (d DayLog) Meal(slot string) MealRecord {
	return d.Meals[slot]
}

// Clone returns a deep copy.
func (d DayLog) Clone() DayLog {
	out := d
	out.Meals = make(map[string]MealRecord, len(d.Meals))
	for slot, r := range d.Meals {
		r.ActualConsumed = slices.Clone(r.ActualConsumed)
		out.Meals[slot] = r
	}
	out.MajorDeviations = slices.Clone(d.MajorDeviations)
	if out.MajorDeviations == nil {
		out.MajorDeviations = []DeviationEntry{}
	}
	if d.SealedAt != nil {
		t := *d.SealedAt
		out.SealedAt = &t
	}
	return out
}
