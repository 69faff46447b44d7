package model

// Status is a reported adherence token. The zero value means pending.
type Status string

const (
	StatusPending   Status = ""
	StatusFollowed  Status = "FOLLOWED"
	StatusPartial   Status = "PARTIAL"
	StatusDifferent Status = "DIFFERENT"
	StatusSkipped   Status = "SKIPPED"
	StatusTaken     Status = "TAKEN"
	StatusCompleted Status = "COMPLETED"
	StatusMissed    Status = "MISSED"
	StatusViolation Status = "VIOLATION"
)

// MealStatuses lists the tokens accepted for meal slots.
var MealStatuses = []Status{StatusFollowed, StatusPartial, StatusDifferent, StatusSkipped}

// SupportStatuses lists the tokens accepted for boolean support items.
var SupportStatuses = []Status{StatusTaken, StatusCompleted, StatusMissed, StatusSkipped, StatusViolation}

// IsPending reports whether no status has been recorded.
func (s Status) IsPending() bool {
	return s == StatusPending
}

// IsSuccess reports whether s marks a boolean item as done.
func (s Status) IsSuccess() bool {
	return s == StatusTaken || s == StatusCompleted
}

// Done reports whether s completes a progress task. MISSED does not.
func (s Status) Done() bool {
	switch s {
	case StatusTaken, StatusCompleted, StatusSkipped, StatusViolation:
		return true
	}
	return false
}

// Consumed reports whether s means the item was actually consumed.
// A VIOLATION still counts: the coffee was drunk, just not when allowed.
func (s Status) Consumed() bool {
	return s == StatusTaken || s == StatusViolation
}

// ParseStatus validates s against the allowed set.
func ParseStatus(s string, allowed []Status) (Status, bool) {
	for _, a := range allowed {
		if string(a) == s {
			return a, true
		}
	}
	return StatusPending, false
}
