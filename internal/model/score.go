package model

// Breakdown reasons that are not a raw status token.
const (
	ReasonUnlogged  = "UNLOGGED"
	ReasonMissed    = "MISSED"
	ReasonViolation = "VIOLATION"
)

// BreakdownEntry explains one loss of points.
type BreakdownEntry struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Loss   float64 `json:"loss"`
	Reason string  `json:"reason"`
}

// Score is the 0-100 compliance score of a date. It is always derived from
// logs and protocol, never stored as authoritative.
type Score struct {
	Total     int              `json:"total"`
	Breakdown []BreakdownEntry `json:"breakdown"`
	Version   string           `json:"version"`
}
