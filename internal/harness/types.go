package harness

import (
	"fmt"

	"github.com/roach88/adherence/internal/engine"
)

// TraceEvent records the engine state right after one step.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Command string `json:"command"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	// Error is the command error code, if the step failed.
	Error    string   `json:"error,omitempty"`
	Score    int      `json:"score"`
	Losses   []string `json:"losses"`
	ReadOnly bool     `json:"read_only"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step and assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the engine state after the last step.
	Final engine.State `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a trace event built from st.
func (r *Result) AddStep(command, date, errCode string, st engine.State) {
	losses := make([]string, 0, len(st.Score.Breakdown))
	for _, b := range st.Score.Breakdown {
		losses = append(losses, formatLoss(b.ID, b.Reason, b.Loss))
	}
	r.Trace = append(r.Trace, TraceEvent{
		Seq:      int64(len(r.Trace) + 1),
		Command:  command,
		Date:     date,
		Time:     st.Time,
		Error:    errCode,
		Score:    st.Score.Total,
		Losses:   losses,
		ReadOnly: st.ReadOnly,
	})
}

// formatLoss renders a breakdown entry as "juice PARTIAL -5".
func formatLoss(id, reason string, loss float64) string {
	return fmt.Sprintf("%s %s %g", id, reason, loss)
}
