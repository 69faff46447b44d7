package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/adherence/internal/engine"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed: %s: expected %s, got %s", e.Type, e.Expected, e.Actual)
}

func assertBreakdownContains(st engine.State, a Assertion) error {
	var seen []string
	for _, b := range st.Score.Breakdown {
		if b.ID == a.ID && (a.Reason == "" || b.Reason == a.Reason) {
			return nil
		}
		seen = append(seen, b.ID+":"+b.Reason)
	}
	want := a.ID
	if a.Reason != "" {
		want += ":" + a.Reason
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: "breakdown entry " + want,
		Actual:   "[" + strings.Join(seen, " ") + "]",
	}
}

func assertProtocol(st engine.State, a Assertion, want bool) error {
	has := st.Protocol != nil && st.Protocol.Has(a.ID)
	if has == want {
		return nil
	}
	return &AssertionError{
		Type:     a.Type,
		Expected: fmt.Sprintf("requirement %s present=%t", a.ID, want),
		Actual:   fmt.Sprintf("present=%t", has),
	}
}

func assertInt(typ string, want, got int) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprint(want),
		Actual:   fmt.Sprint(got),
	}
}

// EvaluateAssertions evaluates all assertions against the final state.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(st engine.State, assertions []Assertion) []string {
	var errs []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertScoreTotal:
			err = assertInt(a.Type, *a.Value, st.Score.Total)
		case AssertProgress:
			err = assertInt(a.Type, *a.Value, st.Progress)
		case AssertBreakdownContains:
			err = assertBreakdownContains(st, a)
		case AssertProtocolHas:
			err = assertProtocol(st, a, true)
		case AssertProtocolLacks:
			err = assertProtocol(st, a, false)
		case AssertReadOnly:
			if st.ReadOnly != *a.Expect {
				err = &AssertionError{
					Type:     a.Type,
					Expected: fmt.Sprint(*a.Expect),
					Actual:   fmt.Sprint(st.ReadOnly),
				}
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}

	return errs
}
