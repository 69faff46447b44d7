package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/adherence/internal/engine"
	"github.com/roach88/adherence/internal/model"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func sampleState() engine.State {
	return engine.State{
		Protocol: &model.Protocol{
			Support: []model.RequirementItem{{ID: model.SupportWater, Kind: model.KindHabit, Weight: 5}},
		},
		Score: model.Score{
			Total: 80,
			Breakdown: []model.BreakdownEntry{
				{ID: "lunch", Label: "Lunch", Loss: -15, Reason: "PARTIAL"},
			},
		},
		Progress: 50,
	}
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleState(), []Assertion{
		{Type: AssertScoreTotal, Value: intPtr(80)},
		{Type: AssertProgress, Value: intPtr(50)},
		{Type: AssertBreakdownContains, ID: "lunch"},
		{Type: AssertBreakdownContains, ID: "lunch", Reason: "PARTIAL"},
		{Type: AssertProtocolHas, ID: "water"},
		{Type: AssertProtocolLacks, ID: "black_coffee"},
		{Type: AssertReadOnly, Expect: boolPtr(false)},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	errs := EvaluateAssertions(sampleState(), []Assertion{
		{Type: AssertScoreTotal, Value: intPtr(100)},
		{Type: AssertBreakdownContains, ID: "lunch", Reason: "SKIPPED"},
		{Type: AssertProtocolHas, ID: "black_coffee"},
		{Type: AssertReadOnly, Expect: boolPtr(true)},
	})
	if assert.Len(t, errs, 4) {
		assert.Contains(t, errs[0], "expected 100, got 80")
		assert.Contains(t, errs[1], "lunch:PARTIAL")
		assert.Contains(t, errs[2], "present=false")
		assert.Contains(t, errs[3], "read_only")
	}
}

func TestEvaluateAssertions_NilProtocol(t *testing.T) {
	errs := EvaluateAssertions(engine.State{}, []Assertion{
		{Type: AssertProtocolLacks, ID: "water"},
	})
	assert.Empty(t, errs)
}

func TestFormatLoss(t *testing.T) {
	assert.Equal(t, "lunch DIFFERENT -27", formatLoss("lunch", "DIFFERENT", -27))
	assert.Equal(t, "juice PARTIAL -2.5", formatLoss("juice", "PARTIAL", -2.5))
}
