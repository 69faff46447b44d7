package scoring

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adherence/internal/model"
	"github.com/roach88/adherence/internal/protocol"
	"github.com/roach88/adherence/internal/testutil"
)

func dayOne(t *testing.T) *model.Protocol {
	t.Helper()
	p := protocol.Derive("2024-01-01", testutil.NewPlan(testutil.PlanStart, 30), protocol.Lookback{})
	require.NotNil(t, p)
	return p
}

func meal(s model.Status) model.MealRecord {
	return model.MealRecord{Status: s}
}

func habits(statuses map[string]model.Status) model.SupportLog {
	l := model.NewSupportLog()
	for id, s := range statuses {
		l.Protocols[id] = model.SupportRecord{Status: s}
	}
	return l
}

func TestScore_NilProtocol(t *testing.T) {
	s := Score(nil, nil, model.NewSupportLog(), true)
	assert.Equal(t, 0, s.Total)
	assert.Empty(t, s.Breakdown)
	assert.Equal(t, model.ScoreVersion, s.Version)
}

func TestScore_EmptyOpenDayIsOptimistic(t *testing.T) {
	s := Score(dayOne(t), map[string]model.MealRecord{}, model.NewSupportLog(), false)
	assert.Equal(t, 100, s.Total)
	assert.Empty(t, s.Breakdown)
}

func TestScore_EmptyFinalDayIsZero(t *testing.T) {
	p := dayOne(t)
	s := Score(p, nil, model.NewSupportLog(), true)

	assert.Equal(t, 0, s.Total)
	require.Len(t, s.Breakdown, len(p.Meals)+len(p.Support))
	for _, b := range s.Breakdown {
		assert.Equal(t, model.ReasonUnlogged, b.Reason, b.ID)
	}
	assert.Equal(t, "lunch", s.Breakdown[0].ID, "largest loss first")
}

func TestScore_EndToEndFirstDay(t *testing.T) {
	p := dayOne(t)
	require.True(t, p.Has(model.SupportCoffee), "no look-back data means coffee is allowed")

	support := habits(map[string]model.Status{
		model.SupportWater:         model.StatusTaken,
		model.SupportGym:           model.StatusCompleted,
		model.SupportWalkingLunch:  model.StatusCompleted,
		model.SupportWalkingDinner: model.StatusCompleted,
		model.SupportPsyllium:      model.StatusTaken,
		model.SupportCoffee:        model.StatusTaken,
	})
	support.Sleep = model.SleepRecord{WakeTime: "06:30", BedTime: "22:30"}
	meals := map[string]model.MealRecord{model.SlotLunch: meal(model.StatusFollowed)}

	s := Score(p, meals, support, false)
	assert.Equal(t, 100, s.Total)
	assert.Empty(t, s.Breakdown)
}

func TestScore_MealSubstitutionLosses(t *testing.T) {
	p := dayOne(t)
	meals := map[string]model.MealRecord{
		model.SlotJuice:  meal(model.StatusPartial),
		model.SlotLunch:  meal(model.StatusDifferent),
		model.SlotDinner: meal(model.StatusSkipped),
	}

	s := Score(p, meals, model.NewSupportLog(), false)
	// earned 5 + 3 + 0 of 60
	assert.Equal(t, 13, s.Total)
	require.Len(t, s.Breakdown, 3)
	assert.Equal(t, model.BreakdownEntry{ID: "lunch", Label: "Lunch", Loss: -27, Reason: "DIFFERENT"}, s.Breakdown[0])
	assert.Equal(t, model.BreakdownEntry{ID: "dinner", Label: "Dinner", Loss: -20, Reason: "SKIPPED"}, s.Breakdown[1])
	assert.Equal(t, model.BreakdownEntry{ID: "juice", Label: "Morning Juice", Loss: -5, Reason: "PARTIAL"}, s.Breakdown[2])
}

func TestScore_UnrecognizedMealStatusEarnsNothing(t *testing.T) {
	s := Score(dayOne(t), map[string]model.MealRecord{model.SlotLunch: meal("BINGE")}, model.NewSupportLog(), false)
	assert.Equal(t, 0, s.Total)
	require.Len(t, s.Breakdown, 1)
	assert.Equal(t, "BINGE", s.Breakdown[0].Reason)
}

func TestScore_HabitFailureReasons(t *testing.T) {
	support := habits(map[string]model.Status{
		model.SupportGym:    model.StatusSkipped,
		model.SupportCoffee: model.StatusViolation,
		model.SupportWater:  model.StatusMissed,
	})
	s := Score(dayOne(t), nil, support, false)

	assert.Equal(t, 0, s.Total)
	reasons := map[string]string{}
	for _, b := range s.Breakdown {
		reasons[b.ID] = b.Reason
	}
	assert.Equal(t, map[string]string{
		"gym":          model.ReasonMissed,
		"black_coffee": model.ReasonViolation,
		"water":        model.ReasonMissed,
	}, reasons)
}

func TestScore_RecordWithoutStatusIsMissed(t *testing.T) {
	p := dayOne(t)
	support := model.NewSupportLog()
	support.Protocols[model.SupportWater] = model.SupportRecord{Metadata: map[string]string{"liters": "1"}}

	for _, final := range []bool{false, true} {
		s := Score(p, nil, support, final)
		i := slices.IndexFunc(s.Breakdown, func(b model.BreakdownEntry) bool { return b.ID == model.SupportWater })
		require.GreaterOrEqual(t, i, 0, "final=%t", final)
		assert.Equal(t, model.ReasonMissed, s.Breakdown[i].Reason)
		assert.Equal(t, -5.0, s.Breakdown[i].Loss)
	}
	assert.Equal(t, 0, Score(p, nil, support, false).Total)
}

func TestScore_WakeAndBedtimeAreIndependent(t *testing.T) {
	p := dayOne(t)
	support := model.NewSupportLog()
	support.Sleep.WakeTime = "06:00"

	open := Score(p, nil, support, false)
	assert.Equal(t, 100, open.Total, "only wake is evaluable")

	final := Score(p, nil, support, true)
	var bed *model.BreakdownEntry
	for i := range final.Breakdown {
		if final.Breakdown[i].ID == model.SupportWake {
			t.Fatal("wake must not be penalized when its time is logged")
		}
		if final.Breakdown[i].ID == model.SupportSleep {
			bed = &final.Breakdown[i]
		}
	}
	require.NotNil(t, bed)
	assert.Equal(t, model.ReasonUnlogged, bed.Reason)
}

func TestScore_UnknownKindIsPending(t *testing.T) {
	p := &model.Protocol{Support: []model.RequirementItem{{ID: "mystery", Kind: model.Kind(99), Weight: 5}}}
	assert.Equal(t, 100, Score(p, nil, model.NewSupportLog(), false).Total)
	assert.Equal(t, 0, Score(p, nil, model.NewSupportLog(), true).Total)
}

func TestScore_EveryKindHasAnEvaluator(t *testing.T) {
	support := model.NewSupportLog()
	support.Sleep = model.SleepRecord{WakeTime: "06:00", BedTime: "22:00"}
	support.Protocols["habit"] = model.SupportRecord{Status: model.StatusTaken}
	meals := map[string]model.MealRecord{"meal": meal(model.StatusFollowed)}

	ids := map[model.Kind]string{model.KindMeal: "meal", model.KindHabit: "habit"}
	for _, k := range model.Kinds {
		o := evaluate(model.RequirementItem{ID: ids[k], Kind: k, Weight: 1}, meals, support)
		assert.False(t, o.pending, k.String())
		assert.Equal(t, 1.0, o.multiplier, k.String())
	}
}

func TestScore_Idempotent(t *testing.T) {
	p := dayOne(t)
	meals := map[string]model.MealRecord{model.SlotLunch: meal(model.StatusDifferent), model.SlotJuice: meal(model.StatusPartial)}
	support := habits(map[string]model.Status{model.SupportGym: model.StatusSkipped, model.SupportWater: model.StatusTaken})

	a, err := json.Marshal(Score(p, meals, support, true))
	require.NoError(t, err)
	b, err := json.Marshal(Score(p, meals, support, true))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestScore_MonotonicSkippedToFollowed(t *testing.T) {
	p := dayOne(t)
	support := habits(map[string]model.Status{model.SupportGym: model.StatusSkipped})

	for _, slot := range model.MealSlots {
		for _, final := range []bool{false, true} {
			before := map[string]model.MealRecord{
				model.SlotJuice: meal(model.StatusPartial),
				slot:            meal(model.StatusSkipped),
			}
			after := map[string]model.MealRecord{
				model.SlotJuice: meal(model.StatusPartial),
				slot:            meal(model.StatusFollowed),
			}
			b := Score(p, before, support, final).Total
			a := Score(p, after, support, final).Total
			assert.GreaterOrEqual(t, a, b, "slot=%s final=%v", slot, final)
		}
	}
}

func TestScore_SealingNeverRewards(t *testing.T) {
	p := dayOne(t)
	meals := map[string]model.MealRecord{model.SlotLunch: meal(model.StatusPartial)}
	support := habits(map[string]model.Status{model.SupportWater: model.StatusTaken})

	open := Score(p, meals, support, false)
	sealed := Score(p, meals, support, true)
	assert.LessOrEqual(t, sealed.Total, open.Total)
}

func TestScore_FullyLoggedDaySealRoundTrip(t *testing.T) {
	p := dayOne(t)
	meals := map[string]model.MealRecord{
		model.SlotJuice:  meal(model.StatusFollowed),
		model.SlotLunch:  meal(model.StatusPartial),
		model.SlotDinner: meal(model.StatusDifferent),
	}
	support := habits(map[string]model.Status{
		model.SupportWater: model.StatusTaken, model.SupportGym: model.StatusSkipped,
		model.SupportWalkingLunch: model.StatusCompleted, model.SupportWalkingDinner: model.StatusViolation,
		model.SupportPsyllium: model.StatusTaken, model.SupportCoffee: model.StatusSkipped,
	})
	support.Sleep = model.SleepRecord{WakeTime: "07:00", BedTime: "23:00"}

	assert.Equal(t, Score(p, meals, support, false), Score(p, meals, support, true))
}

func TestScore_GoldenMixedFinalDay(t *testing.T) {
	p := dayOne(t)
	meals := map[string]model.MealRecord{
		model.SlotJuice: meal(model.StatusPartial),
		model.SlotLunch: meal(model.StatusDifferent),
	}
	support := habits(map[string]model.Status{
		model.SupportWater:        model.StatusTaken,
		model.SupportGym:          model.StatusSkipped,
		model.SupportWalkingLunch: model.StatusViolation,
		model.SupportPsyllium:     model.StatusCompleted,
		model.SupportCoffee:       model.StatusTaken,
	})
	support.Sleep.WakeTime = "06:45"

	out, err := json.MarshalIndent(Score(p, meals, support, true), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "mixed_final_day", out)
}
