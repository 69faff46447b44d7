package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adherence/internal/model"
	"github.com/roach88/adherence/internal/testutil"
)

func coffeeLog(status model.Status) *model.SupportLog {
	l := model.NewSupportLog()
	l.Protocols[model.SupportCoffee] = model.SupportRecord{Status: status}
	return &l
}

func ids(items []model.RequirementItem) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestDerive_OutOfRangeIsNil(t *testing.T) {
	plan := testutil.NewPlan(testutil.PlanStart, 30)

	assert.Nil(t, Derive("2023-12-31", plan, Lookback{}))
	assert.Nil(t, Derive("2024-01-31", plan, Lookback{}))
	assert.Nil(t, Derive("2025-06-01", plan, Lookback{}))
}

func TestDerive_FirstAndLastDay(t *testing.T) {
	plan := testutil.NewPlan(testutil.PlanStart, 30)

	first := Derive("2024-01-01", plan, Lookback{})
	require.NotNil(t, first)
	assert.Equal(t, 1, first.DayIndex)
	assert.Equal(t, "veg", first.DietType)

	last := Derive("2024-01-30", plan, Lookback{})
	require.NotNil(t, last)
	assert.Equal(t, 30, last.DayIndex)
}

func TestDerive_NilPlanAndBadDate(t *testing.T) {
	assert.Nil(t, Derive("2024-01-01", nil, Lookback{}))
	assert.Nil(t, Derive("not-a-date", testutil.NewPlan(testutil.PlanStart, 30), Lookback{}))
}

func TestDerive_MissingDayDefinitionIsNil(t *testing.T) {
	plan := testutil.NewPlan(testutil.PlanStart, 3)
	plan.Days = plan.Days[:2]

	assert.NotNil(t, Derive("2024-01-02", plan, Lookback{}))
	assert.Nil(t, Derive("2024-01-03", plan, Lookback{}))
}

func TestDerive_MealItems(t *testing.T) {
	p := Derive("2024-01-01", testutil.NewPlan(testutil.PlanStart, 30), Lookback{})
	require.NotNil(t, p)

	require.Equal(t, []string{"juice", "lunch", "dinner"}, ids(p.Meals))
	assert.Equal(t, []string{"Beet Carrot"}, p.Meals[0].ExpectedItems, "scalar juice becomes a one-element list")
	assert.Equal(t, []string{"Dal", "Rice"}, p.Meals[1].ExpectedItems)
	assert.Equal(t, 10, p.Meals[0].Weight)
	assert.Equal(t, 30, p.Meals[1].Weight)
	assert.Equal(t, 20, p.Meals[2].Weight)
	for _, m := range p.Meals {
		assert.Equal(t, model.KindMeal, m.Kind)
	}
}

func TestDerive_SupportItemsAndWeights(t *testing.T) {
	p := Derive("2024-01-01", testutil.NewPlan(testutil.PlanStart, 30), Lookback{})
	require.NotNil(t, p)

	assert.Equal(t, []string{
		"wake", "water", "gym", "walking_lunch", "walking_dinner", "psyllium", "sleep", "black_coffee",
	}, ids(p.Support))

	want := map[string]int{"gym": 10}
	for _, it := range p.Support {
		w, ok := want[it.ID]
		if !ok {
			w = 5
		}
		assert.Equal(t, w, it.Weight, it.ID)
	}
	wake, _ := p.Item("wake")
	assert.Equal(t, model.KindWake, wake.Kind)
	sleep, _ := p.Item("sleep")
	assert.Equal(t, model.KindBedtime, sleep.Kind)
	assert.Equal(t, 105, p.TotalWeight())
}

func TestDerive_CoffeeCooldown(t *testing.T) {
	plan := testutil.NewPlan(testutil.PlanStart, 30)

	// Coffee TAKEN on D = 2024-01-05.
	taken := coffeeLog(model.StatusTaken)

	d1 := Derive("2024-01-06", plan, Lookback{DMinus1: taken})
	d2 := Derive("2024-01-07", plan, Lookback{DMinus1: nil, DMinus2: taken})
	d3 := Derive("2024-01-08", plan, Lookback{})

	assert.False(t, d1.Has(model.SupportCoffee))
	assert.False(t, d2.Has(model.SupportCoffee))
	assert.True(t, d3.Has(model.SupportCoffee))
}

func TestDerive_CoffeeViolationCountsAsTaken(t *testing.T) {
	p := Derive("2024-01-03", testutil.NewPlan(testutil.PlanStart, 30), Lookback{DMinus2: coffeeLog(model.StatusViolation)})
	assert.False(t, p.Has(model.SupportCoffee))
}

func TestDerive_CoffeeSkippedDoesNotTriggerCooldown(t *testing.T) {
	p := Derive("2024-01-03", testutil.NewPlan(testutil.PlanStart, 30), Lookback{DMinus1: coffeeLog(model.StatusSkipped)})
	assert.True(t, p.Has(model.SupportCoffee))
}

func TestDerive_WeightNeverDependsOnLookback(t *testing.T) {
	plan := testutil.NewPlan(testutil.PlanStart, 30)
	with := Derive("2024-01-10", plan, Lookback{})
	without := Derive("2024-01-10", plan, Lookback{DMinus1: coffeeLog(model.StatusTaken)})

	for _, it := range without.Support {
		other, ok := with.Item(it.ID)
		require.True(t, ok)
		assert.Equal(t, other.Weight, it.Weight)
	}
	assert.Equal(t, len(with.Support)-1, len(without.Support))
}

func TestWeight(t *testing.T) {
	w, ok := Weight("lunch")
	assert.True(t, ok)
	assert.Equal(t, 30, w)

	w, ok = Weight("black_coffee")
	assert.True(t, ok)
	assert.Equal(t, 5, w)

	_, ok = Weight("espresso")
	assert.False(t, ok)
}
