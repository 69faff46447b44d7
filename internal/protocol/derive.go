package protocol

import (
	"time"

	"github.com/roach88/adherence/internal/clock"
	"github.com/roach88/adherence/internal/model"
)

// Lookback carries the support logs of the two dates preceding the derived
// date. A nil log means no data for that date.
type Lookback struct {
	DMinus1 *model.SupportLog
	DMinus2 *model.SupportLog
}

type itemSpec struct {
	id     string
	label  string
	kind   model.Kind
	weight int
}

var mealItems = []itemSpec{
	{model.SlotJuice, "Morning Juice", model.KindMeal, 10},
	{model.SlotLunch, "Lunch", model.KindMeal, 30},
	{model.SlotDinner, "Dinner", model.KindMeal, 20},
}

var supportItems = []itemSpec{
	{model.SupportWake, "Wake Up", model.KindWake, 5},
	{model.SupportWater, "Hydration", model.KindHabit, 5},
	{model.SupportGym, "Gym / Activity", model.KindHabit, 10},
	{model.SupportWalkingLunch, "Post-Lunch Walk", model.KindHabit, 5},
	{model.SupportWalkingDinner, "Post-Dinner Walk", model.KindHabit, 5},
	{model.SupportPsyllium, "Psyllium Husk", model.KindHabit, 5},
	{model.SupportSleep, "Shutdown / Sleep", model.KindBedtime, 5},
}

var coffeeItem = itemSpec{model.SupportCoffee, "Black Coffee", model.KindHabit, 5}

// Weight returns the fixed weight of a requirement id.
func Weight(id string) (int, bool) {
	for _, specs := range [][]itemSpec{mealItems, supportItems, {coffeeItem}} {
		for _, s := range specs {
			if s.id == id {
				return s.weight, true
			}
		}
	}
	return 0, false
}

// Derive returns the protocol for date (YYYY-MM-DD), or nil when the plan is
// missing, the date is malformed, or it falls outside
// [StartDate, StartDate+TotalDays-1].
func Derive(date string, plan *model.Plan, lb Lookback) *model.Protocol {
	if plan == nil || plan.TotalDays <= 0 {
		return nil
	}
	d, err := clock.ParseDate(date)
	if err != nil {
		return nil
	}
	dayIndex := DayIndex(plan, d)
	if dayIndex < 1 || dayIndex > plan.TotalDays {
		return nil
	}
	def, ok := plan.Day(dayIndex)
	if !ok {
		return nil
	}

	expected := map[string][]string{
		model.SlotJuice:  def.Juice.Items(),
		model.SlotLunch:  def.Lunch.Items(),
		model.SlotDinner: def.Dinner.Items(),
	}
	meals := make([]model.RequirementItem, 0, len(mealItems))
	for _, s := range mealItems {
		it := s.item()
		it.ExpectedItems = expected[s.id]
		meals = append(meals, it)
	}

	support := make([]model.RequirementItem, 0, len(supportItems)+1)
	for _, s := range supportItems {
		support = append(support, s.item())
	}
	if CoffeeAllowed(lb.DMinus1, lb.DMinus2) {
		support = append(support, coffeeItem.item())
	}

	return &model.Protocol{
		Date:     date,
		DayIndex: dayIndex,
		DietType: def.DietType,
		Meals:    meals,
		Support:  support,
	}
}

// DayIndex returns the 1-based plan day of d. Values outside 1..TotalDays
// mean d is not covered by the plan.
func DayIndex(plan *model.Plan, d time.Time) int {
	return clock.DaysBetween(plan.StartDate, d) + 1
}

// CoffeeAllowed implements the one-in-three-days cooldown: coffee is allowed
// on D only if neither D-1 nor D-2 shows it TAKEN or VIOLATION.
func CoffeeAllowed(dMinus1, dMinus2 *model.SupportLog) bool {
	return !CoffeeTaken(dMinus1) && !CoffeeTaken(dMinus2)
}

// CoffeeTaken reports whether log records coffee as consumed.
func CoffeeTaken(log *model.SupportLog) bool {
	if log == nil {
		return false
	}
	r, ok := log.Record(model.SupportCoffee)
	return ok && r.Status.Consumed()
}

func (s itemSpec) item() model.RequirementItem {
	return model.RequirementItem{
		ID:     s.id,
		Label:  s.label,
		Kind:   s.kind,
		Weight: s.weight,
	}
}
