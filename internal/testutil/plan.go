package testutil

import (
	"time"

	"github.com/roach88/adherence/internal/model"
)

// PlanStart is the start date used by NewPlan fixtures.
var PlanStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewPlan builds a plan of totalDays days starting at start. Day 1 is a "veg"
// day with lunch Dal + Rice; the rest alternate "fish" and "chicken".
func NewPlan(start time.Time, totalDays int) *model.Plan {
	p := &model.Plan{StartDate: start, TotalDays: totalDays}
	for i := 1; i <= totalDays; i++ {
		d := model.DayDefinition{
			DayIndex: i,
			DietType: "fish",
			Juice:    model.StringList{"Beet Carrot"},
			Lunch:    model.StringList{"Quinoa", "Greens"},
			Dinner:   model.StringList{"Soup"},
		}
		switch {
		case i == 1:
			d.DietType = "veg"
			d.Lunch = model.StringList{"Dal", "Rice"}
		case i%2 == 1:
			d.DietType = "chicken"
		}
		p.Days = append(p.Days, d)
	}
	return p
}

// PlanJSON is a three-day plan document in the on-disk JSON format.
const PlanJSON = `{
  "plan_start_date": "2024-01-01",
  "total_days": 3,
  "days": [
    {"day": 1, "type": "veg", "juice": "Beet Carrot", "lunch": ["Dal", "Rice"], "dinner": ["Soup"]},
    {"day": 2, "type": "fish", "juice": ["Amla", "Ginger"], "lunch": ["Fish", "Rice"], "dinner": ["Salad"]},
    {"day": 3, "type": "chicken", "juice": "Beet Carrot", "lunch": ["Chicken"], "dinner": ["Soup"]}
  ]
}`
