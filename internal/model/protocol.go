package model

import "fmt"

// Meal slot ids.
const (
	SlotJuice  = "juice"
	SlotLunch  = "lunch"
	SlotDinner = "dinner"
)

// Support item ids. SupportWake and SupportSleep are both backed by the
// single sleep record (wake time and bed time respectively).
const (
	SupportWake          = "wake"
	SupportWater         = "water"
	SupportGym           = "gym"
	SupportWalkingLunch  = "walking_lunch"
	SupportWalkingDinner = "walking_dinner"
	SupportPsyllium      = "psyllium"
	SupportSleep         = "sleep"
	SupportCoffee        = "black_coffee"
)

// MealSlots lists the meal slot ids in display order.
var MealSlots = []string{SlotJuice, SlotLunch, SlotDinner}

// Kind selects the evaluator used to decide whether a requirement is met.
type Kind uint8

const (
	// KindMeal items are resolved through the substitution table.
	KindMeal Kind = iota + 1
	// KindWake succeeds when the sleep record carries a wake time.
	KindWake
	// KindBedtime succeeds when the sleep record carries a bed time.
	KindBedtime
	// KindHabit succeeds on TAKEN or COMPLETED in its own support record.
	KindHabit
)

// Kinds lists every requirement kind.
var Kinds = []Kind{KindMeal, KindWake, KindBedtime, KindHabit}

func (k Kind) String() string {
	switch k {
	case KindMeal:
		return "meal"
	case KindWake:
		return "wake"
	case KindBedtime:
		return "bedtime"
	case KindHabit:
		return "habit"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Display returns the coarse kind shown to rendering code: "meal" or "boolean".
func (k Kind) Display() string {
	if k == KindMeal {
		return "meal"
	}
	return "boolean"
}

// MarshalText renders the coarse display kind; the finer kind stays
// internal to the reducer.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.Display()), nil
}

// RequirementItem is one weighted requirement of a protocol.
type RequirementItem struct {
	ID            string   `json:"id"`
	Label         string   `json:"label"`
	Kind          Kind     `json:"kind"`
	ExpectedItems []string `json:"expected_items,omitempty"`
	Weight        int      `json:"weight"`
}

// Protocol is the derived set of requirements for one date.
type Protocol struct {
	Date     string            `json:"date"`
	DayIndex int               `json:"day_index"`
	DietType string            `json:"diet_type"`
	Meals    []RequirementItem `json:"meals"`
	Support  []RequirementItem `json:"support"`
}

// Has reports whether an item with the given id is required.
func (p *Protocol) Has(id string) bool {
	_, ok := p.Item(id)
	return ok
}

// Item looks up a requirement by id across meals and support.
func (p *Protocol) Item(id string) (RequirementItem, bool) {
	if p == nil {
		return RequirementItem{}, false
	}
	for _, it := range p.Meals {
		if it.ID == id {
			return it, true
		}
	}
	for _, it := range p.Support {
		if it.ID == id {
			return it, true
		}
	}
	return RequirementItem{}, false
}

// TotalWeight sums the weight of every item.
func (p *Protocol) TotalWeight() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, it := range p.Meals {
		total += it.Weight
	}
	for _, it := range p.Support {
		total += it.Weight
	}
	return total
}
