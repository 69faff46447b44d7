// Package scoring reduces a date's logs against its protocol into the 0-100
// Deviation-Weighted Compliance Score and an explainable breakdown.
//
// Score is pure and total: identical inputs always produce identical output
// and it never fails or panics.
package scoring

import (
	"math"
	"sort"

	"github.com/roach88/adherence/internal/model"
	"github.com/roach88/adherence/internal/substitution"
)

// outcome is the evaluation of one requirement against the logs.
type outcome struct {
	pending bool
	// multiplier is the earned fraction of the weight, in [0,1].
	multiplier float64
	// reason labels a loss; empty when nothing was lost.
	reason string
}

// Score computes the score of protocol given the meal records (by slot) and
// support log. When final is false, pending items are left out entirely; when
// true they count as fully lost with reason UNLOGGED.
//
// A nil protocol scores 0 with an empty breakdown. When nothing is evaluable
// yet the score is 100: an untouched day never reads as failing.
func Score(p *model.Protocol, meals map[string]model.MealRecord, support model.SupportLog, final bool) model.Score {
	if p == nil {
		return model.Score{Total: 0, Breakdown: []model.BreakdownEntry{}, Version: model.ScoreVersion}
	}

	var totalWeight, earnedWeight float64
	breakdown := []model.BreakdownEntry{}

	items := make([]model.RequirementItem, 0, len(p.Meals)+len(p.Support))
	items = append(items, p.Meals...)
	items = append(items, p.Support...)

	for _, it := range items {
		o := evaluate(it, meals, support)
		weight := float64(it.Weight)

		if o.pending {
			if final {
				totalWeight += weight
				breakdown = append(breakdown, model.BreakdownEntry{
					ID:     it.ID,
					Label:  it.Label,
					Loss:   -weight,
					Reason: model.ReasonUnlogged,
				})
			}
			continue
		}

		earned := weight * o.multiplier
		totalWeight += weight
		earnedWeight += earned
		if o.multiplier < 1.0 {
			breakdown = append(breakdown, model.BreakdownEntry{
				ID:     it.ID,
				Label:  it.Label,
				Loss:   roundLoss(earned - weight),
				Reason: o.reason,
			})
		}
	}

	total := 100
	if totalWeight > 0 {
		total = int(math.Round(earnedWeight / totalWeight * 100))
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Loss < breakdown[j].Loss
	})

	return model.Score{Total: total, Breakdown: breakdown, Version: model.ScoreVersion}
}

// evaluate dispatches on the requirement kind. Unknown kinds are treated as
// pending so a newer protocol never crashes an older reducer.
func evaluate(it model.RequirementItem, meals map[string]model.MealRecord, support model.SupportLog) outcome {
	switch it.Kind {
	case model.KindMeal:
		return evaluateMeal(meals[it.ID])
	case model.KindWake:
		return evaluatePresence(support.Sleep.WakeTime)
	case model.KindBedtime:
		return evaluatePresence(support.Sleep.BedTime)
	case model.KindHabit:
		r, ok := support.Record(it.ID)
		if !ok {
			return outcome{pending: true}
		}
		if r.Status.IsPending() {
			return outcome{reason: model.ReasonMissed}
		}
		return evaluateHabit(r.Status)
	default:
		return outcome{pending: true}
	}
}

func evaluateMeal(r model.MealRecord) outcome {
	if r.Pending() {
		return outcome{pending: true}
	}
	return outcome{
		multiplier: substitution.Multiplier(r.Status),
		reason:     string(r.Status),
	}
}

// evaluatePresence covers the two halves of the sleep record: a logged time
// is success, no time is pending. There is no explicit failure state.
func evaluatePresence(value string) outcome {
	if value == "" {
		return outcome{pending: true}
	}
	return outcome{multiplier: 1}
}

func evaluateHabit(status model.Status) outcome {
	switch {
	case status.IsPending():
		return outcome{pending: true}
	case status.IsSuccess():
		return outcome{multiplier: 1}
	case status == model.StatusViolation:
		return outcome{reason: model.ReasonViolation}
	default:
		return outcome{reason: model.ReasonMissed}
	}
}

// roundLoss trims float noise such as 3.0000000000000004 - 30.
func roundLoss(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}
