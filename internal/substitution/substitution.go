// Package substitution maps a reported adherence status to the fraction of a
// requirement's weight it earns. The table in this file is the compliance
// contract; scoring never interprets status tokens on its own.
package substitution

import "github.com/roach88/adherence/internal/model"

// Semantic is the meaning of a status independent of its UI token.
type Semantic string

const (
	SemanticFollowed    Semantic = "followed"
	SemanticSubstituted Semantic = "substituted"
	SemanticSkipped     Semantic = "skipped"
	SemanticUnknown     Semantic = "unknown"
)

// Equivalence grades how close the logged outcome is to the prescription.
type Equivalence string

const (
	EquivalenceFull    Equivalence = "full"
	EquivalencePartial Equivalence = "partial"
	EquivalenceLow     Equivalence = "low"
	EquivalenceNone    Equivalence = "none"
)

// Resolution is the resolved meaning of one status.
type Resolution struct {
	Status      model.Status
	Semantic    Semantic
	Equivalence Equivalence
	Multiplier  float64
}

var table = map[model.Status]Resolution{
	model.StatusFollowed:  {Semantic: SemanticFollowed, Equivalence: EquivalenceFull, Multiplier: 1.0},
	model.StatusPartial:   {Semantic: SemanticSubstituted, Equivalence: EquivalencePartial, Multiplier: 0.5},
	model.StatusDifferent: {Semantic: SemanticSubstituted, Equivalence: EquivalenceLow, Multiplier: 0.1},
	model.StatusSkipped:   {Semantic: SemanticSkipped, Equivalence: EquivalenceNone, Multiplier: 0.0},
	model.StatusTaken:     {Semantic: SemanticFollowed, Equivalence: EquivalenceFull, Multiplier: 1.0},
	model.StatusCompleted: {Semantic: SemanticFollowed, Equivalence: EquivalenceFull, Multiplier: 1.0},
	model.StatusViolation: {Semantic: SemanticSubstituted, Equivalence: EquivalenceLow, Multiplier: 0.0},
}

// Resolve returns the resolution for status. Unrecognized tokens earn
// nothing. detail is free text kept with the record; it does not affect the
// result.
func Resolve(status model.Status, detail string) Resolution {
	r, ok := table[status]
	if !ok {
		return Resolution{Status: status, Semantic: SemanticUnknown, Equivalence: EquivalenceNone}
	}
	r.Status = status
	return r
}

// Multiplier is shorthand for Resolve(status, "").Multiplier.
func Multiplier(status model.Status) float64 {
	return Resolve(status, "").Multiplier
}
