package protocol

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

// planSchema constrains the on-disk plan document. Unknown fields are
// tolerated so plans can carry notes for other tools.
const planSchema = `
#Meal: null | string | [...string]

#Day: {
	day:     int & >=1
	type:    string & !=""
	juice?:  #Meal
	lunch?:  #Meal
	dinner?: #Meal
	...
}

#Plan: {
	plan_start_date: =~"^[0-9]{4}-[0-9]{2}-[0-9]{2}$"
	total_days:      int & >0
	days: [...#Day]
	...
}
`

// PlanError is a validation error in a plan document, with the CUE source
// position when one is known.
type PlanError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *PlanError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// validateSchema unifies a JSON document with #Plan and returns every
// violation found.
func validateSchema(name string, jsonDoc []byte) []*PlanError {
	ctx := cuecontext.New()

	schema := ctx.CompileString(planSchema, cue.Filename("plan_schema.cue"))
	if err := schema.Err(); err != nil {
		return cueErrors("schema", err)
	}

	doc := ctx.CompileBytes(jsonDoc, cue.Filename(name))
	if err := doc.Err(); err != nil {
		return cueErrors("document", err)
	}

	v := schema.LookupPath(cue.ParsePath("#Plan")).Unify(doc)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return cueErrors("plan", err)
	}
	return nil
}

// cueErrors flattens a CUE error into PlanErrors, keeping the first source
// position of each.
func cueErrors(fallback string, err error) []*PlanError {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return []*PlanError{{Field: fallback, Message: err.Error()}}
	}
	out := make([]*PlanError, 0, len(errs))
	for _, e := range errs {
		pe := &PlanError{Field: fallback, Message: e.Error()}
		if path := e.Path(); len(path) > 0 {
			pe.Field = strings.Join(path, ".")
		}
		if positions := errors.Positions(e); len(positions) > 0 {
			pe.Pos = positions[0]
		}
		out = append(out, pe)
	}
	return out
}
