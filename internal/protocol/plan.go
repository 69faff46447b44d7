package protocol

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/adherence/internal/clock"
	"github.com/roach88/adherence/internal/model"
)

// Format is a plan document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension; anything that is
// not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

type planDocument struct {
	PlanStartDate string                `json:"plan_start_date"`
	TotalDays     int                   `json:"total_days"`
	Days          []model.DayDefinition `json:"days"`
}

// LoadPlan reads, validates and decodes a plan file.
func LoadPlan(path string) (*model.Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load plan: %w", err)
	}
	plan, err := parsePlan(filepath.Base(path), data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", path, err)
	}
	return plan, nil
}

// ParsePlan validates and decodes an in-memory plan document.
func ParsePlan(data []byte, format Format) (*model.Plan, error) {
	return parsePlan("plan."+string(format), data, format)
}

// Validate returns every problem found in a plan document, or nil.
func Validate(data []byte, format Format) []*PlanError {
	_, errs := validate("plan."+string(format), data, format)
	return errs
}

func parsePlan(name string, data []byte, format Format) (*model.Plan, error) {
	jsonDoc, errs := validate(name, data, format)
	if len(errs) > 0 {
		return nil, errs[0]
	}

	var doc planDocument
	if err := json.Unmarshal(jsonDoc, &doc); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	start, err := clock.ParseDate(doc.PlanStartDate)
	if err != nil {
		return nil, &PlanError{Field: "plan_start_date", Message: err.Error()}
	}
	return &model.Plan{
		StartDate: start,
		TotalDays: doc.TotalDays,
		Days:      doc.Days,
	}, nil
}

// validate normalizes the document to JSON, checks it against the CUE
// schema, then applies the checks CUE cannot express cheaply: a real
// calendar start date and unique day indexes.
func validate(name string, data []byte, format Format) ([]byte, []*PlanError) {
	jsonDoc := data
	if format == FormatYAML {
		var generic any
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, []*PlanError{{Field: "document", Message: err.Error()}}
		}
		converted, err := json.Marshal(generic)
		if err != nil {
			return nil, []*PlanError{{Field: "document", Message: err.Error()}}
		}
		jsonDoc = converted
	}

	if errs := validateSchema(name, jsonDoc); len(errs) > 0 {
		return nil, errs
	}

	var doc planDocument
	if err := json.Unmarshal(jsonDoc, &doc); err != nil {
		return nil, []*PlanError{{Field: "document", Message: err.Error()}}
	}

	var errs []*PlanError
	if !clock.ValidDate(doc.PlanStartDate) {
		errs = append(errs, &PlanError{
			Field:   "plan_start_date",
			Message: fmt.Sprintf("%q is not a calendar date", doc.PlanStartDate),
		})
	}
	seen := make(map[int]bool, len(doc.Days))
	for i, d := range doc.Days {
		if seen[d.DayIndex] {
			errs = append(errs, &PlanError{
				Field:   fmt.Sprintf("days.%d.day", i),
				Message: fmt.Sprintf("duplicate day %d", d.DayIndex),
			})
		}
		seen[d.DayIndex] = true
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return jsonDoc, nil
}
