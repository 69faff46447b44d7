package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan is the immutable 30-day protocol document.
type Plan struct {
	// StartDate is day 1 of the plan, normalized to UTC midnight.
	StartDate time.Time
	TotalDays int
	Days      []DayDefinition
}

// DayDefinition describes the meals prescribed for one plan day.
type DayDefinition struct {
	DayIndex int        `json:"day" yaml:"day"`
	DietType string     `json:"type" yaml:"type"`
	Juice    StringList `json:"juice" yaml:"juice"`
	Lunch    StringList `json:"lunch" yaml:"lunch"`
	Dinner   StringList `json:"dinner" yaml:"dinner"`
}

// Day returns the definition for a 1-based day index.
// Plans are allowed to leave gaps; a missing index reports false.
func (p *Plan) Day(index int) (DayDefinition, bool) {
	if p == nil {
		return DayDefinition{}, false
	}
	for _, d := range p.Days {
		if d.DayIndex == index {
			return d, true
		}
	}
	return DayDefinition{}, false
}

// EndDate returns the last covered date (StartDate + TotalDays - 1).
func (p *Plan) EndDate() time.Time {
	return p.StartDate.AddDate(0, 0, p.TotalDays-1)
}

// StringList is a list of strings that also accepts a single scalar when
// decoded, so `juice: "Beet"` and `juice: ["Beet"]` are equivalent.
type StringList []string

// UnmarshalJSON accepts a string, an array of strings, or null.
func (l *StringList) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*l = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = StringList{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("expected string or list of strings: %w", err)
	}
	*l = StringList(many)
	return nil
}

// UnmarshalYAML accepts a scalar or a sequence of scalars.
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{node.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := node.Decode(&many); err != nil {
			return err
		}
		*l = StringList(many)
		return nil
	default:
		return fmt.Errorf("line %d: expected string or list of strings", node.Line)
	}
}

// Items returns a copy that is never nil.
func (l StringList) Items() []string {
	out := make([]string, len(l))
	copy(out, l)
	return out
}
