package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/adherence/internal/clock"
	"github.com/roach88/adherence/internal/model"
	"github.com/roach88/adherence/internal/protocol"
)

// Scenario defines an adherence scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Now is the RFC 3339 instant the clock starts at.
	Now string `yaml:"now"`

	// Timezone is the IANA zone of the clock. Default: UTC.
	Timezone string `yaml:"timezone,omitempty"`

	// Plan is an inline plan document. Exclusive with PlanFile.
	Plan yaml.Node `yaml:"plan,omitempty"`

	// PlanFile is a plan document path, relative to the scenario file.
	PlanFile string `yaml:"plan_file,omitempty"`

	// Steps are replayed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one engine command.
type Step struct {
	// Command is one of the names in Commands().
	Command string `yaml:"command"`

	// Date targets the command. Default: the current view date.
	Date string `yaml:"date,omitempty"`

	// At moves the clock to this RFC 3339 instant and ticks before the
	// command runs.
	At string `yaml:"at,omitempty"`

	// Args are decoded into the command's argument struct.
	Args yaml.Node `yaml:"args,omitempty"`

	// ExpectError is the CommandError code the step must fail with.
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Assertion validates the final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "score_total": Score total equals Value
	// - "breakdown_contains": a breakdown entry with ID (and Reason, if set)
	// - "protocol_has" / "protocol_lacks": requirement ID presence
	// - "read_only": read-only flag equals Expect
	// - "progress": progress percentage equals Value
	Type string `yaml:"type"`

	ID     string `yaml:"id,omitempty"`
	Reason string `yaml:"reason,omitempty"`
	Value  *int   `yaml:"value,omitempty"`
	Expect *bool  `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertScoreTotal        = "score_total"
	AssertBreakdownContains = "breakdown_contains"
	AssertProtocolHas       = "protocol_has"
	AssertProtocolLacks     = "protocol_lacks"
	AssertReadOnly          = "read_only"
	AssertProgress          = "progress"
)

// LoadScenario reads and parses a scenario YAML file. A plan_file is
// resolved relative to the scenario's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving plan_file against basePath.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	// Reject unknown fields (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.PlanFile != "" && !filepath.IsAbs(scenario.PlanFile) && basePath != "" {
		scenario.PlanFile = filepath.Join(basePath, scenario.PlanFile)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadPlan returns the scenario's plan, inline or from PlanFile.
func (s *Scenario) LoadPlan() (*model.Plan, error) {
	if s.PlanFile != "" {
		return protocol.LoadPlan(s.PlanFile)
	}
	data, err := yaml.Marshal(&s.Plan)
	if err != nil {
		return nil, fmt.Errorf("encode inline plan: %w", err)
	}
	return protocol.ParsePlan(data, protocol.FormatYAML)
}

// Location resolves Timezone.
func (s *Scenario) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(s.Timezone)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if _, err := time.Parse(time.RFC3339, s.Now); err != nil {
		return fmt.Errorf("now must be an RFC 3339 instant: %w", err)
	}

	if _, err := s.Location(); err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	hasInline := s.Plan.Kind != 0
	switch {
	case hasInline && s.PlanFile != "":
		return fmt.Errorf("plan and plan_file are mutually exclusive")
	case !hasInline && s.PlanFile == "":
		return fmt.Errorf("plan or plan_file is required")
	case s.PlanFile != "":
		if _, err := os.Stat(s.PlanFile); os.IsNotExist(err) {
			return fmt.Errorf("plan file not found: %s", s.PlanFile)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Command == "" {
			return fmt.Errorf("steps[%d]: command is required", i)
		}
		if _, ok := commands[step.Command]; !ok {
			return fmt.Errorf("steps[%d]: unknown command %q", i, step.Command)
		}
		if step.Date != "" && !clock.ValidDate(step.Date) {
			return fmt.Errorf("steps[%d]: date %q is not YYYY-MM-DD", i, step.Date)
		}
		if step.At != "" {
			if _, err := time.Parse(time.RFC3339, step.At); err != nil {
				return fmt.Errorf("steps[%d]: at must be an RFC 3339 instant: %w", i, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertScoreTotal, AssertProgress:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for %s", index, a.Type)
		}
	case AssertBreakdownContains, AssertProtocolHas, AssertProtocolLacks:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for %s", index, a.Type)
		}
		if _, ok := protocol.Weight(a.ID); !ok {
			return fmt.Errorf("assertions[%d]: unknown requirement id %q", index, a.ID)
		}
	case AssertReadOnly:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for read_only", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
