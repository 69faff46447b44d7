package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/adherence/internal/protocol"
)

// PlanValidationError is one problem in a plan document.
type PlanValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool                  `json:"valid"`
	StartDate string                `json:"start_date,omitempty"`
	EndDate   string                `json:"end_date,omitempty"`
	TotalDays int                   `json:"total_days,omitempty"`
	Errors    []PlanValidationError `json:"errors,omitempty"`
}

// NewPlanCommand creates the plan command group.
func NewPlanCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Work with plan documents",
	}
	cmd.AddCommand(newPlanValidateCommand(opts))
	return cmd
}

func newPlanValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [plan-file]",
		Short: "Validate a plan document against the plan schema",
		Long: `Validate a JSON or YAML plan document without opening the database.

Checks the schema (start date format, total_days > 0, day entries with a
day index and type, juice/lunch/dinner as a string or list), that the
start date is a real calendar date and that no day index repeats.

Defaults to the --plan file when no argument is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := opts.PlanPath
			if len(args) == 1 {
				path = args[0]
			}
			return runPlanValidate(opts, path, cmd)
		},
	}
}

func runPlanValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if path == "" {
		_ = formatter.Error(ErrCodeGeneric, "no plan file given", nil)
		return NewExitError(ExitCommandError, "no plan file given")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to read plan", err)
	}

	format := protocol.FormatFromPath(path)
	formatter.VerboseLog("Validating %s as %s", path, format)

	if errs := protocol.Validate(data, format); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	plan, err := protocol.ParsePlan(data, format)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidPlan, err.Error(), nil)
		return WrapExitError(ExitFailure, "invalid plan", err)
	}

	result := ValidationResult{
		Valid:     true,
		StartDate: plan.StartDate.Format(time.DateOnly),
		EndDate:   plan.EndDate().Format(time.DateOnly),
		TotalDays: plan.TotalDays,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Plan valid: %d days, %s to %s\n",
		result.TotalDays, result.StartDate, result.EndDate)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []*protocol.PlanError) error {
	out := make([]PlanValidationError, 0, len(errs))
	for _, e := range errs {
		line := 0
		if e.Pos.IsValid() {
			line = e.Pos.Line()
		}
		out = append(out, PlanValidationError{Field: e.Field, Message: e.Message, Line: line})
	}

	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: out},
			Error: &CLIError{
				Code:    ErrCodeInvalidPlan,
				Message: out[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(out)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, e := range out {
		if e.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", e.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", e.Field, e.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(out)))
}
