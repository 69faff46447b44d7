package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adherence/internal/engine"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]int{"score": 88}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"score": float64(88)}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeInvalidPlan, "total_days must be positive", map[string]int{"line": 2})
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalidPlan, resp.Error.Code)
	assert.Equal(t, "total_days must be positive", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			err := formatter.Error("DAY_SEALED", "day is sealed", "2024-01-01")
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Error [DAY_SEALED]: day is sealed")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: 2024-01-01")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_Emit(t *testing.T) {
	render := func(w io.Writer) { fmt.Fprintln(w, "Day 1 (veg)") }

	text := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "text", Writer: text}).Emit(42, render))
	assert.Equal(t, "Day 1 (veg)\n", text.String())

	js := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "json", Writer: js}).Emit(42, render))
	assert.Equal(t, "{\n  \"status\": \"ok\",\n  \"data\": 42\n}\n", js.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			diag := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:    "json",
				Writer:    out,
				ErrWriter: diag,
				Verbose:   tt.verbose,
			}

			formatter.VerboseLog("Validating %s", "plan.yaml")

			assert.Empty(t, out.String())
			if tt.wantLog {
				assert.Equal(t, "Validating plan.yaml\n", diag.String())
			} else {
				assert.Empty(t, diag.String())
			}
		})
	}
}

func TestOutputFormatter_CommandFailed(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
		wantExit int
	}{
		{
			name:     "rejected",
			err:      &engine.CommandError{Code: engine.ErrCodeUnknownSlot, Message: "unknown slot \"brunch\"", Date: "2024-01-01"},
			wantCode: "UNKNOWN_SLOT",
			wantExit: ExitFailure,
		},
		{
			name:     "persist",
			err:      fmt.Errorf("log meal: %w", &engine.CommandError{Code: engine.ErrCodePersistFailed, Message: "LOG_MEAL could not be saved", Err: errors.New("disk I/O error")}),
			wantCode: "PERSIST_FAILED",
			wantExit: ExitCommandError,
		},
		{
			name:     "plain",
			err:      errors.New("requirements still pending"),
			wantCode: ErrCodeGeneric,
			wantExit: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "json", Writer: buf}

			err := formatter.CommandFailed(tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantExit, GetExitCode(err))
			assert.ErrorIs(t, err, tt.err)

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("wrapped: %w", WrapExitError(ExitCommandError, "open", errors.New("x")))))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	err := WrapExitError(ExitFailure, "invalid plan", errors.New("total_days"))
	assert.Equal(t, "invalid plan: total_days", err.Error())
	assert.Equal(t, "bad flag", NewExitError(ExitCommandError, "bad flag").Error())
}
