package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "adherence", cmd.Use)
	assert.Contains(t, cmd.Long, "03:00")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"status"},
		{"log", "meal"},
		{"log", "support"},
		{"log", "sleep"},
		{"log", "context"},
		{"log", "deviations"},
		{"seal"},
		{"unseal"},
		{"stats"},
		{"plan", "validate"},
		{"watch"},
		{"reset"},
		{"journal"},
		{"test"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	for _, name := range []string{"config", "db", "plan", "tz", "mock-time", "date"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	filterFlag := testCmd.Flags().Lookup("filter")
	require.NotNil(t, filterFlag)
}

func TestJournalCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	journalCmd, _, err := cmd.Find([]string{"journal"})
	require.NoError(t, err)

	limitFlag := journalCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "n", limitFlag.Shorthand)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "xml", "plan", "validate", "plan.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestResolveConfig_FlagsOverride(t *testing.T) {
	t.Setenv("ADHERENCE_DB", "env.db")
	t.Setenv("ADHERENCE_PLAN", "env.json")

	cfg, err := resolveConfig(&RootOptions{DBPath: "flag.db", MockTime: "07:30"})
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.DBPath)
	assert.Equal(t, "env.json", cfg.PlanPath)
	assert.Equal(t, "07:30", cfg.MockTime)

	_, err = resolveConfig(&RootOptions{MockTime: "25:00"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mock time")
}
