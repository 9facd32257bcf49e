package cli_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/internal/cli"
)

func testInfo() cli.BuildInfo {
	return cli.BuildInfo{
		Version: "test",
		Commit:  "test",
		Date:    "test",
	}
}

func TestNewRootCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	require.NotNil(t, cmd)

	assert.Equal(t, "textsheets", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestRootCommandHasSubcommands(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, name := range []string{"eval", "apply", "functions", "check", "init", "serve", "version"} {
		subCmd, _, err := cmd.Find([]string{name})
		if !assert.NoError(t, err, name) {
			continue
		}
		assert.Equal(t, name, subCmd.Name())
	}
}

func TestEvalCommandFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	evalCmd, _, err := cmd.Find([]string{"eval"})
	require.NoError(t, err)

	for _, flagName := range []string{
		"format", "output", "jobs", "max-lookup-depth", "show-hidden",
		"include", "exclude", "sort", "desc", "sheet-sort", "strict", "compact",
	} {
		assert.NotNil(t, evalCmd.Flags().Lookup(flagName), "flag %q", flagName)
	}

	formatFlag := evalCmd.Flags().Lookup("format")
	assert.Contains(t, formatFlag.Usage, "xlsx")

	// Paths are arbitrary.
	assert.NoError(t, evalCmd.Args(evalCmd, []string{"notes.txt", "docs/"}))
}

func TestGlobalFlags(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())

	for _, flagName := range []string{"debug", "config", "color", "log-format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flagName), "flag %q", flagName)
	}
}

func TestApplyCommandArgs(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(testInfo())
	applyCmd, _, err := cmd.Find([]string{"apply"})
	require.NoError(t, err)

	assert.Error(t, applyCmd.Args(applyCmd, []string{"recipe"}))
	assert.NoError(t, applyCmd.Args(applyCmd, []string{"recipe", "edits.yaml"}))
}

func TestVersionCommand(t *testing.T) {
	t.Parallel()

	cmd := cli.NewRootCommand(cli.BuildInfo{
		Version: "1.2.3",
		Commit:  "abc123",
		Date:    "2024-01-01",
	})
	cmd.SetArgs([]string{"version"})

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "version=1.2.3")
	assert.Contains(t, out.String(), "commit=abc123")
}

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, cli.ExitSuccess},
		{"cell errors", cli.ErrCellErrors, cli.ExitCellErrors},
		{"documents failed", cli.ErrDocumentsFailed, cli.ExitDocumentErrors},
		{"usage", cli.ErrInvalidUsage, cli.ExitInvalidUsage},
		{"check", cli.ErrCheckFailed, cli.ExitConfigError},
		{"other", assert.AnError, cli.ExitInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cli.ExitCode(tt.err))
		})
	}

	assert.True(t, cli.Silent(cli.ErrCellErrors))
	assert.False(t, cli.Silent(cli.ErrInvalidUsage))
}

func TestExitCodeFromResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cli.ExitSuccess, cli.ExitCodeFromResult(nil, true))
}

func TestHelpOutput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			name:     "root lists commands and environment",
			args:     []string{"--help"},
			contains: []string{"Commands:", "eval", "serve", "Environment:", "TEXTSHEETS_FORMAT"},
		},
		{
			name:     "eval lists its flags",
			args:     []string{"eval", "--help"},
			contains: []string{"Flags:", "--max-lookup-depth", "Global Flags:", "--log-format"},
			excludes: []string{"Environment:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd := cli.NewRootCommand(testInfo())
			cmd.SetArgs(tt.args)
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(&out)

			require.NoError(t, cmd.Execute())
			for _, want := range tt.contains {
				assert.Contains(t, out.String(), want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out.String(), unwanted)
			}
		})
	}
}
