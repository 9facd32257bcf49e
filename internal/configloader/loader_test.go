package configloader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/pkg/config"
)

func isolatedOptions(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		IgnoreEnv:          true,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	result, err := Load(context.Background(), isolatedOptions(t.TempDir()))
	require.NoError(t, err)
	require.NotNil(t, result.Config)

	assert.Equal(t, "info", result.Config.LogLevel)
	assert.Equal(t, config.FormatText, result.Config.Format)
	assert.Equal(t, config.DefaultMaxLookupDepth, result.Config.MaxLookupDepth)
	assert.Empty(t, result.LoadedFrom)
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textsheets.yml"), `
format: table
documents:
  - name: recipe
    path: docs/recipe.txt
sheets:
  - id: number
    name: number
    properties:
      - name: value
        formula: HIGHLIGHTS_OF_REGEX("\\d+")
`)

	// Discovery walks upward from a nested directory.
	nested := filepath.Join(tmpDir, "docs")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	result, err := Load(context.Background(), isolatedOptions(nested))
	require.NoError(t, err)

	assert.Equal(t, config.FormatTable, result.Config.Format)
	require.Len(t, result.Config.Sheets, 1)
	assert.Equal(t, "number", result.Config.Sheets[0].Name)
	require.Len(t, result.Config.Documents, 1)
	assert.Equal(t, filepath.Join(tmpDir, "docs", "recipe.txt"), result.Config.Documents[0].Path)
	assert.Len(t, result.LoadedFrom, 1)
	assert.Empty(t, result.Warnings)
}

func TestLoad_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textsheets.yml"), "format: json\n")
	repo := filepath.Join(tmpDir, "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0o755))

	result, err := Load(context.Background(), isolatedOptions(repo))
	require.NoError(t, err)
	assert.Equal(t, config.FormatText, result.Config.Format)
}

func TestLoad_ExplicitConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textsheets.yml"), "format: json\n")
	customPath := filepath.Join(tmpDir, "custom.yml")
	writeFile(t, customPath, "log_level: debug\nmax_lookup_depth: 2\n")

	opts := isolatedOptions(tmpDir)
	opts.ExplicitPath = customPath

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	// The explicit file replaces project discovery.
	assert.Equal(t, config.FormatText, result.Config.Format)
	assert.Equal(t, "debug", result.Config.LogLevel)
	assert.Equal(t, 2, result.Config.MaxLookupDepth)
	assert.Equal(t, []string{customPath}, result.LoadedFrom)
}

func TestLoad_CLIOverrides(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textsheets.yml"), "format: json\nlog_level: warn\n")

	opts := isolatedOptions(tmpDir)
	opts.CLIConfig = &config.Config{Format: config.FormatXLSX, Jobs: 8, ShowHidden: true}

	result, err := Load(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, config.FormatXLSX, result.Config.Format)
	assert.Equal(t, "warn", result.Config.LogLevel)
	assert.Equal(t, 8, result.Config.Jobs)
	assert.True(t, result.Config.ShowHidden)
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "bad format",
			content: "format: sarif\n",
			want:    "invalid format",
		},
		{
			name: "duplicate sheet id",
			content: `
sheets:
  - {id: a, name: first, properties: [{name: x, formula: "1"}]}
  - {id: a, name: second, properties: [{name: x, formula: "1"}]}
`,
			want: `duplicate sheet id "a"`,
		},
		{
			name: "unknown sheet in document",
			content: `
documents:
  - {name: notes, path: notes.txt, sheets: [missing]}
`,
			want: `unknown sheet "missing"`,
		},
		{
			name: "bad visibility",
			content: `
sheets:
  - {id: a, name: a, properties: [{name: x, formula: "1", visibility: secret}]}
`,
			want: "invalid visibility",
		},
		{
			name:    "malformed yaml",
			content: "sheets: [\n",
			want:    "parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()
			writeFile(t, filepath.Join(tmpDir, ".textsheets.yml"), tt.content)

			_, err := Load(context.Background(), isolatedOptions(tmpDir))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_FormulaSyntaxIsWarning(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".textsheets.yml"), `
sheets:
  - id: broken
    name: broken
    properties:
      - name: value
        formula: "HIGHLIGHTS_OF_REGEX("
`)

	result, err := Load(context.Background(), isolatedOptions(tmpDir))
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.True(t, strings.HasPrefix(result.Warnings[0], "sheets[0].properties[0].formula: broken.value:"))
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolatedOptions(t.TempDir()))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFromLookup(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		"TEXTSHEETS_LOG_LEVEL":        "debug",
		"TEXTSHEETS_FORMAT":           "json",
		"TEXTSHEETS_MAX_LOOKUP_DEPTH": "7",
		"TEXTSHEETS_JOBS":             "3",
		"TEXTSHEETS_SHOW_HIDDEN":      "true",
	}
	lookup := func(name string) (string, bool) {
		v, ok := env[name]
		return v, ok
	}

	cfg := config.NewConfig()
	require.NoError(t, loadFromLookup(cfg, lookup))
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.FormatJSON, cfg.Format)
	assert.Equal(t, 7, cfg.MaxLookupDepth)
	assert.Equal(t, 3, cfg.Jobs)
	assert.True(t, cfg.ShowHidden)

	env["TEXTSHEETS_JOBS"] = "many"
	err := loadFromLookup(config.NewConfig(), lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TEXTSHEETS_JOBS")
}

func TestListEnvVars(t *testing.T) {
	t.Parallel()

	vars := ListEnvVars()
	require.Len(t, vars, len(envMappings))
	assert.Equal(t, "TEXTSHEETS_FORMAT", vars[0].Name)
	assert.Equal(t, "TEXTSHEETS_JOBS", GetEnvVarName("jobs"))
}

func TestMerge_SheetsByID(t *testing.T) {
	t.Parallel()

	base := &config.Config{
		LogLevel: "info",
		Sheets: []config.SheetConfig{
			{ID: "word", Name: "word"},
			{ID: "number", Name: "number"},
		},
		Documents: []config.DocumentConfig{{Name: "a", Path: "/a.txt"}},
	}
	override := &config.Config{
		Sheets: []config.SheetConfig{
			{ID: "number", Name: "amount"},
			{ID: "unit", Name: "unit"},
		},
		Documents: []config.DocumentConfig{{Name: "a", Path: "/b.txt"}},
	}

	got := MergeAll(base, override)
	assert.Equal(t, "info", got.LogLevel)
	assert.Equal(t, []config.SheetConfig{
		{ID: "word", Name: "word"},
		{ID: "number", Name: "amount"},
		{ID: "unit", Name: "unit"},
	}, got.Sheets)
	assert.Equal(t, []config.DocumentConfig{{Name: "a", Path: "/b.txt"}}, got.Documents)

	// Inputs are untouched.
	assert.Equal(t, "number", base.Sheets[1].Name)
}

func TestMerge_KeepsDuplicatesWithinOneLayer(t *testing.T) {
	t.Parallel()

	override := &config.Config{
		Sheets: []config.SheetConfig{
			{ID: "a", Name: "first"},
			{ID: "a", Name: "second"},
		},
	}

	got := MergeAll(config.NewConfig(), override)
	require.Len(t, got.Sheets, 2)
	assert.Equal(t, "first", got.Sheets[0].Name)
	assert.Equal(t, "second", got.Sheets[1].Name)

	result := Validate(got)
	require.False(t, result.Valid())
	assert.Equal(t, `duplicate sheet id "a"`, result.Errors[0].Message)
}
