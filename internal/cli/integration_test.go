package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/internal/cli"
)

const recipeText = "2 cups flour\n1 tsp salt\n"

const recipeConfig = `
documents:
  - name: recipe
    path: recipe.txt
sheets:
  - id: word
    name: word
    properties:
      - name: word
        formula: HIGHLIGHTS_OF_REGEX("[a-z]+")
  - id: ingredient
    name: ingredient
    properties:
      - name: quantity
        formula: HIGHLIGHTS_OF_REGEX("\\d+")
      - name: unit
        formula: NEXT(quantity, HAS_TYPE("word"))
      - name: note
        formula: missing_fn()
        visibility: hidden
`

// recipeFixture writes the recipe document and its configuration and
// returns the configuration path.
func recipeFixture(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "recipe.txt"), []byte(recipeText), 0o644))
	cfgPath := filepath.Join(dir, ".textsheets.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(recipeConfig), 0o644))
	return cfgPath
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--color", "never"))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestIntegration_EvalText(t *testing.T) {
	t.Parallel()

	cfgPath := recipeFixture(t)
	out, err := execute(t, "eval", "--config", cfgPath)
	require.NoError(t, err)

	assert.Contains(t, out, "recipe")
	// Each ingredient row spans its quantity and unit.
	assert.Contains(t, out, "[0, 6)    ingredient  2 cups")
	assert.Contains(t, out, "[2, 6)    word        cups")
	assert.Contains(t, out, "[13, 18)  ingredient  1 tsp")
	assert.Contains(t, out, "cell error: ingredient.note row 0:")
	assert.Contains(t, out, "6 highlights")
}

func TestIntegration_EvalStrict(t *testing.T) {
	t.Parallel()

	cfgPath := recipeFixture(t)
	_, err := execute(t, "eval", "--config", cfgPath, "--strict", "--format", "summary")
	require.ErrorIs(t, err, cli.ErrCellErrors)
	assert.Equal(t, cli.ExitCellErrors, cli.ExitCode(err))
}

func TestIntegration_EvalJSON(t *testing.T) {
	t.Parallel()

	cfgPath := recipeFixture(t)
	out, err := execute(t, "eval", "--config", cfgPath, "--format", "json")
	require.NoError(t, err)

	var report struct {
		Documents []struct {
			Name   string `json:"name"`
			Sheets []struct {
				ID      string           `json:"id"`
				Columns []string         `json:"columns"`
				Rows    []map[string]any `json:"rows"`
			} `json:"sheets"`
		} `json:"documents"`
		Summary struct {
			Rows       int `json:"rows"`
			Highlights int `json:"highlights"`
			CellErrors int `json:"cellErrors"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))

	assert.Equal(t, 6, report.Summary.Rows)
	assert.Equal(t, 6, report.Summary.Highlights)
	assert.Equal(t, 2, report.Summary.CellErrors)

	require.Len(t, report.Documents, 1)
	sheets := report.Documents[0].Sheets
	require.Len(t, sheets, 2)
	assert.Equal(t, []string{"quantity", "unit"}, sheets[1].Columns)
	require.Len(t, sheets[1].Rows, 2)

	first, ok := sheets[1].Rows[0]["quantity"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2", first["text"])
	unit, ok := sheets[1].Rows[1]["unit"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "tsp", unit["text"])
}

func TestIntegration_EvalXLSXToFile(t *testing.T) {
	t.Parallel()

	cfgPath := recipeFixture(t)
	output := filepath.Join(filepath.Dir(cfgPath), "report.xlsx")
	out, err := execute(t, "eval", "--config", cfgPath, "--format", "xlsx", "--output", output)
	require.NoError(t, err)
	assert.Empty(t, out)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("PK")), "xlsx files are zip archives")
}

func TestIntegration_EvalRejectsUnknownFormat(t *testing.T) {
	t.Parallel()

	cfgPath := recipeFixture(t)
	_, err := execute(t, "eval", "--config", cfgPath, "--format", "sarif")
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCode(err))
}

func TestIntegration_ApplyWrite(t *testing.T) {
	t.Parallel()

	cfgPath := recipeFixture(t)
	dir := filepath.Dir(cfgPath)
	script := filepath.Join(dir, "edits.yaml")
	require.NoError(t, os.WriteFile(script, []byte("edits:\n  - start: 0\n    end: 1\n    text: \"3\"\n"), 0o644))

	out, err := execute(t, "apply", "--config", cfgPath, "--write", "--backup", "--diff", "recipe", script)
	require.NoError(t, err)
	assert.Contains(t, out, "@@ -1,2 +1,2 @@\n-2 cups flour\n+3 cups flour\n 1 tsp salt\n")
	assert.Contains(t, out, "highlights (6)")
	assert.Contains(t, out, "saved")

	content, err := os.ReadFile(filepath.Join(dir, "recipe.txt"))
	require.NoError(t, err)
	assert.Equal(t, "3 cups flour\n1 tsp salt\n", string(content))

	backup, err := os.ReadFile(filepath.Join(dir, "recipe.txt.textsheets.bak"))
	require.NoError(t, err)
	assert.Equal(t, recipeText, string(backup))
}

func TestIntegration_ApplyJSON(t *testing.T) {
	t.Parallel()

	cfgPath := recipeFixture(t)
	script := filepath.Join(filepath.Dir(cfgPath), "edits.yaml")
	require.NoError(t, os.WriteFile(script, []byte("edits:\n  - start: 0\n    text: \"1\"\n"), 0o644))

	out, err := execute(t, "apply", "--config", cfgPath, "--format", "json", "recipe", script)
	require.NoError(t, err)

	var report struct {
		Text     string `json:"text"`
		Remapped []struct {
			Sheet string `json:"sheet"`
			Span  [2]int `json:"span"`
			Text  string `json:"text"`
		} `json:"remapped"`
		Written bool `json:"written"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "12 cups flour\n1 tsp salt\n", report.Text)
	assert.False(t, report.Written)

	// An insertion before a highlight shifts it.
	var cups bool
	for _, h := range report.Remapped {
		if h.Text == "cups" {
			cups = true
			assert.Equal(t, [2]int{3, 7}, h.Span)
		}
	}
	assert.True(t, cups)

	// Without --write the file is untouched.
	content, err := os.ReadFile(filepath.Join(filepath.Dir(cfgPath), "recipe.txt"))
	require.NoError(t, err)
	assert.Equal(t, recipeText, string(content))
}

func TestIntegration_ApplyRejectsBadEdits(t *testing.T) {
	t.Parallel()

	cfgPath := recipeFixture(t)
	script := filepath.Join(filepath.Dir(cfgPath), "edits.yaml")
	require.NoError(t, os.WriteFile(script, []byte("edits:\n  - start: 5\n    end: 500\n"), 0o644))

	_, err := execute(t, "apply", "--config", cfgPath, "recipe", script)
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
	assert.Contains(t, err.Error(), "exceeds text length")
}

func TestIntegration_Check(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sheets.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
sheets:
  - id: a
    name: a
    properties:
      - name: x
        formula: "NEXT("
`), 0o644))

	out, err := execute(t, "check", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "warning:")
	assert.Contains(t, out, "a.x")
	assert.Contains(t, out, "1 sheets, 1 formulas, 0 documents: 0 errors, 1 warnings")

	_, err = execute(t, "check", "--strict", cfgPath)
	require.ErrorIs(t, err, cli.ErrCheckFailed)
}

func TestIntegration_CheckReportsEveryError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sheets.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
format: sarif
sheets:
  - {id: a, name: a, properties: [{name: x, formula: "1"}, {name: x, formula: "2"}]}
`), 0o644))

	out, err := execute(t, "check", cfgPath)
	require.ErrorIs(t, err, cli.ErrCheckFailed)
	assert.Equal(t, 2, strings.Count(out, "error:"))
	assert.Contains(t, out, `duplicate column "x"`)
}

func TestIntegration_Functions(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "functions", "--format", "json")
	require.NoError(t, err)

	var infos []struct {
		Name    string   `json:"name"`
		Params  []string `json:"params"`
		Curried bool     `json:"curried"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &infos))
	require.NotEmpty(t, infos)
	assert.Equal(t, "EACH_LINE", infos[0].Name)
	assert.Empty(t, infos[0].Params)

	out, err = execute(t, "functions", "next")
	require.NoError(t, err)
	assert.Contains(t, out, "NEXT(highlight, condition)")

	_, err = execute(t, "functions", "nex")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
	assert.Contains(t, err.Error(), "did you mean NEXT")
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	output := filepath.Join(t.TempDir(), "custom.yml")

	_, err := execute(t, "init", "--full", "--output", output)
	require.NoError(t, err)

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# textsheets configuration"))
	assert.Contains(t, string(content), "id: ingredient")

	_, err = execute(t, "init", "--output", output)
	require.ErrorIs(t, err, cli.ErrInvalidUsage)

	_, err = execute(t, "init", "--force", "--output", output)
	require.NoError(t, err)
}
