package sheets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/pkg/scope"
	"github.com/yaklabco/textsheets/pkg/sheets"
)

func TestSortMethodFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		column string
		value  any
		want   sheets.SortMethod
	}{
		{"date column", "date", "whatever", sheets.SortDate},
		{"number", "qty", float64(3), sheets.SortNumeric},
		{"numeric string", "qty", "12", sheets.SortNumeric},
		{"number with unit", "qty", "3.5kg", sheets.SortNumeric},
		{"word", "name", "flour", sheets.SortAlphabetical},
		{"missing", "name", nil, sheets.SortAlphabetical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sheets.SortMethodFor(tt.column, tt.value, nil))
		})
	}
}

func columnTexts(t *testing.T, result *sheets.Result, rows []*scope.Scope, column string) []string {
	t.Helper()

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, cellText(t, result, row, column))
	}
	return out
}

func TestSortRows(t *testing.T) {
	t.Parallel()

	result := evaluate(t, "10 pears\n9 figs\n2 apples\n",
		sheet("fruit", "n", `HIGHLIGHTS_OF_REGEX("\\d+")`),
	)
	rows := result.Rows["fruit"]
	require.Len(t, rows, 3)
	for idx, name := range []string{"pears", "figs", "apples"} {
		rows[idx].Set("name", name)
	}

	tests := []struct {
		name       string
		column     string
		descending bool
		want       []string
	}{
		{"numeric ascending", "n", false, []string{"2", "9", "10"}},
		{"numeric descending", "n", true, []string{"10", "9", "2"}},
		{"alphabetical", "name", false, []string{"apples", "figs", "pears"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sorted := sheets.SortRows(rows, tt.column, tt.descending, result.Document)
			assert.Equal(t, tt.want, columnTexts(t, result, sorted, tt.column))
		})
	}

	// The input order is untouched.
	assert.Equal(t, []string{"10", "9", "2"}, columnTexts(t, result, rows, "n"))
}

func TestSortRows_DatesAndMissing(t *testing.T) {
	t.Parallel()

	rows := []*scope.Scope{
		scope.Of("date", "2024-03-01"),
		scope.Of("other", "x"),
		scope.Of("date", "2023-12-31"),
		scope.Of("date", "January 5, 2024"),
	}

	for _, descending := range []bool{false, true} {
		sorted := sheets.SortRows(rows, "date", descending, nil)
		require.Len(t, sorted, 4)

		var got []string
		for _, row := range sorted {
			value, _ := row.Get("date")
			s, _ := value.(string)
			got = append(got, s)
		}

		want := []string{"2023-12-31", "January 5, 2024", "2024-03-01", ""}
		if descending {
			want = []string{"2024-03-01", "January 5, 2024", "2023-12-31", ""}
		}
		assert.Equal(t, want, got, "descending=%v", descending)
	}
}
