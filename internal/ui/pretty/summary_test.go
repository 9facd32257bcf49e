package pretty_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/textsheets/internal/ui/pretty"
	"github.com/yaklabco/textsheets/pkg/runner"
)

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		stats    runner.Stats
		contains []string
		excludes []string
	}{
		{
			name: "clean run",
			stats: runner.Stats{
				DocumentsDiscovered: 3,
				DocumentsEvaluated:  3,
				RowsTotal:           9,
				HighlightsTotal:     14,
			},
			contains: []string{"Summary", "Documents found:", "3", "Rows:", "9", "Highlights:", "14", "Evaluation succeeded"},
			excludes: []string{"Documents failed:", "Cell errors:"},
		},
		{
			name: "cell errors",
			stats: runner.Stats{
				DocumentsDiscovered:     2,
				DocumentsEvaluated:      2,
				DocumentsWithCellErrors: 1,
				CellErrorsTotal:         4,
			},
			contains: []string{"Cell errors:", "4", "Evaluation completed with cell errors"},
			excludes: []string{"Documents failed:"},
		},
		{
			name: "failed documents",
			stats: runner.Stats{
				DocumentsDiscovered: 2,
				DocumentsEvaluated:  1,
				DocumentsErrored:    1,
				CellErrorsTotal:     1,
			},
			contains: []string{"Documents failed:", "Evaluation failed"},
		},
	}

	styles := pretty.NewStyles(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := styles.FormatSummary(tt.stats)
			for _, want := range tt.contains {
				assert.Contains(t, result, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, result, unwanted)
			}
		})
	}
}

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{
			name:  "clean run",
			stats: runner.Stats{DocumentsEvaluated: 3, RowsTotal: 9, HighlightsTotal: 14},
			want:  "OK 14 highlights, 9 rows in 3 documents\n",
		},
		{
			name:  "singular",
			stats: runner.Stats{DocumentsEvaluated: 1, RowsTotal: 1, HighlightsTotal: 1},
			want:  "OK 1 highlight, 1 row in 1 document\n",
		},
		{
			name: "cell errors",
			stats: runner.Stats{
				DocumentsEvaluated:      2,
				RowsTotal:               2,
				HighlightsTotal:         0,
				CellErrorsTotal:         2,
				DocumentsWithCellErrors: 1,
			},
			want: "0 highlights, 2 rows in 2 documents, 2 cell errors in 1 document\n",
		},
		{
			name:  "failed documents",
			stats: runner.Stats{DocumentsErrored: 2},
			want:  "0 highlights, 0 rows in 0 documents, 2 documents failed\n",
		},
	}

	styles := pretty.NewStyles(false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}
}
