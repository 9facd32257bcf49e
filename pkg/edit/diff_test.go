package edit_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/textsheets/pkg/edit"
)

func TestChangeSetDiff(t *testing.T) {
	t.Parallel()

	var tenLines strings.Builder
	for _, line := range []string{"l0", "l1", "l2", "l3", "l4", "l5", "l6", "l7", "l8", "l9"} {
		tenLines.WriteString(line + "\n")
	}

	tests := []struct {
		name   string
		before string
		edits  []edit.TextEdit
		want   string
	}{
		{
			name:   "no change",
			before: "a\n",
			edits:  []edit.TextEdit{edit.Replace(0, 1, "a")},
			want:   "",
		},
		{
			name:   "replace within a line",
			before: "2 cups flour\n1 tsp salt\n",
			edits:  []edit.TextEdit{edit.Replace(0, 1, "3")},
			want: "--- a/recipe\n+++ b/recipe\n" +
				"@@ -1,2 +1,2 @@\n-2 cups flour\n+3 cups flour\n 1 tsp salt\n",
		},
		{
			name:   "two edits on one line",
			before: "2 cups flour\n1 tsp salt\n",
			edits:  []edit.TextEdit{edit.Replace(0, 1, "3"), edit.Replace(2, 6, "mugs")},
			want: "--- a/recipe\n+++ b/recipe\n" +
				"@@ -1,2 +1,2 @@\n-2 cups flour\n+3 mugs flour\n 1 tsp salt\n",
		},
		{
			name:   "delete a whole line",
			before: "a\nb\nc\n",
			edits:  []edit.TextEdit{edit.Delete(2, 4)},
			want:   "--- a/recipe\n+++ b/recipe\n@@ -1,3 +1,2 @@\n a\n-b\n c\n",
		},
		{
			name:   "append a line",
			before: "a\n",
			edits:  []edit.TextEdit{edit.Insert(2, "b\n")},
			want:   "--- a/recipe\n+++ b/recipe\n@@ -1,1 +1,2 @@\n a\n+b\n",
		},
		{
			name:   "insert into empty text",
			before: "",
			edits:  []edit.TextEdit{edit.Insert(0, "x")},
			want:   "--- a/recipe\n+++ b/recipe\n@@ -0,0 +1,1 @@\n+x\n",
		},
		{
			name:   "distant edits make separate hunks",
			before: tenLines.String(),
			edits:  []edit.TextEdit{edit.Replace(0, 2, "x0"), edit.Replace(27, 29, "x9")},
			want: "--- a/recipe\n+++ b/recipe\n" +
				"@@ -1,4 +1,4 @@\n-l0\n+x0\n l1\n l2\n l3\n" +
				"@@ -7,4 +7,4 @@\n l6\n l7\n l8\n-l9\n+x9\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, changes, err := edit.ApplyText(tt.before, tt.edits)
			require.NoError(t, err)
			assert.Equal(t, tt.want, changes.Diff("recipe", tt.before))
		})
	}
}
