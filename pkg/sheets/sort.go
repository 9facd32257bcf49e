package sheets

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/yaklabco/textsheets/pkg/document"
	"github.com/yaklabco/textsheets/pkg/formula"
	"github.com/yaklabco/textsheets/pkg/highlight"
	"github.com/yaklabco/textsheets/pkg/scope"
)

// SortMethod is how a column's values compare.
type SortMethod int

const (
	SortDate SortMethod = iota
	SortAlphabetical
	SortNumeric
)

// String returns the method name.
func (m SortMethod) String() string {
	switch m {
	case SortDate:
		return "date"
	case SortNumeric:
		return "numeric"
	default:
		return "alphabetical"
	}
}

// dateColumn is the column name that sorts chronologically.
const dateColumn = "date"

//nolint:gochecknoglobals // Fixed layout list
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
}

// SortMethodFor classifies a column from its name and its first row's value.
// A column named date sorts chronologically, a column whose first value
// reads as a number sorts numerically and anything else alphabetically.
func SortMethodFor(column string, first any, doc *document.Document) SortMethod {
	if column == dateColumn {
		return SortDate
	}
	if _, ok := numericValue(sortText(first, doc)); ok {
		return SortNumeric
	}
	return SortAlphabetical
}

// SortRows orders rows by one column. Rows missing the column go last in
// both directions; ties fall back to the start of the row's span.
func SortRows(rows []*scope.Scope, column string, descending bool, doc *document.Document) []*scope.Scope {
	out := slices.Clone(rows)
	if len(out) == 0 {
		return out
	}

	first, _ := out[0].Get(column)
	method := SortMethodFor(column, first, doc)

	slices.SortStableFunc(out, func(a, b *scope.Scope) int {
		aValue, aOK := a.Get(column)
		bValue, bOK := b.Get(column)

		var rv int
		switch {
		case !aOK && !bOK:
			rv = 0
		case !aOK:
			return 1
		case !bOK:
			return -1
		default:
			rv = compareValues(method, sortText(aValue, doc), sortText(bValue, doc))
			if descending {
				rv = -rv
			}
		}
		if rv != 0 {
			return rv
		}
		return cmp.Compare(rowStart(a), rowStart(b))
	})
	return out
}

func compareValues(method SortMethod, a, b string) int {
	switch method {
	case SortDate:
		aTime, aOK := dateValue(a)
		bTime, bOK := dateValue(b)
		if !aOK || !bOK {
			return cmp.Compare(a, b)
		}
		return aTime.Compare(bTime)
	case SortNumeric:
		aNum, aOK := numericValue(a)
		bNum, bOK := numericValue(b)
		switch {
		case aOK && bOK:
			return cmp.Compare(aNum, bNum)
		case aOK:
			return -1
		case bOK:
			return 1
		}
		return 0
	default:
		return strings.Compare(strings.ToLower(a), strings.ToLower(b))
	}
}

func sortText(value any, doc *document.Document) string {
	if h, ok := value.(*highlight.Highlight); ok && doc != nil {
		return h.Text(doc)
	}
	return formula.Display(value, doc)
}

// numericValue parses the leading number of s, the way a lenient reader of
// "12 cups" or "3.5kg" would.
func numericValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && strings.IndexByte("+-0123456789.eE", s[end]) >= 0 {
		end++
	}
	for ; end > 0; end-- {
		if n, err := strconv.ParseFloat(s[:end], 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func dateValue(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// rowStart returns the earliest start of the row's highlights, or -1.
func rowStart(row *scope.Scope) int {
	start := -1
	row.Each(func(_ string, value any) {
		if h, ok := value.(*highlight.Highlight); ok && (start < 0 || h.Span.From < start) {
			start = h.Span.From
		}
	})
	return start
}
