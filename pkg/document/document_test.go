package document_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/textsheets/pkg/document"
)

func TestDocument_Substring(t *testing.T) {
	t.Parallel()

	doc := document.New("doc", "test", "2 cups flour")

	tests := []struct {
		name    string
		from    int
		to      int
		want    string
		wantErr bool
	}{
		{"prefix", 0, 1, "2", false},
		{"middle", 2, 6, "cups", false},
		{"empty", 3, 3, "", false},
		{"whole", 0, 12, "2 cups flour", false},
		{"negative start", -1, 2, "", true},
		{"past end", 5, 13, "", true},
		{"inverted", 6, 2, "", true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := doc.Substring(testCase.from, testCase.to)
			if testCase.wantErr {
				var rangeErr *document.RangeError
				if !errors.As(err, &rangeErr) {
					t.Fatalf("expected RangeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != testCase.want {
				t.Errorf("Substring(%d, %d) = %q, want %q", testCase.from, testCase.to, got, testCase.want)
			}
		})
	}
}

func TestDocument_BeforeAfter(t *testing.T) {
	t.Parallel()

	doc := document.New("doc", "test", "abc")

	if got := doc.Before(2); got != "ab" {
		t.Errorf("Before(2) = %q", got)
	}
	if got := doc.After(2); got != "c" {
		t.Errorf("After(2) = %q", got)
	}
	if got := doc.Before(10); got != "abc" {
		t.Errorf("Before(10) = %q", got)
	}
	if got := doc.After(-3); got != "abc" {
		t.Errorf("After(-3) = %q", got)
	}
	if got := doc.SpanText(document.Span{From: 1, To: 9}); got != "bc" {
		t.Errorf("SpanText clamped = %q", got)
	}
}

func TestDocument_WithText(t *testing.T) {
	t.Parallel()

	doc := document.New("id-1", "recipe", "old")
	next := doc.WithText("new text")

	if next.ID != doc.ID || next.Name != doc.Name {
		t.Errorf("WithText lost identity: %+v", next)
	}
	if doc.FullText() != "old" {
		t.Error("WithText mutated the original snapshot")
	}
	if next.FullText() != "new text" {
		t.Errorf("FullText() = %q", next.FullText())
	}
}

func TestSpan(t *testing.T) {
	t.Parallel()

	a := document.Span{From: 2, To: 6}
	b := document.Span{From: 6, To: 9}
	c := document.Span{From: 10, To: 12}

	if !a.Overlaps(b) {
		t.Error("touching spans should overlap")
	}
	if a.Overlaps(c) {
		t.Error("disjoint spans should not overlap")
	}
	if got := a.Union(c); got != (document.Span{From: 2, To: 12}) {
		t.Errorf("Union = %v", got)
	}
	if !(document.Span{From: 4, To: 4}).IsEmpty() {
		t.Error("degenerate span should be empty")
	}
	if a.Len() != 4 || !a.Contains(2) || a.Contains(6) {
		t.Error("Len/Contains mismatch")
	}
	if got := (document.Span{From: -2, To: 50}).Clamp(10); got != (document.Span{From: 0, To: 10}) {
		t.Errorf("Clamp = %v", got)
	}
}
