package formula_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/textsheets/pkg/formula"
)

func FuzzParse(f *testing.F) {
	f.Add(`HIGHLIGHTS_OF_REGEX("\\d+")`)
	f.Add(`NEXT(quantity, HAS_TYPE("word"))`)
	f.Add(`FILTER(rows, (r) => r.total >= 10 ? r : null)`)
	f.Add(`[1, 'a', true][0]`)
	f.Add(`x => y => !x || -y`)
	f.Add(`"é"`)
	f.Add(`((((`)
	f.Add(``)

	f.Fuzz(func(t *testing.T, source string) {
		parsed, err := formula.Parse(source)
		if err != nil {
			var syntaxErr *formula.SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("Parse(%q) error %T is not a *SyntaxError", source, err)
			}
			if syntaxErr.Pos < 0 || syntaxErr.Pos > len(source) {
				t.Fatalf("Parse(%q) error position %d out of range", source, syntaxErr.Pos)
			}
			return
		}

		pos := parsed.Root.Position()
		if pos.Start < 0 || pos.End > len(source) || pos.Start > pos.End {
			t.Fatalf("Parse(%q) root position %+v out of range", source, pos)
		}

		// The normalized form parses to itself.
		normalized := parsed.String()
		again, err := formula.Parse(normalized)
		if err != nil {
			t.Fatalf("Parse(%q) of normalized form failed: %v", normalized, err)
		}
		if again.String() != normalized {
			t.Fatalf("normalized form not stable: %q -> %q", normalized, again.String())
		}

		// Evaluation in an empty environment never panics.
		_, _ = parsed.Eval(formula.NewEnv())
	})
}
