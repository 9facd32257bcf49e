package edit

import (
	"fmt"
	"strings"
)

// contextLines is the number of unchanged lines shown around each change.
const contextLines = 3

// lineRange is an inclusive range of line indexes; From > To is empty.
type lineRange struct {
	From, To int
}

// change pairs the lines an edit replaced with the lines that replaced them.
type change struct {
	before, after lineRange
}

// Diff renders the change set as a unified diff of before, the text the
// edits were prepared against. It returns "" when nothing changed.
//
// Hunks are derived from the edits rather than from a line comparison, so
// each changed line appears exactly once however the edits are spread over it.
func (c *ChangeSet) Diff(path, before string) string {
	after := Apply(before, c.edits)
	if after == before {
		return ""
	}

	oldLines := splitLines(before)
	newLines := splitLines(after)

	changes := c.lineChanges(before, after)
	if len(changes) == 0 {
		return ""
	}

	var out strings.Builder
	fmt.Fprintf(&out, "--- a/%s\n+++ b/%s\n", path, path)
	for _, hunk := range groupHunks(changes) {
		writeHunk(&out, hunk, oldLines, newLines)
	}
	return out.String()
}

// lineChanges maps each edit to the lines it touches on both sides and merges
// edits that share a line.
func (c *ChangeSet) lineChanges(before, after string) []change {
	var changes []change
	delta := 0
	for _, e := range c.edits {
		newStart := e.Start + delta
		newEnd := newStart + len(e.NewText)
		delta += e.Delta()
		if e.Start == e.End && e.NewText == "" {
			continue
		}

		// When the text after the edit begins a line on both sides, the edit
		// ends on the previous line.
		next := change{
			before: lineRange{lineIndex(before, e.Start), lineIndex(before, e.End)},
			after:  lineRange{lineIndex(after, newStart), lineIndex(after, newEnd)},
		}
		if atLineStart(before, e.End) && atLineStart(after, newEnd) {
			next.before.To--
			next.after.To--
		}

		if n := len(changes); n > 0 && next.before.From <= changes[n-1].before.To {
			last := &changes[n-1]
			last.before.To = max(last.before.To, next.before.To)
			last.after.To = max(last.after.To, next.after.To)
			continue
		}
		changes = append(changes, next)
	}
	return changes
}

// groupHunks splits changes into hunks whose context would overlap.
func groupHunks(changes []change) [][]change {
	var hunks [][]change
	for idx, ch := range changes {
		if idx > 0 && ch.before.From-changes[idx-1].before.To-1 <= 2*contextLines {
			hunks[len(hunks)-1] = append(hunks[len(hunks)-1], ch)
			continue
		}
		hunks = append(hunks, []change{ch})
	}
	return hunks
}

func writeHunk(out *strings.Builder, hunk []change, oldLines, newLines []string) {
	first, last := hunk[0], hunk[len(hunk)-1]

	oldFrom := max(first.before.From-contextLines, 0)
	newFrom := first.after.From - (first.before.From - oldFrom)
	trailing := max(min(last.before.To+contextLines, len(oldLines)-1)-last.before.To, 0)

	var body strings.Builder
	oldCount, newCount := 0, 0
	emit := func(prefix string, lines []string) {
		for _, line := range lines {
			body.WriteString(prefix)
			body.WriteString(line)
			body.WriteByte('\n')
		}
	}

	leading := oldLines[oldFrom:clampIndex(first.before.From, oldLines)]
	emit(" ", leading)
	oldCount += len(leading)
	newCount += len(leading)

	for idx, ch := range hunk {
		removed := slice(oldLines, ch.before)
		added := slice(newLines, ch.after)
		emit("-", removed)
		emit("+", added)
		oldCount += len(removed)
		newCount += len(added)

		if idx+1 < len(hunk) {
			between := slice(oldLines, lineRange{ch.before.To + 1, hunk[idx+1].before.From - 1})
			emit(" ", between)
			oldCount += len(between)
			newCount += len(between)
		}
	}

	tail := slice(oldLines, lineRange{last.before.To + 1, last.before.To + trailing})
	emit(" ", tail)
	oldCount += len(tail)
	newCount += len(tail)

	fmt.Fprintf(out, "@@ -%s +%s @@\n", hunkRange(oldFrom, oldCount), hunkRange(newFrom, newCount))
	out.WriteString(body.String())
}

// hunkRange formats a 0-based start and a count the way unified diffs do:
// 1-based, and pointing at the preceding line when the range is empty.
func hunkRange(from, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", from)
	}
	return fmt.Sprintf("%d,%d", from+1, count)
}

// splitLines splits text into lines without terminators. A final newline
// does not start another line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// lineIndex returns the 0-based line containing offset. The offset just past
// a final newline belongs to a line that splitLines does not return.
func lineIndex(text string, offset int) int {
	return strings.Count(text[:offset], "\n")
}

func atLineStart(text string, offset int) bool {
	return offset == 0 || text[offset-1] == '\n'
}

// slice returns lines[r.From..r.To], dropping indexes past the end.
func slice(lines []string, r lineRange) []string {
	to := min(r.To, len(lines)-1)
	if r.From > to {
		return nil
	}
	return lines[r.From : to+1]
}

func clampIndex(idx int, lines []string) int {
	return min(idx, len(lines))
}
