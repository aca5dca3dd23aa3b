// Package diff computes line diffs between a proposed file and the copy on
// the system. Hunks come from go-difflib's grouped opcodes; a replace
// opcode is split into a Delete hunk followed by an Insert hunk.
package diff

import (
	"bytes"
	"strings"

	"github.com/andisab/mise-en-place/pkg/filesystem"
	"github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of unchanged lines kept around each change
const DefaultContext = 3

// Op classifies a hunk
type Op string

const (
	OpEqual  Op = "equal"
	OpInsert Op = "insert"
	OpDelete Op = "delete"
)

// Hunk is a run of lines with one Op. Positions are 1-based. For an
// Insert, OldStart is the old line the text is inserted before; for a
// Delete, NewStart is the new line the removal precedes.
type Hunk struct {
	Op       Op       `json:"op" yaml:"op"`
	OldStart int      `json:"old_start" yaml:"old_start"`
	OldLen   int      `json:"old_len" yaml:"old_len"`
	NewStart int      `json:"new_start" yaml:"new_start"`
	NewLen   int      `json:"new_len" yaml:"new_len"`
	Lines    []string `json:"lines" yaml:"lines"`
}

// Result is the diff of two contents
type Result struct {
	Hunks   []Hunk `json:"hunks,omitempty" yaml:"hunks,omitempty"`
	Binary  bool   `json:"binary,omitempty" yaml:"binary,omitempty"`
	Changed bool   `json:"changed" yaml:"changed"`

	oldLines, newLines []string
	context            int
}

// Lines diffs two texts with the default context
func Lines(current, proposed string) Result {
	return LinesContext(current, proposed, DefaultContext)
}

// LinesContext diffs two texts keeping context unchanged lines per group
func LinesContext(current, proposed string, context int) Result {
	r := Result{
		Changed:  current != proposed,
		oldLines: splitLines(current),
		newLines: splitLines(proposed),
		context:  context,
	}
	if !r.Changed {
		return r
	}

	m := difflib.NewMatcher(r.oldLines, r.newLines)
	for _, group := range m.GetGroupedOpCodes(context) {
		for _, oc := range group {
			switch oc.Tag {
			case 'e':
				r.Hunks = append(r.Hunks, r.hunk(OpEqual, oc.I1, oc.I2, oc.J1, oc.J1+(oc.I2-oc.I1), r.oldLines[oc.I1:oc.I2]))
			case 'd':
				r.Hunks = append(r.Hunks, r.hunk(OpDelete, oc.I1, oc.I2, oc.J1, oc.J1, r.oldLines[oc.I1:oc.I2]))
			case 'i':
				r.Hunks = append(r.Hunks, r.hunk(OpInsert, oc.I1, oc.I1, oc.J1, oc.J2, r.newLines[oc.J1:oc.J2]))
			case 'r':
				r.Hunks = append(r.Hunks,
					r.hunk(OpDelete, oc.I1, oc.I2, oc.J1, oc.J1, r.oldLines[oc.I1:oc.I2]),
					r.hunk(OpInsert, oc.I2, oc.I2, oc.J1, oc.J2, r.newLines[oc.J1:oc.J2]))
			}
		}
	}
	return r
}

// Bytes diffs two file contents. Non-text content yields a Binary result
// with no hunks.
func Bytes(current, proposed []byte) Result {
	if !filesystem.IsText(current) || !filesystem.IsText(proposed) {
		return Result{Binary: true, Changed: !bytes.Equal(current, proposed)}
	}
	return Lines(string(current), string(proposed))
}

func (r Result) hunk(op Op, i1, i2, j1, j2 int, lines []string) Hunk {
	text := make([]string, len(lines))
	for k, l := range lines {
		text[k] = strings.TrimSuffix(l, "\n")
	}
	return Hunk{
		Op:       op,
		OldStart: i1 + 1,
		OldLen:   i2 - i1,
		NewStart: j1 + 1,
		NewLen:   j2 - j1,
		Lines:    text,
	}
}

// Changes returns only the Insert and Delete hunks
func (r Result) Changes() []Hunk {
	var out []Hunk
	for _, h := range r.Hunks {
		if h.Op != OpEqual {
			out = append(out, h)
		}
	}
	return out
}

// Stats counts inserted and deleted lines
func (r Result) Stats() (added, removed int) {
	for _, h := range r.Hunks {
		switch h.Op {
		case OpInsert:
			added += h.NewLen
		case OpDelete:
			removed += h.OldLen
		}
	}
	return added, removed
}

// Unified renders the diff in unified format with the context the result
// was computed with. Binary and unchanged results render as an empty string.
func (r Result) Unified(from, to string) string {
	if r.Binary || !r.Changed {
		return ""
	}
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        terminate(r.oldLines),
		B:        terminate(r.newLines),
		FromFile: from,
		ToFile:   to,
		Context:  r.context,
	})
	if err != nil {
		return ""
	}
	return out
}

// splitLines splits after each newline, keeping a final unterminated line
// distinct from a terminated one.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// terminate adds a newline marker to an unterminated last line so the
// unified writer keeps one change per line.
func terminate(lines []string) []string {
	if len(lines) == 0 || strings.HasSuffix(lines[len(lines)-1], "\n") {
		return lines
	}
	out := append([]string(nil), lines...)
	out[len(out)-1] += "\n\\ No newline at end of file\n"
	return out
}
