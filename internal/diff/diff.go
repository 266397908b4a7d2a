// Package diff computes unified diffs between two versions of a file's
// content. The revision view feeds it parent/child file contents from jj
// and renders the resulting hunks.
package diff

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

// LineType represents the type of a diff line.
type LineType int

const (
	LineContext  LineType = iota // unchanged line
	LineAddition                 // line only in the new version
	LineDeletion                 // line only in the old version
)

// DiffLine is a single line in a hunk.
type DiffLine struct {
	Type       LineType
	OldLineNum int // line number in the old version (0 for additions)
	NewLineNum int // line number in the new version (0 for deletions)
	Content    string
}

// Hunk is a contiguous run of changes plus surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Header   string // the @@ line text
	Lines    []DiffLine
}

// FileDiff is the full diff for one file.
type FileDiff struct {
	Path      string
	Additions int
	Deletions int
	IsBinary  bool
	Hunks     []Hunk
}

// Changed reports whether the diff contains any change.
func (d FileDiff) Changed() bool {
	return d.IsBinary || len(d.Hunks) > 0
}

// Compute diffs old against new content. A nil slice means the file does
// not exist on that side, so a nil old with non-nil new is a file addition.
// Binary content produces a FileDiff with IsBinary set and no hunks.
func Compute(old, new []byte, path string) FileDiff {
	fd := FileDiff{Path: path}

	if bytes.Equal(old, new) {
		return fd
	}
	if isBinary(old) || isBinary(new) {
		fd.IsBinary = true
		return fd
	}

	script := editScript(string(old), string(new))
	fd.Hunks = groupHunks(script, ContextLines)
	for _, h := range fd.Hunks {
		for _, l := range h.Lines {
			switch l.Type {
			case LineAddition:
				fd.Additions++
			case LineDeletion:
				fd.Deletions++
			}
		}
	}
	return fd
}

// isBinary uses the git heuristic: a NUL byte in the first block means
// binary.
func isBinary(content []byte) bool {
	probe := content
	if len(probe) > 8192 {
		probe = probe[:8192]
	}
	return bytes.IndexByte(probe, 0) >= 0
}

// editScript produces the complete line-level diff (context lines included)
// using diffmatchpatch's line mode, which diffs at line granularity before
// the character-level pass.
func editScript(old, new string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lineArray)

	var script []DiffLine
	oldLine, newLine := 1, 1
	for _, d := range diffs {
		for _, content := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				script = append(script, DiffLine{
					Type:       LineContext,
					OldLineNum: oldLine,
					NewLineNum: newLine,
					Content:    content,
				})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				script = append(script, DiffLine{
					Type:       LineDeletion,
					OldLineNum: oldLine,
					Content:    content,
				})
				oldLine++
			case diffmatchpatch.DiffInsert:
				script = append(script, DiffLine{
					Type:       LineAddition,
					NewLineNum: newLine,
					Content:    content,
				})
				newLine++
			}
		}
	}
	return script
}

// splitLines splits diff text into lines without a trailing empty entry
// for content ending in a newline.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// groupHunks collapses the full edit script into unified-diff hunks with
// the given amount of context. Changes closer together than twice the
// context share a hunk.
func groupHunks(script []DiffLine, context int) []Hunk {
	// Indexes of changed lines in the script.
	var changed []int
	for i, l := range script {
		if l.Type != LineContext {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	var hunks []Hunk
	start := max(0, changed[0]-context)
	end := min(len(script), changed[0]+context+1)

	for _, idx := range changed[1:] {
		if idx-context <= end {
			end = min(len(script), idx+context+1)
			continue
		}
		hunks = append(hunks, buildHunk(script[start:end]))
		start = max(0, idx-context)
		end = min(len(script), idx+context+1)
	}
	hunks = append(hunks, buildHunk(script[start:end]))
	return hunks
}

func buildHunk(lines []DiffLine) Hunk {
	h := Hunk{Lines: lines}
	for _, l := range lines {
		switch l.Type {
		case LineContext:
			h.OldCount++
			h.NewCount++
		case LineDeletion:
			h.OldCount++
		case LineAddition:
			h.NewCount++
		}
		if h.OldStart == 0 && l.OldLineNum > 0 {
			h.OldStart = l.OldLineNum
		}
		if h.NewStart == 0 && l.NewLineNum > 0 {
			h.NewStart = l.NewLineNum
		}
	}
	// Pure additions at the top of a file have no old lines at all; the
	// unified format records start 0 in that case (and symmetrically for
	// deletions).
	h.Header = fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
	return h
}
