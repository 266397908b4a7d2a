package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// numberedLines builds "line 1\n...line n\n" content.
func numberedLines(n int) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

// replaceLine swaps one line of numbered content for new text.
func replaceLine(content string, lineNum int, text string) string {
	lines := strings.Split(content, "\n")
	lines[lineNum-1] = text
	return strings.Join(lines, "\n")
}

func TestCompute_IdenticalContent(t *testing.T) {
	content := []byte(numberedLines(5))
	fd := Compute(content, content, "file.txt")

	require.Empty(t, fd.Hunks)
	require.False(t, fd.Changed())
	require.Equal(t, "file.txt", fd.Path)
}

func TestCompute_SingleLineChange(t *testing.T) {
	old := numberedLines(10)
	new := replaceLine(old, 5, "changed")
	fd := Compute([]byte(old), []byte(new), "file.txt")

	require.Len(t, fd.Hunks, 1)
	require.Equal(t, 1, fd.Additions)
	require.Equal(t, 1, fd.Deletions)

	h := fd.Hunks[0]
	assert.Equal(t, 2, h.OldStart)
	assert.Equal(t, 7, h.OldCount)
	assert.Equal(t, 2, h.NewStart)
	assert.Equal(t, 7, h.NewCount)
	assert.Equal(t, "@@ -2,7 +2,7 @@", h.Header)

	require.Len(t, h.Lines, 8)
	assert.Equal(t, DiffLine{Type: LineContext, OldLineNum: 2, NewLineNum: 2, Content: "line 2"}, h.Lines[0])
	assert.Equal(t, DiffLine{Type: LineDeletion, OldLineNum: 5, Content: "line 5"}, h.Lines[3])
	assert.Equal(t, DiffLine{Type: LineAddition, NewLineNum: 5, Content: "changed"}, h.Lines[4])
	assert.Equal(t, DiffLine{Type: LineContext, OldLineNum: 8, NewLineNum: 8, Content: "line 8"}, h.Lines[7])
}

func TestCompute_ChangeAtTopHasTruncatedContext(t *testing.T) {
	old := numberedLines(6)
	new := replaceLine(old, 1, "changed")
	fd := Compute([]byte(old), []byte(new), "file.txt")

	require.Len(t, fd.Hunks, 1)
	h := fd.Hunks[0]
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, LineDeletion, h.Lines[0].Type)
	assert.Equal(t, 4, h.OldCount, "one deletion plus three trailing context lines")
}

func TestCompute_DistantChangesSplitIntoHunks(t *testing.T) {
	old := numberedLines(20)
	new := replaceLine(replaceLine(old, 3, "first"), 15, "second")
	fd := Compute([]byte(old), []byte(new), "file.txt")

	require.Len(t, fd.Hunks, 2)
	assert.Equal(t, 12, fd.Hunks[1].OldStart)
	assert.Equal(t, 2, fd.Additions)
	assert.Equal(t, 2, fd.Deletions)
}

func TestCompute_NearbyChangesShareHunk(t *testing.T) {
	old := numberedLines(12)
	new := replaceLine(replaceLine(old, 5, "first"), 8, "second")
	fd := Compute([]byte(old), []byte(new), "file.txt")

	require.Len(t, fd.Hunks, 1, "changes two lines apart fit in shared context")
	assert.Equal(t, 2, fd.Hunks[0].OldStart)
}

func TestCompute_FileAddition(t *testing.T) {
	fd := Compute(nil, []byte("alpha\nbeta\n"), "new.txt")

	require.Len(t, fd.Hunks, 1)
	require.Equal(t, 2, fd.Additions)
	require.Equal(t, 0, fd.Deletions)

	h := fd.Hunks[0]
	assert.Equal(t, 0, h.OldStart)
	assert.Equal(t, 0, h.OldCount)
	assert.Equal(t, 1, h.NewStart)
	assert.Equal(t, 2, h.NewCount)
	assert.Equal(t, "@@ -0,0 +1,2 @@", h.Header)
}

func TestCompute_FileDeletion(t *testing.T) {
	fd := Compute([]byte("alpha\nbeta\n"), nil, "gone.txt")

	require.Len(t, fd.Hunks, 1)
	assert.Equal(t, 0, fd.Additions)
	assert.Equal(t, 2, fd.Deletions)
	assert.Equal(t, 0, fd.Hunks[0].NewStart)
	for _, l := range fd.Hunks[0].Lines {
		assert.Equal(t, LineDeletion, l.Type)
	}
}

func TestCompute_BinaryContent(t *testing.T) {
	old := []byte("plain text\n")
	new := []byte{0x7f, 'E', 'L', 'F', 0x00, 0x01}
	fd := Compute(old, new, "bin")

	require.True(t, fd.IsBinary)
	require.Empty(t, fd.Hunks)
	require.True(t, fd.Changed())
}

func TestCompute_AppendAtEnd(t *testing.T) {
	old := numberedLines(4)
	new := old + "appended\n"
	fd := Compute([]byte(old), []byte(new), "file.txt")

	require.Len(t, fd.Hunks, 1)
	h := fd.Hunks[0]
	last := h.Lines[len(h.Lines)-1]
	assert.Equal(t, LineAddition, last.Type)
	assert.Equal(t, "appended", last.Content)
	assert.Equal(t, 5, last.NewLineNum)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, splitLines(""))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "b"}, splitLines("a\nb"))
	assert.Equal(t, []string{""}, splitLines("\n"))
}
