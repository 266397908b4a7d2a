package jj

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func record(fields ...string) string {
	return strings.Join(fields, fieldSep) + recordSep
}

func TestParseLog_SingleRevision(t *testing.T) {
	out := record(
		"krtslqxmwxlp", "kr", "a1b2c3d4e5f6",
		"0f0e0d0c0b0a", "teach parser to skip comments", "Alice",
		"2026-03-01 10:30:00 +0100", "true", "false", "main,dev",
	)

	revs, err := ParseLog(out)
	require.NoError(t, err)
	require.Len(t, revs, 1)

	rev := revs[0]
	require.Equal(t, "krtslqxmwxlp", rev.ChangeID)
	require.Equal(t, "kr", rev.ChangeIDShort)
	require.Equal(t, "a1b2c3d4e5f6", rev.CommitID)
	require.Equal(t, []string{"0f0e0d0c0b0a"}, rev.ParentIDs)
	require.Equal(t, "teach parser to skip comments", rev.Description)
	require.Equal(t, "Alice", rev.Author)
	require.True(t, rev.IsWorkingCopy)
	require.False(t, rev.IsImmutable)
	require.Equal(t, []string{"main", "dev"}, rev.Bookmarks)

	want := time.Date(2026, 3, 1, 10, 30, 0, 0, time.FixedZone("", 3600))
	require.True(t, rev.Timestamp.Equal(want))
}

func TestParseLog_MultipleRevisionsKeepDisplayOrder(t *testing.T) {
	out := record("aaaaaaaaaaaa", "a", "c1", "c2", "first", "A", "2026-03-01 10:00:00 +0000", "true", "false", "") +
		record("bbbbbbbbbbbb", "b", "c2", "c3", "second", "B", "2026-03-01 09:00:00 +0000", "false", "false", "") +
		record("cccccccccccc", "c", "c3", "", "third", "C", "2026-03-01 08:00:00 +0000", "false", "true", "")

	revs, err := ParseLog(out)
	require.NoError(t, err)
	require.Len(t, revs, 3)
	require.Equal(t, "aaaaaaaaaaaa", revs[0].ChangeID)
	require.Equal(t, "bbbbbbbbbbbb", revs[1].ChangeID)
	require.Equal(t, "cccccccccccc", revs[2].ChangeID)
	require.Nil(t, revs[2].ParentIDs, "root has no parents")
}

func TestParseLog_MergeRevisionParents(t *testing.T) {
	out := record("dddddddddddd", "d", "c9", "c1,c2", "merge", "D", "2026-03-01 10:00:00 +0000", "false", "false", "")

	revs, err := ParseLog(out)
	require.NoError(t, err)
	require.Equal(t, []string{"c1", "c2"}, revs[0].ParentIDs, "first parent is primary")
}

func TestParseLog_EmptyOutput(t *testing.T) {
	revs, err := ParseLog("")
	require.NoError(t, err)
	require.Empty(t, revs)
}

func TestParseLog_MalformedRecord(t *testing.T) {
	_, err := ParseLog("only" + fieldSep + "three" + fieldSep + "fields" + recordSep)
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed log record")
}

func TestRevision_IsRoot(t *testing.T) {
	require.True(t, Revision{ChangeID: "zzzzzzzzzzzz"}.IsRoot())
	require.False(t, Revision{ChangeID: "zzzzzzzzzzza"}.IsRoot())
	require.False(t, Revision{}.IsRoot())
}

func TestParseSummary(t *testing.T) {
	out := "M internal/app/app.go\nA docs/notes.md\nD old.txt\nR renamed.go\n"
	files := ParseSummary(out)
	require.Equal(t, []ChangedFile{
		{Path: "internal/app/app.go", Status: FileModified},
		{Path: "docs/notes.md", Status: FileAdded},
		{Path: "old.txt", Status: FileDeleted},
		{Path: "renamed.go", Status: FileRenamed},
	}, files)
}

func TestParseSummary_IgnoresNoise(t *testing.T) {
	require.Empty(t, ParseSummary(""))
	require.Empty(t, ParseSummary("\n\n"))
	require.Empty(t, ParseSummary("? unknown marker\n"))
}
