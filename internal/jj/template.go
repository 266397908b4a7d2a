package jj

import (
	"fmt"
	"strings"
	"time"
)

// Log output is machine-parsed: one record per revision terminated by a
// record separator, fields joined by a unit separator. Neither byte can
// appear in commit metadata.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

const timestampFormat = "2006-01-02 15:04:05 -0700"

// logTemplate renders the fields ParseLog expects, in order: change id,
// shortest unique change id prefix, commit id, parent commit ids,
// description first line, author name, committer timestamp, working-copy
// flag, immutable flag, bookmarks.
var logTemplate = strings.Join([]string{
	`change_id.short(12)`,
	`change_id.shortest()`,
	`commit_id.short(12)`,
	`parents.map(|p| p.commit_id().short(12)).join(",")`,
	`if(description, description.first_line(), "(no description)")`,
	`author.name()`,
	`committer.timestamp().format("%Y-%m-%d %H:%M:%S %z")`,
	`if(current_working_copy, "true", "false")`,
	`if(immutable, "true", "false")`,
	`bookmarks.join(",")`,
}, ` ++ "`+fieldSep+`" ++ `) + ` ++ "` + recordSep + `"`

const logFieldCount = 10

// ParseLog parses the output of jj log rendered with logTemplate into
// revisions in display order.
func ParseLog(output string) ([]Revision, error) {
	var revisions []Revision

	for _, record := range strings.Split(output, recordSep) {
		record = strings.TrimLeft(record, "\r\n")
		if record == "" {
			continue
		}

		fields := strings.Split(record, fieldSep)
		if len(fields) != logFieldCount {
			return nil, fmt.Errorf("malformed log record: %d fields, want %d", len(fields), logFieldCount)
		}

		rev := Revision{
			ChangeID:      fields[0],
			ChangeIDShort: fields[1],
			CommitID:      fields[2],
			ParentIDs:     splitList(fields[3]),
			Description:   fields[4],
			Author:        fields[5],
			IsWorkingCopy: fields[7] == "true",
			IsImmutable:   fields[8] == "true",
			Bookmarks:     splitList(fields[9]),
		}

		if ts, err := time.Parse(timestampFormat, fields[6]); err == nil {
			rev.Timestamp = ts
		}

		revisions = append(revisions, rev)
	}

	return revisions, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
