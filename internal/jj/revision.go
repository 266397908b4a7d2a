// Package jj wraps the jj (Jujutsu) command line client: repository
// discovery, log fetching, working-copy status, and file contents at a
// revision.
package jj

import "time"

// Revision is one node in the revision history graph as reported by jj.
// ChangeID is the stable logical identity of a change and survives rewrites
// of its content; CommitID names the current physical snapshot and changes
// whenever the revision is amended. Selection and keyboard-jump targets use
// ChangeID; parent/child graph edges use CommitID.
type Revision struct {
	ChangeID      string
	ChangeIDShort string
	CommitID      string
	ParentIDs     []string
	Description   string
	Author        string
	Timestamp     time.Time
	IsWorkingCopy bool
	IsImmutable   bool
	Bookmarks     []string
}

// IsRoot reports whether this is the repository's synthetic root revision.
// The root's change id is all z's in jj's reverse-hex alphabet.
func (r Revision) IsRoot() bool {
	if r.ChangeID == "" {
		return false
	}
	for _, c := range r.ChangeID {
		if c != 'z' {
			return false
		}
	}
	return true
}

// FileStatus classifies one changed file in the working copy.
type FileStatus string

const (
	FileAdded    FileStatus = "added"
	FileModified FileStatus = "modified"
	FileDeleted  FileStatus = "deleted"
	FileRenamed  FileStatus = "renamed"
)

// ChangedFile is one entry of a revision's change summary.
type ChangedFile struct {
	Path   string
	Status FileStatus
}

// Status describes the working copy: its identity and changed files.
type Status struct {
	ChangeID    string
	CommitID    string
	Description string
	Files       []ChangedFile
}
