// Package graph projects a display-ordered revision slice into the lookups
// keyboard navigation needs: position by change id, the working copy, and
// parent/child edges by commit id.
package graph

import "github.com/tatami-vcs/tatami/internal/jj"

// View wraps one display-ordered revision slice. All operations are pure
// reads; nothing is cached across log replacements, so the consumer simply
// builds a fresh View from the current slice each time.
type View struct {
	revisions []jj.Revision
}

// NewView creates a view over revisions in display order.
func NewView(revisions []jj.Revision) View {
	return View{revisions: revisions}
}

// Len returns the number of revisions in display order.
func (v View) Len() int {
	return len(v.revisions)
}

// At returns the revision at the given display-order position.
func (v View) At(i int) (jj.Revision, bool) {
	if i < 0 || i >= len(v.revisions) {
		return jj.Revision{}, false
	}
	return v.revisions[i], true
}

// IndexOf returns the display-order position of the revision with the given
// change id, or -1 when absent.
func (v View) IndexOf(changeID string) int {
	for i, rev := range v.revisions {
		if rev.ChangeID == changeID {
			return i
		}
	}
	return -1
}

// WorkingCopy returns the revision currently checked out, if any.
func (v View) WorkingCopy() (jj.Revision, bool) {
	for _, rev := range v.revisions {
		if rev.IsWorkingCopy {
			return rev, true
		}
	}
	return jj.Revision{}, false
}

// Parent resolves rev's primary parent: the revision whose commit id equals
// the first entry of rev's parent list. Parents outside the revision set
// (graph roots, elided history) resolve to nothing rather than failing.
func (v View) Parent(rev jj.Revision) (jj.Revision, bool) {
	if len(rev.ParentIDs) == 0 {
		return jj.Revision{}, false
	}
	primary := rev.ParentIDs[0]
	for _, candidate := range v.revisions {
		if candidate.CommitID == primary {
			return candidate, true
		}
	}
	return jj.Revision{}, false
}

// Child resolves the first revision in display order that lists rev's
// commit id among its parents. Display-order position is the tie-break when
// a revision has several children.
func (v View) Child(rev jj.Revision) (jj.Revision, bool) {
	for _, candidate := range v.revisions {
		for _, parent := range candidate.ParentIDs {
			if parent == rev.CommitID {
				return candidate, true
			}
		}
	}
	return jj.Revision{}, false
}
