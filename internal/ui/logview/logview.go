// Package logview renders the revision log as a scrollable list. It is a
// pure view over a graph.View: selection and navigation decisions live in
// the app model, the logview only tracks scroll state and draws.
package logview

import (
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/tatami-vcs/tatami/internal/graph"
	"github.com/tatami-vcs/tatami/internal/jj"
	"github.com/tatami-vcs/tatami/internal/ui/styles"
)

const (
	markerWorkingCopy = "@"
	markerImmutable   = "◆"
	markerMutable     = "○"
)

// Model is the log list component.
type Model struct {
	view     graph.View
	selected string
	offset   int
	width    int
	height   int
	now      func() time.Time
}

// New creates an empty logview.
func New() Model {
	return Model{now: time.Now}
}

// SetSize updates the drawing area.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	m.clampOffset()
	return m
}

// SetRevisions replaces the revision view. The scroll position is kept
// when the current selection survives the reload, otherwise reset.
func (m Model) SetRevisions(view graph.View) Model {
	m.view = view
	if m.selected != "" && view.IndexOf(m.selected) < 0 {
		m.selected = ""
	}
	m.clampOffset()
	m.ensureVisible()
	return m
}

// Select highlights changeID and scrolls it into view. An empty id
// clears the highlight.
func (m Model) Select(changeID string) Model {
	m.selected = changeID
	m.ensureVisible()
	return m
}

// Selected returns the highlighted change id, or "".
func (m Model) Selected() string {
	return m.selected
}

// Len returns the number of revisions displayed.
func (m Model) Len() int {
	return m.view.Len()
}

func (m *Model) clampOffset() {
	maxOffset := m.view.Len() - m.height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if m.offset > maxOffset {
		m.offset = maxOffset
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) ensureVisible() {
	if m.selected == "" || m.height <= 0 {
		return
	}
	idx := m.view.IndexOf(m.selected)
	if idx < 0 {
		return
	}
	if idx < m.offset {
		m.offset = idx
	} else if idx >= m.offset+m.height {
		m.offset = idx - m.height + 1
	}
}

// View renders the visible window of the log.
func (m Model) View() string {
	if m.view.Len() == 0 {
		return styles.EmptyDescriptionStyle.Render("(no revisions)")
	}

	height := m.height
	if height <= 0 || height > m.view.Len()-m.offset {
		height = m.view.Len() - m.offset
	}

	lines := make([]string, 0, height)
	for i := m.offset; i < m.offset+height; i++ {
		rev, ok := m.view.At(i)
		if !ok {
			break
		}
		lines = append(lines, m.renderLine(rev))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderLine(rev jj.Revision) string {
	selected := rev.ChangeID == m.selected

	marker := markerMutable
	markerStyle := styles.ChangeIDStyle
	switch {
	case rev.IsWorkingCopy:
		marker = markerWorkingCopy
		markerStyle = styles.WorkingCopyStyle
	case rev.IsImmutable:
		marker = markerImmutable
		markerStyle = styles.ImmutableStyle
	}

	prefix := "  "
	if selected {
		prefix = styles.SelectedRevisionStyle.Render("❯ ")
	}

	description := rev.Description
	descStyle := styles.DescriptionStyle
	if description == "" || description == "(no description)" {
		description = "(no description)"
		descStyle = styles.EmptyDescriptionStyle
	}
	if selected {
		descStyle = styles.SelectedRevisionStyle
	}

	parts := []string{
		prefix,
		markerStyle.Render(marker),
		" ",
		styles.ChangeIDStyle.Render(rev.ChangeIDShort),
		" ",
		descStyle.Render(styles.TruncateString(description, m.descriptionWidth(rev))),
	}
	if len(rev.Bookmarks) > 0 {
		parts = append(parts, " ", styles.BookmarkStyle.Render(strings.Join(rev.Bookmarks, " ")))
	}
	parts = append(parts, " ", styles.TimestampStyle.Render(styles.RelativeTime(rev.Timestamp, m.now())))

	return strings.Join(parts, "")
}

// descriptionWidth budgets the space left for the description after the
// fixed-width columns.
func (m Model) descriptionWidth(rev jj.Revision) int {
	if m.width <= 0 {
		return 80
	}
	used := 2 + 2 + runewidth.StringWidth(rev.ChangeIDShort) + 1 + 14 // prefix, marker, id, spacing, timestamp
	for _, b := range rev.Bookmarks {
		used += runewidth.StringWidth(b) + 1
	}
	w := m.width - used
	if w < 10 {
		w = 10
	}
	return w
}
