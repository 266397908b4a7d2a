// Package diffpanel renders the changed files of the selected revision
// with per-file diff stats and, when space allows, the hunks themselves.
package diffpanel

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"

	"github.com/tatami-vcs/tatami/internal/diff"
	"github.com/tatami-vcs/tatami/internal/jj"
	"github.com/tatami-vcs/tatami/internal/ui/styles"
)

// Model is the diff panel component.
type Model struct {
	description string
	files       []jj.ChangedFile
	diffs       map[string]diff.FileDiff
	showHunks   bool
	width       int
	height      int
}

// New creates an empty diff panel.
func New() Model {
	return Model{diffs: make(map[string]diff.FileDiff)}
}

func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// SetShowHunks toggles hunk rendering below the file list.
func (m Model) SetShowHunks(show bool) Model {
	m.showHunks = show
	return m
}

// SetRevision replaces the panel content for a newly selected revision.
func (m Model) SetRevision(description string, files []jj.ChangedFile) Model {
	m.description = description
	m.files = files
	m.diffs = make(map[string]diff.FileDiff)
	return m
}

// SetFileDiff attaches a computed diff for one of the changed files.
func (m Model) SetFileDiff(fd diff.FileDiff) Model {
	m.diffs[fd.Path] = fd
	return m
}

// Clear empties the panel, e.g. after a deselect.
func (m Model) Clear() Model {
	m.description = ""
	m.files = nil
	m.diffs = make(map[string]diff.FileDiff)
	return m
}

func statusMarker(status jj.FileStatus) (string, func(...string) string) {
	switch status {
	case jj.FileAdded:
		return "A", styles.DiffAddedStyle.Render
	case jj.FileDeleted:
		return "D", styles.DiffRemovedStyle.Render
	case jj.FileRenamed:
		return "R", styles.DiffContextStyle.Render
	default:
		return "M", styles.DiffContextStyle.Render
	}
}

// View renders the panel.
func (m Model) View() string {
	if len(m.files) == 0 {
		if m.description == "" {
			return styles.HelpStyle.Render("(select a revision to see its changes)")
		}
		return styles.DescriptionStyle.Render(m.description) + "\n\n" +
			styles.HelpStyle.Render("(no changed files)")
	}

	var b strings.Builder
	b.WriteString(styles.DescriptionStyle.Render(m.description))
	b.WriteString("\n\n")

	for _, f := range m.files {
		marker, style := statusMarker(f.Status)
		line := fmt.Sprintf("%s %s", style(marker), f.Path)
		if fd, ok := m.diffs[f.Path]; ok {
			line += "  " + m.renderStat(fd)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.showHunks {
		for _, f := range m.files {
			fd, ok := m.diffs[f.Path]
			if !ok || fd.IsBinary {
				continue
			}
			b.WriteString("\n")
			b.WriteString(m.renderHunks(fd))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderStat(fd diff.FileDiff) string {
	if fd.IsBinary {
		return styles.HelpStyle.Render("(binary)")
	}
	return styles.DiffAddedStyle.Render(fmt.Sprintf("+%d", fd.Additions)) + " " +
		styles.DiffRemovedStyle.Render(fmt.Sprintf("-%d", fd.Deletions))
}

func (m Model) renderHunks(fd diff.FileDiff) string {
	var b strings.Builder
	for _, h := range fd.Hunks {
		b.WriteString(styles.DiffHeaderStyle.Render(h.Header))
		b.WriteString("\n")
		for _, l := range h.Lines {
			var line string
			switch l.Type {
			case diff.LineAddition:
				line = styles.DiffAddedStyle.Render("+" + l.Content)
			case diff.LineDeletion:
				line = styles.DiffRemovedStyle.Render("-" + l.Content)
			default:
				line = styles.DiffContextStyle.Render(" " + l.Content)
			}
			b.WriteString(m.clip(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// clip cuts a rendered line at the panel edge. Long diff lines must not
// wrap, wrapping would break the column layout.
func (m Model) clip(line string) string {
	if m.width <= 0 {
		return line
	}
	return truncate.String(line, uint(m.width))
}
