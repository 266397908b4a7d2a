// Package statusbar renders the single-line footer: repository name,
// active revset, selection summary and the most recent error.
package statusbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tatami-vcs/tatami/internal/ui/styles"
)

// Model holds the state displayed in the footer.
type Model struct {
	repoName       string
	revset         string
	selected       string
	revisions      int
	wcChanged      int
	hasWorkingCopy bool
	err            error
	width          int
}

// New creates a status bar for the given repository.
func New(repoName string) Model {
	return Model{repoName: repoName}
}

func (m Model) SetWidth(width int) Model {
	m.width = width
	return m
}

func (m Model) SetRevset(revset string) Model {
	m.revset = revset
	return m
}

func (m Model) SetSelected(changeID string) Model {
	m.selected = changeID
	return m
}

func (m Model) SetRevisionCount(n int) Model {
	m.revisions = n
	return m
}

// SetWorkingCopy records the changed-file count of the working copy.
func (m Model) SetWorkingCopy(changedFiles int) Model {
	m.hasWorkingCopy = true
	m.wcChanged = changedFiles
	return m
}

// SetError shows err until the next successful operation clears it.
func (m Model) SetError(err error) Model {
	m.err = err
	return m
}

// View renders the bar.
func (m Model) View() string {
	if m.err != nil {
		return styles.ErrorStyle.Render(styles.TruncateString("error: "+m.err.Error(), m.widthOr(120)))
	}

	parts := []string{
		styles.StatusBarKeyStyle.Render(m.repoName),
		styles.StatusBarStyle.Render(fmt.Sprintf("%d revisions", m.revisions)),
	}
	if m.hasWorkingCopy {
		parts = append(parts, styles.StatusBarStyle.Render(fmt.Sprintf("@ %d changed", m.wcChanged)))
	}
	if m.revset != "" {
		parts = append(parts, styles.StatusBarStyle.Render("revset: "+m.revset))
	}
	if m.selected != "" {
		parts = append(parts, styles.StatusBarStyle.Render("selected: "+m.selected))
	}
	parts = append(parts, styles.HelpStyle.Render("? help"))

	line := strings.Join(parts, styles.StatusBarStyle.Render(" │ "))
	if m.width > 0 && lipgloss.Width(line) > m.width {
		return styles.TruncateString(line, m.width)
	}
	return line
}

func (m Model) widthOr(fallback int) int {
	if m.width > 0 {
		return m.width
	}
	return fallback
}
