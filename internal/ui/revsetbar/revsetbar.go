// Package revsetbar provides the revset editing bar. While focused it
// captures all key input; submitting or cancelling hands control back to
// the log view.
package revsetbar

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tatami-vcs/tatami/internal/ui/styles"
)

// SubmittedMsg is emitted when the user confirms a revset expression.
type SubmittedMsg struct {
	Revset string
}

// CancelledMsg is emitted when editing is aborted; the previous revset
// stays active.
type CancelledMsg struct{}

// Model wraps a single-line text input for revset expressions.
type Model struct {
	input textinput.Model
}

// New creates the revset bar with the given initial expression.
func New(revset string) Model {
	ti := textinput.New()
	ti.Prompt = "revset> "
	ti.PromptStyle = styles.RevsetPromptStyle
	ti.Placeholder = "ancestors(@, 100)"
	ti.CharLimit = 512
	ti.SetValue(revset)
	return Model{input: ti}
}

// Focused reports whether the bar is capturing input.
func (m Model) Focused() bool {
	return m.input.Focused()
}

// Focus starts editing, putting the cursor at the end.
func (m Model) Focus() (Model, tea.Cmd) {
	cmd := m.input.Focus()
	m.input.CursorEnd()
	return m, cmd
}

// Blur stops editing.
func (m Model) Blur() Model {
	m.input.Blur()
	return m
}

// Value returns the current expression.
func (m Model) Value() string {
	return m.input.Value()
}

// SetValue replaces the expression, e.g. after an external revset change.
func (m Model) SetValue(revset string) Model {
	m.input.SetValue(revset)
	return m
}

// SetWidth sets the display width.
func (m Model) SetWidth(width int) Model {
	m.input.Width = width - len(m.input.Prompt)
	return m
}

// Update handles key input while focused. Enter submits, esc cancels;
// everything else goes to the text input.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.input.Focused() {
		return m, nil
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case "enter":
			value := m.input.Value()
			m.input.Blur()
			return m, func() tea.Msg { return SubmittedMsg{Revset: value} }
		case "esc":
			m.input.Blur()
			return m, func() tea.Msg { return CancelledMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the bar.
func (m Model) View() string {
	return m.input.View()
}
