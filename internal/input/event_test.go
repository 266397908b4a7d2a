package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func TestDecodeKeyMsg(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
		want Event
	}{
		{
			name: "plain rune",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}},
			want: Event{Key: "j"},
		},
		{
			name: "uppercase rune carries shift",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'G'}},
			want: Event{Key: "G", Shift: true},
		},
		{
			name: "at sign",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'@'}},
			want: Event{Key: "@"},
		},
		{
			name: "ctrl key",
			msg:  tea.KeyMsg{Type: tea.KeyCtrlC},
			want: Event{Key: "c", Ctrl: true},
		},
		{
			name: "alt rune",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true},
			want: Event{Key: "x", Alt: true},
		},
		{
			name: "shift tab",
			msg:  tea.KeyMsg{Type: tea.KeyShiftTab},
			want: Event{Key: "tab", Shift: true},
		},
		{
			name: "named key",
			msg:  tea.KeyMsg{Type: tea.KeyEscape},
			want: Event{Key: "esc"},
		},
		{
			name: "arrow key",
			msg:  tea.KeyMsg{Type: tea.KeyDown},
			want: Event{Key: "down"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, DecodeKeyMsg(tt.msg))
		})
	}
}
