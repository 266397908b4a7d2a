// Package input implements the keyboard layer: key events with modifier
// flags, declarative modifier matching, a shortcut registry, and double-tap
// chord detection.
package input

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Event is one observed key press. Key is the literal key string the way a
// keyboard reports it: a shifted letter arrives as its uppercase form
// ("G", Shift set), named keys as their lowercase name ("esc", "enter",
// "up"). Modifier flags are decoded separately so shortcuts can match on
// them independently of the key string.
type Event struct {
	Key   string
	Meta  bool
	Ctrl  bool
	Alt   bool
	Shift bool
}

// DecodeKeyMsg converts a Bubble Tea key message into an Event.
// Bubble Tea encodes modifiers into the key string ("ctrl+x", "alt+enter",
// "shift+tab"); terminals do not deliver a distinct meta flag, so Meta is
// never set here and shortcuts that declare meta rely on the combined
// meta/ctrl matching rule.
func DecodeKeyMsg(msg tea.KeyMsg) Event {
	s := msg.String()

	var ev Event
	for {
		switch {
		case strings.HasPrefix(s, "ctrl+"):
			ev.Ctrl = true
			s = strings.TrimPrefix(s, "ctrl+")
		case strings.HasPrefix(s, "alt+"):
			ev.Alt = true
			s = strings.TrimPrefix(s, "alt+")
		case strings.HasPrefix(s, "shift+"):
			ev.Shift = true
			s = strings.TrimPrefix(s, "shift+")
		default:
			ev.Key = s
			if isShiftedRune(s) {
				ev.Shift = true
			}
			return ev
		}
	}
}

// isShiftedRune reports whether the key string is a single uppercase letter,
// which terminals deliver instead of a shift flag.
func isShiftedRune(s string) bool {
	if len(s) != 1 {
		return false
	}
	return s[0] >= 'A' && s[0] <= 'Z'
}
