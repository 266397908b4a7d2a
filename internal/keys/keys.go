// Package keys contains keybinding definitions.
package keys

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/tatami-vcs/tatami/internal/config"
	"github.com/tatami-vcs/tatami/internal/navigation"
)

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	// Navigation
	Up          key.Binding
	Down        key.Binding
	Parent      key.Binding
	Child       key.Binding
	WorkingCopy key.Binding
	Top         key.Binding
	Last        key.Binding
	Deselect    key.Binding

	// Actions
	Refresh key.Binding
	Revset  key.Binding

	// General
	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Parent: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "jump to parent"),
		),
		Child: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "jump to child"),
		),
		WorkingCopy: key.NewBinding(
			key.WithKeys("@"),
			key.WithHelp("@", "jump to working copy"),
		),
		Top: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g g", "jump to top"),
		),
		Last: key.NewBinding(
			key.WithKeys("G"),
			key.WithHelp("G", "jump to bottom"),
		),
		Deselect: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear selection"),
		),

		// Actions
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh log"),
		),
		Revset: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "edit revset"),
		),

		// General
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Parent, k.Child},             // Movement
		{k.WorkingCopy, k.Top, k.Last, k.Deselect},    // Jumps
		{k.Refresh, k.Revset},                         // Actions
		{k.Help, k.Quit},                              // General
	}
}

// ApplyConfig overrides default bindings with user-configured keys.
// Empty config entries keep the defaults. The caller is expected to have
// validated the config first.
func (k KeyMap) ApplyConfig(kb config.KeybindingsConfig) KeyMap {
	override := func(binding key.Binding, keys []string) key.Binding {
		if len(keys) == 0 {
			return binding
		}
		help := binding.Help()
		return key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(keys[0], help.Desc),
		)
	}

	k.Down = override(k.Down, kb.Down)
	k.Up = override(k.Up, kb.Up)
	k.Parent = override(k.Parent, kb.Parent)
	k.Child = override(k.Child, kb.Child)
	k.WorkingCopy = override(k.WorkingCopy, kb.WorkingCopy)
	k.Last = override(k.Last, kb.Last)
	k.Deselect = override(k.Deselect, kb.Deselect)
	k.Refresh = override(k.Refresh, kb.Refresh)
	k.Revset = override(k.Revset, kb.Revset)
	k.Help = override(k.Help, kb.Help)
	k.Quit = override(k.Quit, kb.Quit)
	return k
}

// NavigationBindings converts the keymap into the resolver's binding set.
func (k KeyMap) NavigationBindings() navigation.Bindings {
	return navigation.Bindings{
		Down:        k.Down.Keys(),
		Up:          k.Up.Keys(),
		Parent:      k.Parent.Keys(),
		Child:       k.Child.Keys(),
		WorkingCopy: k.WorkingCopy.Keys(),
		Last:        k.Last.Keys(),
		Deselect:    k.Deselect.Keys(),
		TopChord:    "g",
	}
}
