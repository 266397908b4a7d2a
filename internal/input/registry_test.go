package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry_DispatchInvokesMatchingAction(t *testing.T) {
	r := NewRegistry()
	fired := 0
	_, err := r.Register(Shortcut{Key: "q", Action: func() { fired++ }})
	require.NoError(t, err)

	handled := r.Dispatch(Event{Key: "q"}, false)
	require.True(t, handled)
	require.Equal(t, 1, fired, "action runs exactly once per event")
}

func TestRegistry_KeyMismatchIgnored(t *testing.T) {
	r := NewRegistry()
	fired := false
	_, err := r.Register(Shortcut{Key: "q", Action: func() { fired = true }})
	require.NoError(t, err)

	require.False(t, r.Dispatch(Event{Key: "x"}, false))
	require.False(t, fired)
}

func TestRegistry_ModifierMismatchIgnored(t *testing.T) {
	r := NewRegistry()
	fired := false
	_, err := r.Register(Shortcut{
		Key:       "k",
		Modifiers: ModifierSpec{Ctrl: Required},
		Action:    func() { fired = true },
	})
	require.NoError(t, err)

	require.False(t, r.Dispatch(Event{Key: "k"}, false))
	require.True(t, r.Dispatch(Event{Key: "k", Ctrl: true}, false))
	require.True(t, fired)
}

func TestRegistry_DisabledShortcutIgnored(t *testing.T) {
	r := NewRegistry()
	enabled := false
	fired := 0
	_, err := r.Register(Shortcut{
		Key:     "r",
		Enabled: func() bool { return enabled },
		Action:  func() { fired++ },
	})
	require.NoError(t, err)

	require.False(t, r.Dispatch(Event{Key: "r"}, false))
	require.Equal(t, 0, fired)

	enabled = true
	require.True(t, r.Dispatch(Event{Key: "r"}, false))
	require.Equal(t, 1, fired)
}

func TestRegistry_SuppressedWhileInputFocused(t *testing.T) {
	r := NewRegistry()
	var plain, rude int
	_, err := r.Register(Shortcut{Key: "q", Action: func() { plain++ }})
	require.NoError(t, err)
	_, err = r.Register(Shortcut{Key: "q", IgnoreInputFocus: true, Action: func() { rude++ }})
	require.NoError(t, err)

	require.True(t, r.Dispatch(Event{Key: "q"}, true))
	require.Equal(t, 0, plain, "focus-respecting shortcut stays quiet while typing")
	require.Equal(t, 1, rude, "IgnoreInputFocus shortcut still fires")
}

func TestRegistry_SharedKeyAllRegistrationsFire(t *testing.T) {
	// No precedence is defined between registrations sharing a key and
	// modifier spec: both fire, in registration order.
	r := NewRegistry()
	var order []string
	_, err := r.Register(Shortcut{Key: "y", Action: func() { order = append(order, "first") }})
	require.NoError(t, err)
	_, err = r.Register(Shortcut{Key: "y", Action: func() { order = append(order, "second") }})
	require.NoError(t, err)

	require.True(t, r.Dispatch(Event{Key: "y"}, false))
	require.Equal(t, []string{"first", "second"}, order)
}

func TestRegistry_UnregisterDetachesImmediately(t *testing.T) {
	r := NewRegistry()
	fired := 0
	reg, err := r.Register(Shortcut{Key: "q", Action: func() { fired++ }})
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	reg.Unregister()
	require.Equal(t, 0, r.Len())
	require.False(t, r.Dispatch(Event{Key: "q"}, false))
	require.Equal(t, 0, fired)

	// Idempotent.
	reg.Unregister()
	require.Equal(t, 0, r.Len())
}

func TestRegistry_RegisterValidation(t *testing.T) {
	r := NewRegistry()

	_, err := r.Register(Shortcut{Action: func() {}})
	require.ErrorIs(t, err, errEmptyKey)

	_, err = r.Register(Shortcut{Key: "q"})
	require.ErrorIs(t, err, errNilAction)

	_, err = r.Register(Shortcut{
		Key:       "q",
		Modifiers: ModifierSpec{Ctrl: Constraint(9)},
		Action:    func() {},
	})
	require.ErrorIs(t, err, errInvalidConstraint)
}

func TestRegistry_CrossPlatformQuitSpec(t *testing.T) {
	// The meta+ctrl OR rule lets a single registration cover cmd+c and
	// ctrl+c.
	r := NewRegistry()
	fired := 0
	_, err := r.Register(Shortcut{
		Key:              "c",
		Modifiers:        ModifierSpec{Meta: Required, Ctrl: Required},
		IgnoreInputFocus: true,
		Action:           func() { fired++ },
	})
	require.NoError(t, err)

	require.True(t, r.Dispatch(Event{Key: "c", Ctrl: true}, true))
	require.True(t, r.Dispatch(Event{Key: "c", Meta: true}, false))
	require.False(t, r.Dispatch(Event{Key: "c"}, false))
	require.Equal(t, 2, fired)
}
