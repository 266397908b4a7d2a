package input

import (
	"errors"
	"sync"

	"github.com/tatami-vcs/tatami/internal/log"
)

var (
	errEmptyKey          = errors.New("shortcut key must not be empty")
	errNilAction         = errors.New("shortcut action must not be nil")
	errInvalidConstraint = errors.New("modifier constraint out of range")
)

// Shortcut configures one registration against the global key stream.
type Shortcut struct {
	// Key is compared for exact equality with the event's key string.
	Key string

	// Modifiers declares which modifier keys must or must not be held.
	Modifiers ModifierSpec

	// Enabled is evaluated on every dispatch; nil means always enabled.
	Enabled func() bool

	// IgnoreInputFocus lets the shortcut fire even while a text-input
	// control has focus. Off by default so shortcuts stay quiet while
	// the user is typing.
	IgnoreInputFocus bool

	// Action runs exactly once, synchronously, on the dispatching
	// goroutine when the shortcut matches.
	Action func()
}

// Registry owns the set of active shortcut registrations and dispatches
// key events to them. All methods are safe for concurrent use, though the
// update loop dispatches from a single goroutine.
type Registry struct {
	mu   sync.Mutex
	regs []*Registration
}

// Registration is a live shortcut. Unregister releases it; a registration
// left behind by a torn-down component would otherwise keep firing.
type Registration struct {
	registry *Registry
	shortcut Shortcut
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register validates the configuration and attaches the shortcut.
// Registrations are independent: several may share a key and modifier
// spec, and all of them fire on a matching event in registration order.
func (r *Registry) Register(s Shortcut) (*Registration, error) {
	if s.Key == "" {
		return nil, errEmptyKey
	}
	if s.Action == nil {
		return nil, errNilAction
	}
	if err := s.Modifiers.validate(); err != nil {
		return nil, err
	}

	reg := &Registration{registry: r, shortcut: s}
	r.mu.Lock()
	r.regs = append(r.regs, reg)
	r.mu.Unlock()
	return reg, nil
}

// Unregister detaches the shortcut immediately. Safe to call more than once.
func (reg *Registration) Unregister() {
	r := reg.registry
	if r == nil {
		return
	}
	reg.registry = nil

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, candidate := range r.regs {
		if candidate == reg {
			r.regs = append(r.regs[:i], r.regs[i+1:]...)
			return
		}
	}
}

// Dispatch offers one key event to every registration. inputFocused tells
// the registry a text-input control currently has focus; registrations
// without IgnoreInputFocus are skipped so typing never triggers them.
// Returns true when at least one action ran, in which case the caller
// should not forward the event any further.
func (r *Registry) Dispatch(ev Event, inputFocused bool) bool {
	r.mu.Lock()
	snapshot := make([]*Registration, len(r.regs))
	copy(snapshot, r.regs)
	r.mu.Unlock()

	handled := false
	for _, reg := range snapshot {
		s := reg.shortcut
		if s.Enabled != nil && !s.Enabled() {
			continue
		}
		if inputFocused && !s.IgnoreInputFocus {
			continue
		}
		if ev.Key != s.Key {
			continue
		}
		if !s.Modifiers.Matches(ev) {
			continue
		}
		log.Debug(log.CatInput, "Shortcut fired", "key", s.Key)
		s.Action()
		handled = true
	}
	return handled
}

// Len returns the number of active registrations.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}
