// Package navigation turns key presses into selection targets over a
// display-ordered revision graph. The resolver is independent of any
// event-handling framework; the UI layer decodes raw events, calls
// Resolve, and applies the outcome.
package navigation

import (
	"slices"

	"github.com/tatami-vcs/tatami/internal/graph"
	"github.com/tatami-vcs/tatami/internal/input"
	"github.com/tatami-vcs/tatami/internal/log"
)

// Bindings maps navigation actions to the key strings that trigger them.
type Bindings struct {
	Down        []string
	Up          []string
	Parent      []string
	Child       []string
	WorkingCopy []string
	Last        []string
	Deselect    []string
	// TopChord is the key that, pressed twice within the chord window,
	// jumps to the first revision.
	TopChord string
}

// DefaultBindings returns the stock vim-flavored keys.
func DefaultBindings() Bindings {
	return Bindings{
		Down:        []string{"j", "down"},
		Up:          []string{"k", "up"},
		Parent:      []string{"h", "left"},
		Child:       []string{"l", "right"},
		WorkingCopy: []string{"@"},
		Last:        []string{"G"},
		Deselect:    []string{"esc"},
		TopChord:    "g",
	}
}

// Outcome is the result of resolving one key press.
//
// Target and Clear are mutually exclusive: Target carries the change id to
// select, Clear explicitly drops the selection (distinct from "no change").
// Handled reports that the key belonged to navigation and should not be
// forwarded, regardless of whether a target was produced — "down" on the
// last revision is handled but changes nothing.
type Outcome struct {
	Target  string
	Clear   bool
	Handled bool
}

// Resolver interprets navigation keys. It owns the chord detector for the
// double-tap jump-to-top; everything else is computed fresh from the view
// passed to each Resolve call.
type Resolver struct {
	bindings Bindings
	chord    *input.ChordDetector
	clock    input.Clock
}

// New creates a resolver with the given bindings. A nil clock falls back
// to the real one.
func New(bindings Bindings, clock input.Clock) *Resolver {
	if clock == nil {
		clock = input.RealClock{}
	}
	return &Resolver{
		bindings: bindings,
		chord:    input.NewChordDetector(input.DefaultChordWindow),
		clock:    clock,
	}
}

// Resolve computes the navigation outcome for one key press given the
// current selection and revision view. Absent lookups (empty view, missing
// parent, no working copy) degrade to a no-op; navigation never fails.
func (r *Resolver) Resolve(selected string, ev input.Event, view graph.View) Outcome {
	// Navigation keys carry no command modifiers. Shift is part of the
	// key string itself ("G"), so only the command modifiers gate here.
	if ev.Meta || ev.Ctrl || ev.Alt {
		return Outcome{}
	}

	// Every key press feeds the chord detector: a different key both
	// fails a pending "g g" and becomes the new pending observation.
	if ev.Key != r.bindings.TopChord || r.bindings.TopChord == "" {
		r.chord.Observe(ev.Key, r.clock.Now())
	}

	// Deselection works even on an empty view.
	if slices.Contains(r.bindings.Deselect, ev.Key) {
		if selected == "" {
			return Outcome{Handled: true}
		}
		log.Debug(log.CatNav, "Selection cleared")
		return Outcome{Clear: true, Handled: true}
	}

	if view.Len() == 0 {
		return Outcome{}
	}

	idx := r.currentIndex(selected, view)

	switch {
	case slices.Contains(r.bindings.Down, ev.Key):
		if next, ok := view.At(idx + 1); ok {
			return Outcome{Target: next.ChangeID, Handled: true}
		}
		return Outcome{Handled: true}

	case slices.Contains(r.bindings.Up, ev.Key):
		if idx > 0 {
			if prev, ok := view.At(idx - 1); ok {
				return Outcome{Target: prev.ChangeID, Handled: true}
			}
		}
		return Outcome{Handled: true}

	case slices.Contains(r.bindings.Parent, ev.Key):
		if current, ok := view.At(idx); ok {
			if parent, ok := view.Parent(current); ok {
				return Outcome{Target: parent.ChangeID, Handled: true}
			}
		}
		return Outcome{Handled: true}

	case slices.Contains(r.bindings.Child, ev.Key):
		if current, ok := view.At(idx); ok {
			if child, ok := view.Child(current); ok {
				return Outcome{Target: child.ChangeID, Handled: true}
			}
		}
		return Outcome{Handled: true}

	case slices.Contains(r.bindings.WorkingCopy, ev.Key):
		if wc, ok := view.WorkingCopy(); ok {
			return Outcome{Target: wc.ChangeID, Handled: true}
		}
		return Outcome{Handled: true}

	case ev.Key == r.bindings.TopChord && r.bindings.TopChord != "":
		if r.chord.Observe(ev.Key, r.clock.Now()) {
			if first, ok := view.At(0); ok {
				return Outcome{Target: first.ChangeID, Handled: true}
			}
		}
		// A pending chord press is left unhandled so other listeners
		// still see the key.
		return Outcome{}

	case slices.Contains(r.bindings.Last, ev.Key):
		if last, ok := view.At(view.Len() - 1); ok {
			return Outcome{Target: last.ChangeID, Handled: true}
		}
		return Outcome{Handled: true}
	}

	return Outcome{}
}

// currentIndex locates the selection in display order, falling back to the
// working copy and then to the top of the log.
func (r *Resolver) currentIndex(selected string, view graph.View) int {
	if selected != "" {
		if idx := view.IndexOf(selected); idx >= 0 {
			return idx
		}
	}
	if wc, ok := view.WorkingCopy(); ok {
		return view.IndexOf(wc.ChangeID)
	}
	return 0
}
