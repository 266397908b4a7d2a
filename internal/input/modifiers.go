package input

// Constraint is the declared requirement for a single modifier key.
// The zero value places no constraint on the modifier.
type Constraint int8

const (
	// Any matches whether or not the modifier is pressed.
	Any Constraint = iota
	// Required matches only when the modifier is pressed.
	Required
	// Forbidden matches only when the modifier is not pressed.
	Forbidden
)

// Valid reports whether c is one of the enumerated constraint values.
func (c Constraint) Valid() bool {
	return c >= Any && c <= Forbidden
}

// ModifierSpec declares which modifier keys must, must not, or may be held
// for a shortcut to fire.
//
// Alt and shift are matched individually. Meta and ctrl share a combined
// rule because physical keyboards vary by platform: when both are Required
// the spec matches if either is pressed, letting one registration serve
// cmd on macOS and ctrl elsewhere.
type ModifierSpec struct {
	Meta  Constraint
	Ctrl  Constraint
	Alt   Constraint
	Shift Constraint
}

// Matches reports whether the observed event satisfies the spec.
// Pure; no side effects.
func (s ModifierSpec) Matches(ev Event) bool {
	if s.Alt == Required && !ev.Alt {
		return false
	}
	if s.Alt == Forbidden && ev.Alt {
		return false
	}
	if s.Shift == Required && !ev.Shift {
		return false
	}
	if s.Shift == Forbidden && ev.Shift {
		return false
	}

	switch {
	case s.Meta == Required && s.Ctrl == Required:
		return ev.Meta || ev.Ctrl
	case s.Meta == Required:
		return ev.Meta
	case s.Ctrl == Required:
		return ev.Ctrl
	case s.Meta == Forbidden && s.Ctrl == Forbidden:
		return !ev.Meta && !ev.Ctrl
	default:
		return true
	}
}

func (s ModifierSpec) validate() error {
	for _, c := range []Constraint{s.Meta, s.Ctrl, s.Alt, s.Shift} {
		if !c.Valid() {
			return errInvalidConstraint
		}
	}
	return nil
}
