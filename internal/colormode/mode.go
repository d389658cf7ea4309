package colormode

import "fmt"

// Mode is one selectable visual theme.
type Mode struct {
	Name  string `json:"name"`  // Human-readable label shown in the dropdown.
	Value string `json:"value"` // Stable identifier used for lookup and persistence.
	Icon  string `json:"icon"`  // Locator of the mode's SVG icon.
}

// ModeSet is the fixed, ordered set of modes available on a page.
// It is immutable once built.
type ModeSet struct {
	modes []Mode
	index map[string]int
}

// NewModeSet validates modes and returns them as a ModeSet. Values must be
// non-empty and unique.
func NewModeSet(modes []Mode) (*ModeSet, error) {
	if len(modes) == 0 {
		return nil, fmt.Errorf("at least one color mode is required")
	}

	s := &ModeSet{
		modes: make([]Mode, len(modes)),
		index: make(map[string]int, len(modes)),
	}
	for i, m := range modes {
		if m.Value == "" {
			return nil, fmt.Errorf("color mode %d (%q) has an empty value", i, m.Name)
		}
		if _, dup := s.index[m.Value]; dup {
			return nil, fmt.Errorf("duplicate color mode value %q", m.Value)
		}
		s.modes[i] = m
		s.index[m.Value] = i
	}
	return s, nil
}

// All returns the modes in configured order.
func (s *ModeSet) All() []Mode {
	out := make([]Mode, len(s.modes))
	copy(out, s.modes)
	return out
}

// Lookup returns the mode with the given value.
func (s *ModeSet) Lookup(value string) (Mode, bool) {
	i, ok := s.index[value]
	if !ok {
		return Mode{}, false
	}
	return s.modes[i], true
}

// Len returns the number of modes.
func (s *ModeSet) Len() int { return len(s.modes) }
