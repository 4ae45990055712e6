package meta

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects the evaluator that executes a compiled program.
type Mode int

const (
	// DepthFirst explores alternatives one at a time with the backtracker.
	DepthFirst Mode = iota

	// BreadthFirst advances all alternatives together with the PikeVM.
	BreadthFirst
)

// String returns the canonical name of the mode.
func (m Mode) String() string {
	switch m {
	case DepthFirst:
		return "depth-first"
	case BreadthFirst:
		return "breadth-first"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses a mode name. It accepts "depth-first", "depth",
// "breadth-first" and "breadth", ignoring case.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "depth-first", "depth":
		return DepthFirst, nil
	case "breadth-first", "breadth":
		return BreadthFirst, nil
	default:
		return 0, fmt.Errorf("meta: unknown mode %q", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("meta: mode must be a string but found %s", value.ShortTag())
	}
	parsed, err := ParseMode(value.Value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m Mode) MarshalYAML() (any, error) {
	return m.String(), nil
}
