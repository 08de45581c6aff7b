package fsm

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/fsmtrail/pkg/invoke"
)

// Transition is a named edge of a Machine.
type Transition struct {
	Name string
	// From lists the states the transition may start from.
	// An empty list allows any state.
	From []string
	To   string

	Guards  []invoke.Callable
	Before  []invoke.Callable
	Actions []invoke.Callable
	After   []invoke.Callable
}

// AllowedFrom reports whether the transition may start in state.
func (t Transition) AllowedFrom(state string) bool {
	return len(t.From) == 0 || slices.Contains(t.From, state)
}

// Machine declares the states and transitions of one entity attribute.
type Machine struct {
	Name      string
	Attribute string
	// Initial is the state assumed for an entity whose attribute has no state yet.
	Initial     string
	States      []string
	Transitions []Transition
}

// Transition returns the transition with the given name.
func (m *Machine) Transition(name string) (Transition, bool) {
	for _, t := range m.Transitions {
		if t.Name == name {
			return t, true
		}
	}
	return Transition{}, false
}

// HasState reports whether state is declared.
func (m *Machine) HasState(state string) bool {
	return slices.Contains(m.States, state)
}

// Validate checks that the machine is internally consistent.
func (m *Machine) Validate() error {
	var errs []error
	if m.Attribute == "" {
		errs = append(errs, errors.New("attribute is required"))
	}
	if len(m.States) == 0 {
		errs = append(errs, errors.New("at least one state is required"))
	}
	if m.Initial != "" && !m.HasState(m.Initial) {
		errs = append(errs, fmt.Errorf("initial state %q is not declared", m.Initial))
	}

	seen := make(map[string]bool, len(m.Transitions))
	for _, t := range m.Transitions {
		if t.Name == "" {
			errs = append(errs, errors.New("transition without name"))
			continue
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("transition %q declared twice", t.Name))
		}
		seen[t.Name] = true

		if !m.HasState(t.To) {
			errs = append(errs, fmt.Errorf("transition %q targets unknown state %q", t.Name, t.To))
		}
		for _, from := range t.From {
			if !m.HasState(from) {
				errs = append(errs, fmt.Errorf("transition %q starts from unknown state %q", t.Name, from))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("machine %s: %w", m.Name, errors.Join(errs...))
	}
	return nil
}
