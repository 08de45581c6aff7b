package dsl

import (
	"fmt"
	"slices"

	"github.com/aretw0/fsmtrail/pkg/fsm"
)

// Builder manages the machine construction.
type Builder struct {
	name        string
	attribute   string
	initial     string
	states      []string
	transitions []*TransitionBuilder
}

// New creates a new machine builder for attribute.
func New(name, attribute string) *Builder {
	return &Builder{
		name:      name,
		attribute: attribute,
	}
}

// Initial sets the state assumed for entities without a state.
func (b *Builder) Initial(state string) *Builder {
	b.initial = state
	b.State(state)
	return b
}

// State declares states. Targets and sources of transitions are declared automatically.
func (b *Builder) State(names ...string) *Builder {
	for _, n := range names {
		if n != "" && !slices.Contains(b.states, n) {
			b.states = append(b.states, n)
		}
	}
	return b
}

// Transition adds a transition to the machine.
// If the transition already exists, it returns the existing builder.
func (b *Builder) Transition(name string) *TransitionBuilder {
	for _, tb := range b.transitions {
		if tb.t.Name == name {
			return tb
		}
	}
	tb := &TransitionBuilder{t: fsm.Transition{Name: name}, builder: b}
	b.transitions = append(b.transitions, tb)
	return tb
}

// Build compiles and validates the machine.
func (b *Builder) Build() (*fsm.Machine, error) {
	m := &fsm.Machine{
		Name:      b.name,
		Attribute: b.attribute,
		Initial:   b.initial,
		States:    slices.Clone(b.states),
	}
	for _, tb := range b.transitions {
		m.Transitions = append(m.Transitions, tb.Build())
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build machine: %w", err)
	}
	return m, nil
}
