package dsl

import (
	"slices"

	"github.com/aretw0/fsmtrail/pkg/fsm"
	"github.com/aretw0/fsmtrail/pkg/invoke"
)

// TransitionBuilder provides a fluent API for configuring a transition.
type TransitionBuilder struct {
	t       fsm.Transition
	builder *Builder
}

// From restricts the states the transition may start from.
func (tb *TransitionBuilder) From(states ...string) *TransitionBuilder {
	tb.t.From = append(tb.t.From, states...)
	tb.builder.State(states...)
	return tb
}

// To sets the target state.
func (tb *TransitionBuilder) To(state string) *TransitionBuilder {
	tb.t.To = state
	tb.builder.State(state)
	return tb
}

// Guard adds callables that must return true for the transition to proceed.
func (tb *TransitionBuilder) Guard(c ...invoke.Callable) *TransitionBuilder {
	tb.t.Guards = append(tb.t.Guards, c...)
	return tb
}

// Before adds callbacks run after the guards and before the actions.
func (tb *TransitionBuilder) Before(c ...invoke.Callable) *TransitionBuilder {
	tb.t.Before = append(tb.t.Before, c...)
	return tb
}

// Do adds the actions of the transition.
func (tb *TransitionBuilder) Do(c ...invoke.Callable) *TransitionBuilder {
	tb.t.Actions = append(tb.t.Actions, c...)
	return tb
}

// After adds callbacks run once the transition has been recorded.
func (tb *TransitionBuilder) After(c ...invoke.Callable) *TransitionBuilder {
	tb.t.After = append(tb.t.After, c...)
	return tb
}

// Build returns a copy of the underlying fsm.Transition.
func (tb *TransitionBuilder) Build() fsm.Transition {
	t := tb.t
	t.From = slices.Clone(t.From)
	t.Guards = slices.Clone(t.Guards)
	t.Before = slices.Clone(t.Before)
	t.Actions = slices.Clone(t.Actions)
	t.After = slices.Clone(t.After)
	return t
}
