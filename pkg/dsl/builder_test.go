package dsl

import (
	"context"
	"testing"

	"github.com/aretw0/fsmtrail/pkg/adapters/memory"
	"github.com/aretw0/fsmtrail/pkg/fsm"
	"github.com/aretw0/fsmtrail/pkg/invoke"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_OrderMachine(t *testing.T) {
	reserved := 0
	b := New("order", "status").Initial("new")

	b.Transition("submit").From("new").To("pending")
	b.Transition("process").
		From("pending").
		To("processing").
		Guard(invoke.Func(func() bool { return true })).
		Do(invoke.Func(func() { reserved++ }))
	b.Transition("cancel").To("cancelled")

	m, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "status", m.Attribute)
	assert.Equal(t, "new", m.Initial)
	assert.Equal(t, []string{"new", "pending", "processing", "cancelled"}, m.States)
	require.Len(t, m.Transitions, 3)
	assert.Equal(t, "submit", m.Transitions[0].Name)
	assert.Empty(t, m.Transitions[2].From)

	e, err := fsm.New(m, memory.NewEventLog())
	require.NoError(t, err)
	order := fsm.NewObject("order", "1", nil)
	for _, name := range []string{"submit", "process"} {
		_, err := e.Apply(context.Background(), order, fsm.Request{Transition: name})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, reserved)
}

func TestBuilder_TransitionIsReused(t *testing.T) {
	b := New("m", "s")
	b.Transition("go").From("a")
	b.Transition("go").To("b")

	m, err := b.Build()
	require.NoError(t, err)
	require.Len(t, m.Transitions, 1)
	assert.Equal(t, []string{"a"}, m.Transitions[0].From)
	assert.Equal(t, "b", m.Transitions[0].To)
}

func TestBuilder_InvalidMachine(t *testing.T) {
	_, err := New("empty", "").Build()
	assert.Error(t, err)

	b := New("m", "s").State("a")
	b.Transition("nowhere").From("a")
	_, err = b.Build()
	assert.ErrorContains(t, err, "unknown state")
}
