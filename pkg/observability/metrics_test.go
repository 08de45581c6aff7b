package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/aretw0/fsmtrail/pkg/adapters/memory"
	"github.com/aretw0/fsmtrail/pkg/fsm"
	"github.com/aretw0/fsmtrail/pkg/invoke"
	"github.com/aretw0/fsmtrail/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func newEngine(t *testing.T, hooks ...fsm.Option) *fsm.Engine {
	t.Helper()
	allow := true
	machine := &fsm.Machine{
		Name:      "door",
		Attribute: "position",
		Initial:   "closed",
		States:    []string{"closed", "open"},
		Transitions: []fsm.Transition{
			{Name: "open", From: []string{"closed"}, To: "open", Guards: []invoke.Callable{invoke.Func(func() bool { return allow })}},
			{Name: "close", From: []string{"open"}, To: "closed", Actions: []invoke.Callable{invoke.Func(func() error { return errors.New("jammed") })}},
			{Name: "lock", From: []string{"closed"}, To: "closed", Guards: []invoke.Callable{invoke.Func(func() bool { return false })}},
		},
	}
	e, err := fsm.New(machine, memory.NewEventLog(), hooks...)
	require.NoError(t, err)
	return e
}

func TestMetrics_RecordsEngineOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	e := newEngine(t, fsm.WithLifecycleHooks(m.Hooks()))
	ctx := context.Background()
	door := fsm.NewObject("door", "front", nil)

	_, err = e.Apply(ctx, door, fsm.Request{Transition: "lock"})
	require.Error(t, err)
	_, err = e.Apply(ctx, door, fsm.Request{Transition: "open"})
	require.NoError(t, err)
	_, err = e.Apply(ctx, door, fsm.Request{Transition: "close"})
	require.Error(t, err)

	labels := func(transition string) prometheus.Labels {
		return prometheus.Labels{"entity_type": "door", "attribute": "position", "transition": transition}
	}
	assert.Equal(t, 1.0, counterValue(t, m.Transitions.With(labels("open"))))
	assert.Equal(t, 1.0, counterValue(t, m.GuardRejections.With(labels("lock"))))
	assert.Equal(t, 1.0, counterValue(t, m.Failures.With(labels("close"))))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "fsmtrail_callable_duration_seconds")
}

func TestMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)

	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestLoggingHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	e := newEngine(t, fsm.WithLifecycleHooks(observability.LoggingHooks(logger)))
	_, err := e.Apply(context.Background(), fsm.NewObject("door", "back", nil), fsm.Request{Transition: "open"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "transition_start")
	assert.Contains(t, out, "transition_complete")
	assert.Contains(t, out, "from=∅")
	assert.Contains(t, out, "role=guard")
}
