package fsmtrail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/fsmtrail/internal/logging"
	"github.com/aretw0/fsmtrail/pkg/adapters/memory"
	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/fsm"
	"github.com/aretw0/fsmtrail/pkg/history"
	"github.com/aretw0/fsmtrail/pkg/invoke"
	"github.com/aretw0/fsmtrail/pkg/persistence/middleware"
	"github.com/aretw0/fsmtrail/pkg/ports"
)

// Version is the release of the library and the CLI.
const Version = "0.4.0"

// Trail is the high-level entry point for the library.
// It drives one Machine and keeps its transitions auditable through a shared event log.
type Trail struct {
	engine   *fsm.Engine
	history  *history.Service
	invoker  *invoke.Invoker
	log      ports.EventLog
	resolver ports.Resolver
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	mws      []middleware.Middleware
	fsmOpts  []fsm.Option
}

// Option defines a functional option for configuring the Trail.
type Option func(*Trail)

// WithEventLog sets the log transitions are appended to and replayed from.
// Defaults to an in-memory log.
func WithEventLog(log ports.EventLog) Option {
	return func(t *Trail) {
		t.log = log
	}
}

// WithResolver sets how typed callable parameters are resolved.
func WithResolver(r ports.Resolver) Option {
	return func(t *Trail) {
		t.resolver = r
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Trail) {
		t.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Trail) {
		t.logger = logger
	}
}

// WithMiddleware wraps the event log. The first middleware is the outermost.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(t *Trail) {
		t.mws = append(t.mws, mws...)
	}
}

// WithEngineOptions passes options through to the transition engine.
func WithEngineOptions(opts ...fsm.Option) Option {
	return func(t *Trail) {
		t.fsmOpts = append(t.fsmOpts, opts...)
	}
}

// New creates a Trail for machine.
func New(machine *fsm.Machine, opts ...Option) (*Trail, error) {
	if machine == nil {
		return nil, fmt.Errorf("machine is required")
	}
	t := &Trail{}
	for _, opt := range opts {
		opt(t)
	}

	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	if t.log == nil {
		t.log = memory.NewEventLog()
	}
	t.log = middleware.Chain(t.log, t.mws...)

	t.invoker = invoke.New(t.resolver, invoke.WithLogger(t.logger))

	engineOpts := []fsm.Option{
		fsm.WithInvoker(t.invoker),
		fsm.WithLogger(t.logger),
		fsm.WithLifecycleHooks(t.hooks),
	}
	engineOpts = append(engineOpts, t.fsmOpts...)

	engine, err := fsm.New(machine, t.log, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	t.engine = engine
	t.history = history.New(t.log, history.WithLogger(t.logger))
	return t, nil
}

// Apply performs transition on entity. See fsm.Engine.Apply.
func (t *Trail) Apply(ctx context.Context, entity fsm.Entity, transition string, args invoke.Args) (domain.TransitionRecord, error) {
	return t.engine.Apply(ctx, entity, fsm.Request{Transition: transition, Args: args})
}

// Can reports whether transition could be applied to entity right now.
func (t *Trail) Can(ctx context.Context, entity fsm.Entity, transition string, args invoke.Args) (bool, error) {
	return t.engine.Can(ctx, entity, fsm.Request{Transition: transition, Args: args})
}

// Replay reconstructs the tracked attribute of entity from the log.
func (t *Trail) Replay(ctx context.Context, entity fsm.Entity) (history.Result, error) {
	return t.history.Replay(ctx, entity.EntityType(), entity.EntityID(), t.engine.Machine().Attribute)
}

// Validate checks that the recorded transitions of entity chain correctly.
func (t *Trail) Validate(ctx context.Context, entity fsm.Entity) (history.Validation, error) {
	return t.history.Validate(ctx, entity.EntityType(), entity.EntityID(), t.engine.Machine().Attribute)
}

// Engine returns the underlying transition engine.
func (t *Trail) Engine() *fsm.Engine {
	return t.engine
}

// History returns the replay service over the Trail's log.
func (t *Trail) History() *history.Service {
	return t.history
}

// Invoker returns the invoker running guards, actions and callbacks.
// Register static functions on its Registry to reference them by name.
func (t *Trail) Invoker() *invoke.Invoker {
	return t.invoker
}
