package fsm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/fsmtrail/internal/logging"
	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/invoke"
	"github.com/aretw0/fsmtrail/pkg/ports"
	"github.com/aretw0/fsmtrail/pkg/signature"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Bag keys the engine adds to every callable's arguments.
const (
	ArgEntity     = "entity"
	ArgFrom       = "from"
	ArgTo         = "to"
	ArgTransition = "transition"
	ArgContext    = "context"
)

// Request describes one transition attempt.
type Request struct {
	Transition string
	// Args are passed to every guard, action and callback.
	// Standard entries override entries with the same name.
	Args invoke.Args
	// Context is recorded with the transition.
	Context map[string]any
	// Metadata is recorded with the transition.
	Metadata map[string]any
}

// Engine applies the transitions of one Machine.
type Engine struct {
	machine *Machine
	log     ports.EventLogWriter
	invoker *invoke.Invoker
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	tracer  trace.Tracer
	now     func() time.Time
	newID   func() string
}

// Option configures the Engine.
type Option func(*Engine)

// WithInvoker sets the invoker used for guards, actions and callbacks.
func WithInvoker(inv *invoke.Invoker) Option {
	return func(e *Engine) {
		e.invoker = inv
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer configures the tracer used to span transitions.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithClock sets the source of record timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator sets the source of record IDs.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// New creates an Engine for machine writing to log.
func New(machine *Machine, log ports.EventLogWriter, opts ...Option) (*Engine, error) {
	if err := machine.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		machine: machine,
		log:     log,
		logger:  logging.NewNop(),
		tracer:  noop.NewTracerProvider().Tracer("fsmtrail/fsm"),
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.invoker == nil {
		e.invoker = invoke.New(nil, invoke.WithLogger(e.logger), invoke.WithTracer(e.tracer))
	}
	e.logger = e.logger.With("machine", machine.Name, "attribute", machine.Attribute)
	return e, nil
}

// Machine returns the machine the engine drives.
func (e *Engine) Machine() *Machine {
	return e.machine
}

// attempt carries the state of one Apply or Can call.
type attempt struct {
	entity     Entity
	transition Transition
	from       *string
	req        Request
}

func (e *Engine) begin(entity Entity, req Request) (attempt, error) {
	t, ok := e.machine.Transition(req.Transition)
	if !ok {
		return attempt{}, fmt.Errorf("%w: %s has no transition %q", domain.ErrInvalidTransition, e.machine.Name, req.Transition)
	}

	a := attempt{entity: entity, transition: t, req: req}
	current := e.machine.Initial
	if s, ok := entity.State(e.machine.Attribute); ok {
		current = s
		a.from = domain.StateRef(s)
	}
	if !t.AllowedFrom(current) {
		return attempt{}, fmt.Errorf("%w: %q cannot start from %q", domain.ErrInvalidTransition, t.Name, current)
	}
	return a, nil
}

func (e *Engine) event(a attempt) *domain.TransitionEvent {
	return &domain.TransitionEvent{
		Timestamp:  e.now(),
		EntityType: a.entity.EntityType(),
		EntityID:   a.entity.EntityID(),
		Attribute:  e.machine.Attribute,
		Transition: a.transition.Name,
		From:       a.from,
		To:         a.transition.To,
	}
}

// Apply performs the requested transition on entity and returns the record
// appended to the log.
//
// Guard rejections return *domain.GuardRejectedError and leave everything
// untouched. A failing before callback or action aborts the transition
// without a record. Once the record is stored, failures of after callbacks
// are returned alongside it; the transition stands.
func (e *Engine) Apply(ctx context.Context, entity Entity, req Request) (domain.TransitionRecord, error) {
	ctx, span := e.tracer.Start(ctx, "fsm.Apply", trace.WithAttributes(
		attribute.String("machine", e.machine.Name),
		attribute.String("transition", req.Transition),
		attribute.String("entity_type", entity.EntityType()),
		attribute.String("entity_id", entity.EntityID()),
	))
	defer span.End()

	record, err := e.apply(ctx, entity, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return record, err
}

func (e *Engine) apply(ctx context.Context, entity Entity, req Request) (domain.TransitionRecord, error) {
	a, err := e.begin(entity, req)
	if err != nil {
		return domain.TransitionRecord{}, err
	}
	attrs := e.logAttrs(a)
	evt := e.event(a)
	e.fire(ctx, e.hooks.OnTransitionStart, evt)

	fail := func(err error) (domain.TransitionRecord, error) {
		evt.Err = err
		e.fire(ctx, e.hooks.OnTransitionFailed, evt)
		e.logger.ErrorContext(ctx, "transition failed", append(attrs, "err", err)...)
		return domain.TransitionRecord{}, err
	}

	res, err := e.guards(ctx, a)
	if err != nil {
		return fail(err)
	}
	if !res.passed {
		evt.Err = res.rejection
		e.fire(ctx, e.hooks.OnGuardRejected, evt)
		e.logger.InfoContext(ctx, "transition rejected", append(attrs, "guard", res.rejection.Guard)...)
		return domain.TransitionRecord{}, res.rejection
	}

	if err := e.run(ctx, a, domain.RoleBefore, a.transition.Before); err != nil {
		return fail(err)
	}
	if err := e.run(ctx, a, domain.RoleAction, a.transition.Actions); err != nil {
		return fail(err)
	}

	entity.SetState(e.machine.Attribute, a.transition.To)

	record := domain.TransitionRecord{
		ID:         e.newID(),
		EntityType: entity.EntityType(),
		EntityID:   entity.EntityID(),
		Attribute:  e.machine.Attribute,
		From:       a.from,
		To:         a.transition.To,
		Transition: a.transition.Name,
		OccurredAt: e.now(),
		Context:    domain.CloneMap(req.Context),
		Metadata:   domain.CloneMap(req.Metadata),
	}
	if err := e.log.Append(ctx, record); err != nil {
		appendErr := &domain.AppendError{Record: record, Err: err}
		evt.Err = appendErr
		e.fire(ctx, e.hooks.OnTransitionFailed, evt)
		e.logger.ErrorContext(ctx, "transition applied but not recorded", append(attrs, "err", err)...)
		return record, appendErr
	}

	e.logger.InfoContext(ctx, "transition applied", append(attrs, "record_id", record.ID)...)

	if err := e.run(ctx, a, domain.RoleAfter, a.transition.After); err != nil {
		evt.Err = err
		e.fire(ctx, e.hooks.OnTransitionFailed, evt)
		e.logger.WarnContext(ctx, "after callback failed", append(attrs, "err", err)...)
		return record, err
	}

	e.fire(ctx, e.hooks.OnTransitionComplete, evt)
	return record, nil
}

// Can reports whether the transition is allowed from the entity's current
// state and all of its guards pass. Nothing is executed besides the guards.
// Unknown transition names are an error.
func (e *Engine) Can(ctx context.Context, entity Entity, req Request) (bool, error) {
	if _, ok := e.machine.Transition(req.Transition); !ok {
		return false, fmt.Errorf("%w: %s has no transition %q", domain.ErrInvalidTransition, e.machine.Name, req.Transition)
	}
	a, err := e.begin(entity, req)
	if errors.Is(err, domain.ErrInvalidTransition) {
		return false, nil
	}
	res, err := e.guards(ctx, a)
	if err != nil {
		return false, err
	}
	return res.passed, nil
}

// Available lists, in declaration order, the transitions Can allows.
func (e *Engine) Available(ctx context.Context, entity Entity, args invoke.Args) ([]string, error) {
	var names []string
	for _, t := range e.machine.Transitions {
		ok, err := e.Can(ctx, entity, Request{Transition: t.Name, Args: args})
		if err != nil {
			return nil, err
		}
		if ok {
			names = append(names, t.Name)
		}
	}
	return names, nil
}

type guardResult struct {
	passed    bool
	rejection *domain.GuardRejectedError
}

func (e *Engine) guards(ctx context.Context, a attempt) (guardResult, error) {
	for _, g := range a.transition.Guards {
		out, err := e.invoke(ctx, a, domain.RoleGuard, g)
		if err != nil {
			return guardResult{}, err
		}
		if len(out) == 0 {
			return guardResult{}, fmt.Errorf("guard %s returned no value, want bool", describe(g))
		}
		passed, ok := out[0].(bool)
		if !ok {
			return guardResult{}, fmt.Errorf("guard %s returned %T, want bool", g.Describe(), out[0])
		}
		if !passed {
			return guardResult{rejection: &domain.GuardRejectedError{Transition: a.transition.Name, Guard: g.Describe()}}, nil
		}
	}
	return guardResult{passed: true}, nil
}

func (e *Engine) run(ctx context.Context, a attempt, role domain.CallableRole, callables []invoke.Callable) error {
	for _, c := range callables {
		if _, err := e.invoke(ctx, a, role, c); err != nil {
			return fmt.Errorf("%s %s: %w", role, describe(c), err)
		}
	}
	return nil
}

func (e *Engine) invoke(ctx context.Context, a attempt, role domain.CallableRole, c invoke.Callable) ([]any, error) {
	start := time.Now()
	out, err := e.prepareAndCall(ctx, a, c)
	if e.hooks.OnCallable != nil {
		e.hooks.OnCallable(ctx, &domain.CallableEvent{
			Timestamp:  start,
			Transition: a.transition.Name,
			Role:       role,
			Callable:   describe(c),
			Duration:   time.Since(start),
			Err:        err,
		})
	}
	return out, err
}

// prepareAndCall resolves the callable once, then builds its arguments from
// the prepared signature and calls it.
func (e *Engine) prepareAndCall(ctx context.Context, a attempt, c invoke.Callable) ([]any, error) {
	p, err := e.invoker.Prepare(ctx, c)
	if err != nil {
		return nil, err
	}
	return p.Call(ctx, e.args(a, p.Signature()))
}

func describe(c invoke.Callable) string {
	if c == nil {
		return "<nil>"
	}
	return c.Describe()
}

// args builds the argument bag of one callable.
func (e *Engine) args(a attempt, sig signature.Signature) invoke.Args {
	args := a.req.Args.
		With(ArgEntity, a.entity).
		With(ArgTo, a.transition.To).
		With(ArgTransition, a.transition.Name)
	if a.from != nil {
		args = args.With(ArgFrom, *a.from)
	}

	if a.req.Context == nil {
		return args
	}
	if p, ok := sig.Param(ArgContext); ok && signature.AcceptsContainer(p.Type) {
		args = args.With(ArgContext, domain.CloneMap(a.req.Context))
	}
	return args
}

func (e *Engine) logAttrs(a attempt) []any {
	from := domain.NoState
	if a.from != nil {
		from = *a.from
	}
	return []any{
		"entity_type", a.entity.EntityType(),
		"entity_id", a.entity.EntityID(),
		"transition", a.transition.Name,
		"from", from,
		"to", a.transition.To,
	}
}

func (e *Engine) fire(ctx context.Context, hook func(context.Context, *domain.TransitionEvent), evt *domain.TransitionEvent) {
	if hook != nil {
		hook(ctx, evt)
	}
}
