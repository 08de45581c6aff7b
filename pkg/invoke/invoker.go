package invoke

import (
	"context"
	"fmt"
	"go/token"
	"log/slog"
	"reflect"
	"sync"

	"github.com/aretw0/fsmtrail/internal/logging"
	"github.com/aretw0/fsmtrail/pkg/domain"
	"github.com/aretw0/fsmtrail/pkg/ports"
	"github.com/aretw0/fsmtrail/pkg/signature"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// contextTypeName is resolved to the call's context without consulting the Resolver.
const contextTypeName = "context.Context"

// Visibility is the access level a receiver reports for one of its methods.
type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

// VisibilityReporter is implemented by receivers that restrict some of their
// exported methods from being used as callables.
type VisibilityReporter interface {
	MethodVisibility(method string) Visibility
}

// target is the normalized form of every Callable.
type target struct {
	name   string
	fn     reflect.Value
	static bool
	sig    signature.Signature
}

// Invoker dispatches Callables.
type Invoker struct {
	resolver ports.Resolver
	registry *Registry
	logger   *slog.Logger
	tracer   trace.Tracer

	mu   sync.RWMutex
	sigs map[reflect.Type]signature.Signature
}

// Option configures the Invoker.
type Option func(*Invoker)

// WithRegistry sets the registry of static functions.
func WithRegistry(r *Registry) Option {
	return func(i *Invoker) {
		i.registry = r
	}
}

// WithLogger configures a logger for the Invoker.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Invoker) {
		i.logger = logger
	}
}

// WithTracer configures the tracer used to span invocations.
func WithTracer(tracer trace.Tracer) Option {
	return func(i *Invoker) {
		i.tracer = tracer
	}
}

// New creates an Invoker resolving dependencies through resolver (may be nil).
func New(resolver ports.Resolver, opts ...Option) *Invoker {
	if resolver == nil {
		resolver = ports.NopResolver
	}
	i := &Invoker{
		resolver: resolver,
		registry: NewRegistry(),
		logger:   logging.NewNop(),
		tracer:   noop.NewTracerProvider().Tracer("fsmtrail/invoke"),
		sigs:     make(map[reflect.Type]signature.Signature),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Registry returns the registry of static functions.
func (i *Invoker) Registry() *Registry {
	return i.registry
}

// Signature returns the parameters the callable declares.
func (i *Invoker) Signature(ctx context.Context, c Callable) (signature.Signature, error) {
	t, err := i.normalize(ctx, c)
	if err != nil {
		return signature.Signature{}, err
	}
	return t.sig, nil
}

// Call binds args to the callable's parameters and invokes it.
// A trailing error result is returned as the call error; other results are returned in order.
func (i *Invoker) Call(ctx context.Context, c Callable, args Args) ([]any, error) {
	ctx, span := i.tracer.Start(ctx, "invoke.Call", trace.WithAttributes(
		attribute.String("callable", describe(c)),
	))
	defer span.End()

	out, err := i.call(ctx, c, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

// Prepare normalizes the callable once so its signature can be inspected
// before the call without resolving the receiver a second time.
func (i *Invoker) Prepare(ctx context.Context, c Callable) (*Prepared, error) {
	t, err := i.normalize(ctx, c)
	if err != nil {
		return nil, err
	}
	return &Prepared{inv: i, t: t}, nil
}

// Prepared is a normalized callable ready to be called.
type Prepared struct {
	inv *Invoker
	t   target
}

// Name returns the callable's display name.
func (p *Prepared) Name() string {
	return p.t.name
}

// Signature returns the parameters the callable declares.
func (p *Prepared) Signature() signature.Signature {
	return p.t.sig
}

// Call binds args and invokes the prepared callable.
func (p *Prepared) Call(ctx context.Context, args Args) ([]any, error) {
	ctx, span := p.inv.tracer.Start(ctx, "invoke.Call", trace.WithAttributes(
		attribute.String("callable", p.t.name),
	))
	defer span.End()

	out, err := p.inv.bindAndDispatch(ctx, p.t, args)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return out, err
}

func describe(c Callable) string {
	if c == nil {
		return "<nil>"
	}
	return c.Describe()
}

func (i *Invoker) call(ctx context.Context, c Callable, args Args) ([]any, error) {
	t, err := i.normalize(ctx, c)
	if err != nil {
		return nil, err
	}
	return i.bindAndDispatch(ctx, t, args)
}

func (i *Invoker) bindAndDispatch(ctx context.Context, t target, args Args) ([]any, error) {
	values, err := Bind(t.sig.Params, args, i.contextResolver(ctx))
	if err != nil {
		return nil, fmt.Errorf("bind %s: %w", t.name, err)
	}

	i.logger.DebugContext(ctx, "invoking callable",
		"callable", t.name,
		"static", t.static,
		"params", len(t.sig.Params),
	)

	return dispatch(t, values)
}

// contextResolver answers context.Context parameters with ctx.
func (i *Invoker) contextResolver(ctx context.Context) ports.Resolver {
	return ports.ResolverFunc(func(typeName string) (any, bool) {
		if typeName == contextTypeName {
			return ctx, true
		}
		return i.resolver.Resolve(typeName)
	})
}

func (i *Invoker) normalize(ctx context.Context, c Callable) (target, error) {
	switch c := c.(type) {
	case BoundMethod:
		return i.normalizeBound(c)
	case *BoundMethod:
		if c == nil {
			return target{}, fmt.Errorf("%w: nil callable", domain.ErrUnknownCallable)
		}
		return i.normalizeBound(*c)
	case NamedType:
		return i.normalizeNamed(ctx, c.Type, c.Method, c.Signature)
	case StringRef:
		typeName, method, err := ParseRef(c.Ref)
		if err != nil {
			return target{}, fmt.Errorf("%w: %v", domain.ErrUnknownCallable, err)
		}
		return i.normalizeNamed(ctx, typeName, method, c.Signature)
	case Invocable:
		return i.normalizeInvocable(c)
	case nil:
		return target{}, fmt.Errorf("%w: nil callable", domain.ErrUnknownCallable)
	default:
		return target{}, fmt.Errorf("%w: unsupported callable %T", domain.ErrUnknownCallable, c)
	}
}

// normalizeBound verifies the method is publicly invocable before anything is bound.
func (i *Invoker) normalizeBound(c BoundMethod) (target, error) {
	denied := func(reason domain.AccessReason) error {
		return &domain.AccessDeniedError{Target: fmt.Sprintf("%T", c.Receiver), Method: c.Method, Reason: reason}
	}

	if c.Receiver == nil || c.Method == "" {
		return target{}, denied(domain.AccessNoSuchMethod)
	}
	if !token.IsExported(c.Method) {
		return target{}, denied(domain.AccessPrivate)
	}
	if r, ok := c.Receiver.(VisibilityReporter); ok {
		switch r.MethodVisibility(c.Method) {
		case Protected:
			return target{}, denied(domain.AccessProtected)
		case Private:
			return target{}, denied(domain.AccessPrivate)
		}
	}

	m := reflect.ValueOf(c.Receiver).MethodByName(c.Method)
	if !m.IsValid() {
		return target{}, denied(domain.AccessNoSuchMethod)
	}

	sig, err := i.signatureFor(m, c.Signature)
	if err != nil {
		return target{}, err
	}
	return target{name: c.Describe(), fn: m, sig: sig}, nil
}

func (i *Invoker) normalizeNamed(ctx context.Context, typeName, method string, override *signature.Signature) (target, error) {
	name := typeName + "@" + method

	if e, ok := i.registry.lookup(typeName, method); ok {
		sig := e.sig
		if override != nil {
			if err := checkOverride(e.fn.Type(), override); err != nil {
				return target{}, fmt.Errorf("%s: %w", name, err)
			}
			sig = *override
		}
		return target{name: name, fn: e.fn, static: true, sig: sig}, nil
	}

	instance, ok := safeResolve(i.contextResolver(ctx), typeName)
	if !ok || instance == nil {
		return target{}, fmt.Errorf("%w: %s: type is neither registered nor resolvable", domain.ErrUnknownCallable, name)
	}

	m := reflect.ValueOf(instance).MethodByName(method)
	if !m.IsValid() {
		return target{}, fmt.Errorf("%w: %s: %T has no method %s", domain.ErrUnknownCallable, name, instance, method)
	}

	sig, err := i.signatureFor(m, override)
	if err != nil {
		return target{}, err
	}
	return target{name: name, fn: m, sig: sig}, nil
}

func (i *Invoker) normalizeInvocable(c Invocable) (target, error) {
	v := reflect.ValueOf(c.Fn)
	if !v.IsValid() {
		return target{}, fmt.Errorf("%w: nil function", domain.ErrUnknownCallable)
	}
	static := true
	if v.Kind() != reflect.Func {
		v = v.MethodByName("Invoke")
		static = false
		if !v.IsValid() {
			return target{}, fmt.Errorf("%w: %T is not invocable", domain.ErrUnknownCallable, c.Fn)
		}
	}
	if v.IsNil() {
		return target{}, fmt.Errorf("%w: nil function", domain.ErrUnknownCallable)
	}

	sig, err := i.signatureFor(v, c.Signature)
	if err != nil {
		return target{}, err
	}
	return target{name: c.Describe(), fn: v, static: static, sig: sig}, nil
}

// signatureFor derives the signature of fn once per function type.
func (i *Invoker) signatureFor(fn reflect.Value, override *signature.Signature) (signature.Signature, error) {
	if override != nil {
		if err := checkOverride(fn.Type(), override); err != nil {
			return signature.Signature{}, err
		}
		return *override, nil
	}

	ft := fn.Type()
	i.mu.RLock()
	sig, ok := i.sigs[ft]
	i.mu.RUnlock()
	if ok {
		return sig, nil
	}

	sig, err := signature.OfType(ft)
	if err != nil {
		return signature.Signature{}, err
	}

	i.mu.Lock()
	i.sigs[ft] = sig
	i.mu.Unlock()
	return sig, nil
}

// checkOverride requires a declared signature to describe every parameter of ft.
func checkOverride(ft reflect.Type, override *signature.Signature) error {
	if len(override.Params) != ft.NumIn() {
		return fmt.Errorf("signature declares %d parameters, function takes %d",
			len(override.Params), ft.NumIn())
	}
	return nil
}
