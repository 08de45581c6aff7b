// Package container is a small type-keyed dependency container.
//
// Instances are registered under the name reflect reports for their type
// ("*billing.Mailer", "context.Context"), which is the name the invoke
// package asks for when a parameter needs to be injected. A Container
// therefore satisfies ports.Resolver directly.
package container

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/aretw0/fsmtrail/internal/logging"
)

// Provider builds an instance. It may resolve its own dependencies from c.
type Provider func(c *Container) (any, error)

type binding struct {
	provide   Provider
	singleton bool

	mu       sync.Mutex
	built    bool
	instance any
}

func (b *binding) get(c *Container) (any, error) {
	if !b.singleton {
		return b.provide(c)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built {
		return b.instance, nil
	}
	v, err := b.provide(c)
	if err != nil {
		return nil, err
	}
	b.instance, b.built = v, true
	return v, nil
}

// Container maps type names to providers.
// Safe for concurrent use. A provider must not depend on its own type.
type Container struct {
	mu       sync.RWMutex
	bindings map[string]*binding
	logger   *slog.Logger
}

// Option configures the Container.
type Option func(*Container)

// WithLogger configures a logger for provider failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// New creates an empty container.
func New(opts ...Option) *Container {
	c := &Container{
		bindings: make(map[string]*binding),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bind registers a provider under typeName.
// If a provider with the same name exists, it is overwritten.
func (c *Container) Bind(typeName string, p Provider, singleton bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[typeName] = &binding{provide: p, singleton: singleton}
}

// Has reports whether typeName is bound.
func (c *Container) Has(typeName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.bindings[typeName]
	return ok
}

// Names returns the bound type names, sorted.
func (c *Container) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.bindings))
	for name := range c.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get builds or returns the instance bound to typeName.
func (c *Container) Get(typeName string) (v any, err error) {
	c.mu.RLock()
	b, ok := c.bindings[typeName]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no provider for %s", typeName)
	}

	defer func() {
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("provider for %s panicked: %v", typeName, r)
		}
	}()
	v, err = b.get(c)
	if err != nil {
		return nil, fmt.Errorf("provide %s: %w", typeName, err)
	}
	return v, nil
}

// Resolve implements ports.Resolver. Unknown types and failing providers
// report found=false; failures are logged.
func (c *Container) Resolve(typeName string) (any, bool) {
	if !c.Has(typeName) {
		return nil, false
	}
	v, err := c.Get(typeName)
	if err != nil {
		c.logger.Warn("dependency resolution failed", "type", typeName, "err", err)
		return nil, false
	}
	return v, true
}

// TypeName returns the name T is registered and resolved under.
func TypeName[T any]() string {
	return reflect.TypeFor[T]().String()
}

// Provide registers a lazily built singleton of type T.
func Provide[T any](c *Container, fn func(*Container) (T, error)) {
	c.Bind(TypeName[T](), func(c *Container) (any, error) { return fn(c) }, true)
}

// Factory registers a provider called on every resolution of T.
func Factory[T any](c *Container, fn func(*Container) (T, error)) {
	c.Bind(TypeName[T](), func(c *Container) (any, error) { return fn(c) }, false)
}

// Instance registers an already built value of type T.
func Instance[T any](c *Container, v T) {
	c.Bind(TypeName[T](), func(*Container) (any, error) { return v, nil }, true)
}

// Get resolves T from c.
func Get[T any](c *Container) (T, error) {
	var zero T
	v, err := c.Get(TypeName[T]())
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("provider for %s returned %T", TypeName[T](), v)
	}
	return t, nil
}
