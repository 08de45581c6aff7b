package signature

import (
	"fmt"
	"reflect"
)

// Option customizes a Signature derived with Of.
type Option func(*describeConfig)

type describeConfig struct {
	names    []string
	defaults map[string]any
	nullable map[string]bool
	types    map[string]Type
}

// Names assigns parameter names in declaration order.
// Unnamed parameters are called arg0, arg1, ...
func Names(names ...string) Option {
	return func(c *describeConfig) {
		c.names = names
	}
}

// Default declares a default value for the named parameter.
func Default(name string, value any) Option {
	return func(c *describeConfig) {
		c.defaults[name] = value
	}
}

// Nullable marks the named parameters as accepting nil.
func Nullable(names ...string) Option {
	return func(c *describeConfig) {
		for _, n := range names {
			c.nullable[n] = true
		}
	}
}

// WithType overrides the type derived for the named parameter.
// This is how union and intersection types, which Go cannot express, are declared.
func WithType(name string, t Type) Option {
	return func(c *describeConfig) {
		c.types[name] = t
	}
}

// Of derives the Signature of fn, which must be a function value.
func Of(fn any, opts ...Option) (Signature, error) {
	if fn == nil {
		return Signature{}, fmt.Errorf("cannot describe nil function")
	}
	return OfType(reflect.TypeOf(fn), opts...)
}

// OfType derives a Signature from a function type.
// Method values obtained through reflect.Value.Method already exclude the receiver.
func OfType(ft reflect.Type, opts ...Option) (Signature, error) {
	if ft.Kind() != reflect.Func {
		return Signature{}, fmt.Errorf("expected func, got %s", ft)
	}

	cfg := &describeConfig{
		defaults: make(map[string]any),
		nullable: make(map[string]bool),
		types:    make(map[string]Type),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(cfg.names) > ft.NumIn() {
		return Signature{}, fmt.Errorf("%d names given for %d parameters", len(cfg.names), ft.NumIn())
	}

	sig := Signature{Params: make([]Parameter, ft.NumIn())}
	for i := 0; i < ft.NumIn(); i++ {
		name := fmt.Sprintf("arg%d", i)
		if i < len(cfg.names) && cfg.names[i] != "" {
			name = cfg.names[i]
		}

		p := Parameter{
			Name:     name,
			Type:     FromReflect(ft.In(i)),
			Nullable: cfg.nullable[name],
		}
		if t, ok := cfg.types[name]; ok {
			p.Type = t
		}
		if v, ok := cfg.defaults[name]; ok {
			p.HasDefault = true
			p.Default = v
		}
		sig.Params[i] = p
	}
	return sig, nil
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// FromReflect classifies a Go type.
// Scalars map to builtins, maps/slices/arrays to "array", the empty interface
// to "mixed", and structs, pointers to structs and non-empty interfaces to
// class types named after reflect.Type.String.
func FromReflect(t reflect.Type) Type {
	if t == nil {
		return None{}
	}

	switch t.Kind() {
	case reflect.Bool:
		return Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Int()
	case reflect.Float32, reflect.Float64:
		return Named{Ident: TypeFloat, Builtin: true}
	case reflect.String:
		return String()
	case reflect.Map, reflect.Slice, reflect.Array:
		return Array()
	case reflect.Func:
		return Named{Ident: TypeCallable, Builtin: true}
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return Mixed()
		}
		if t == errorType {
			return Named{Ident: TypeObject, Builtin: true}
		}
		return Class(t.String())
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return Class(t.String())
		}
		return FromReflect(t.Elem())
	case reflect.Struct:
		return Class(t.String())
	default:
		return Named{Ident: t.String(), Builtin: true}
	}
}
