package invoke

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/aretw0/fsmtrail/pkg/signature"
)

// Callable is a reference to a guard, action or callback.
// Implementations: BoundMethod, NamedType, Invocable and StringRef.
type Callable interface {
	// Describe returns a human-readable reference used in logs and errors.
	Describe() string
	isCallable()
}

// BoundMethod targets a method of a concrete receiver.
type BoundMethod struct {
	Receiver any
	Method   string
	// Signature overrides the one derived from the method by reflection.
	Signature *signature.Signature
}

func (c BoundMethod) Describe() string { return fmt.Sprintf("%T::%s", c.Receiver, c.Method) }
func (BoundMethod) isCallable()        {}

// NamedType targets a method by type name. A static function registered on the
// Invoker takes precedence; otherwise an instance is obtained from the Resolver.
type NamedType struct {
	Type      string
	Method    string
	Signature *signature.Signature
}

func (c NamedType) Describe() string { return c.Type + "@" + c.Method }
func (NamedType) isCallable()        {}

// Invocable wraps a function value, or a value exposing an Invoke method.
type Invocable struct {
	Fn        any
	Signature *signature.Signature
}

func (c Invocable) Describe() string {
	v := reflect.ValueOf(c.Fn)
	if v.Kind() == reflect.Func {
		if f := runtime.FuncForPC(v.Pointer()); f != nil {
			return f.Name()
		}
	}
	return fmt.Sprintf("%T", c.Fn)
}
func (Invocable) isCallable() {}

// StringRef is the textual form "Type@method".
type StringRef struct {
	Ref       string
	Signature *signature.Signature
}

func (c StringRef) Describe() string { return c.Ref }
func (StringRef) isCallable()        {}

// ParseRef splits a "Type@method" reference.
func ParseRef(ref string) (typeName, method string, err error) {
	typeName, method, ok := strings.Cut(strings.TrimSpace(ref), "@")
	if !ok || typeName == "" || method == "" || strings.Contains(method, "@") {
		return "", "", fmt.Errorf("invalid callable reference %q: expected Type@method", ref)
	}
	return typeName, method, nil
}

// Func is shorthand for an Invocable with an optional signature override.
func Func(fn any, opts ...signature.Option) Invocable {
	c := Invocable{Fn: fn}
	if len(opts) > 0 {
		if sig, err := signature.Of(fn, opts...); err == nil {
			c.Signature = &sig
		}
	}
	return c
}

// Method is shorthand for a BoundMethod.
func Method(receiver any, name string) BoundMethod {
	return BoundMethod{Receiver: receiver, Method: name}
}

// Ref is shorthand for a StringRef.
func Ref(ref string) StringRef {
	return StringRef{Ref: ref}
}
