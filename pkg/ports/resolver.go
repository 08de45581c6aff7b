package ports

// Resolver produces instances for declared parameter types.
// Resolve must not panic for unconfigured types; it reports found=false instead,
// so the binder can fall back to a default value.
type Resolver interface {
	Resolve(typeName string) (any, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(typeName string) (any, bool)

// Resolve calls f(typeName).
func (f ResolverFunc) Resolve(typeName string) (any, bool) { return f(typeName) }

// NopResolver never resolves anything.
var NopResolver Resolver = ResolverFunc(func(string) (any, bool) { return nil, false })
