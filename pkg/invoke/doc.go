/*
Package invoke binds arguments to declared parameters and dispatches calls to
guards, actions and callbacks.

Binding (Bind) turns a Signature plus an argument bag into an ordered argument
vector. For each parameter, in declaration order, the first match wins:

 1. a named entry in the bag, including an explicit nil;
 2. a positional entry for the parameter's zero-based index;
 3. for single named, non-builtin, non-nullable types, an instance from the Resolver,
    falling back to the default when resolution fails;
 4. the declared default.

Anything else is a *domain.MissingParameterError.

Callables come in four shapes (BoundMethod, NamedType, Invocable, StringRef).
The Invoker normalizes each to one target and runs the same bind and dispatch
path for all of them; only BoundMethod is access-checked, before binding.
*/
package invoke
