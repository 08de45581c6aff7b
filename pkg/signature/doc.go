// Package signature describes the declared parameters of callables.
//
// A Signature is captured once, when a guard, action or callback is
// registered, and then drives argument binding on every invocation. Each
// parameter carries a declared Type drawn from a closed set of shapes:
//
//	None{}                          no declared type
//	Named{Ident: "string"}          a single named type (builtin or class/interface)
//	Union{Members: ...}             "A|B"
//	Intersection{Members: ...}      "Countable&ArrayAccess"
//
// Types can be built directly, parsed from declarations:
//
//	t, nullable, err := signature.ParseType("?*orders.Mailer")
//
// or derived from a Go function with reflection:
//
//	sig, err := signature.Of(approve,
//	    signature.Names("order", "mailer"),
//	    signature.Default("mailer", nil),
//	)
//
// AcceptsContainer reports whether a bare associative or sequential container
// value (a map or slice) is an acceptable argument for a declared type.
package signature
