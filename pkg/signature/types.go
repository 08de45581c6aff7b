package signature

import (
	"strings"
)

// Type is the declared type of a parameter.
// The set of implementations is closed: None, Named, Union and Intersection.
type Type interface {
	// Name returns the declaration form of the type (e.g. "int", "A|B", "A&B").
	Name() string
	isType()
}

// None is the type of an undeclared parameter.
type None struct{}

func (None) Name() string { return "" }
func (None) isType()      {}

// Named is a single named type. Builtin types are never resolved from a container.
type Named struct {
	Ident   string
	Builtin bool
}

func (t Named) Name() string { return t.Ident }
func (Named) isType()        {}

// Union is satisfied by a value of any member type.
type Union struct {
	Members []Type
}

func (t Union) Name() string { return joinNames(t.Members, "|") }
func (Union) isType()        {}

// Intersection is satisfied by a value implementing every member type.
type Intersection struct {
	Members []Type
}

func (t Intersection) Name() string { return joinNames(t.Members, "&") }
func (Intersection) isType()        {}

func joinNames(members []Type, sep string) string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name()
	}
	return strings.Join(names, sep)
}

// Builtin type identifiers.
const (
	TypeBool     = "bool"
	TypeInt      = "int"
	TypeFloat    = "float"
	TypeString   = "string"
	TypeArray    = "array"
	TypeMixed    = "mixed"
	TypeCallable = "callable"
	TypeIterable = "iterable"
	TypeObject   = "object"
	TypeNull     = "null"
)

var builtins = map[string]bool{
	TypeBool:     true,
	TypeInt:      true,
	TypeFloat:    true,
	TypeString:   true,
	TypeArray:    true,
	TypeMixed:    true,
	TypeCallable: true,
	TypeIterable: true,
	TypeObject:   true,
	TypeNull:     true,
}

// IsBuiltin reports whether ident names a builtin type.
func IsBuiltin(ident string) bool {
	return builtins[strings.ToLower(ident)]
}

// --- Factory Functions ---

// NamedType returns the Named type for ident, classifying builtins automatically.
func NamedType(ident string) Named {
	if IsBuiltin(ident) {
		return Named{Ident: strings.ToLower(ident), Builtin: true}
	}
	return Named{Ident: ident}
}

// Class creates a non-builtin named type.
func Class(ident string) Named { return Named{Ident: ident} }

// String creates the builtin string type.
func String() Named { return Named{Ident: TypeString, Builtin: true} }

// Int creates the builtin int type.
func Int() Named { return Named{Ident: TypeInt, Builtin: true} }

// Bool creates the builtin bool type.
func Bool() Named { return Named{Ident: TypeBool, Builtin: true} }

// Array creates the builtin container type.
func Array() Named { return Named{Ident: TypeArray, Builtin: true} }

// Mixed creates the builtin type accepting any value.
func Mixed() Named { return Named{Ident: TypeMixed, Builtin: true} }

// AnyOf creates a union type.
func AnyOf(members ...Type) Union { return Union{Members: members} }

// AllOf creates an intersection type.
func AllOf(members ...Type) Intersection { return Intersection{Members: members} }
