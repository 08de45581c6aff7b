package signature

// containerCapabilities are the interface names a map or slice value is
// considered to satisfy.
var containerCapabilities = map[string]bool{
	"Countable":         true,
	"ArrayAccess":       true,
	"IteratorAggregate": true,
	"Traversable":       true,
	"Serializable":      true,
}

// AcceptsContainer reports whether a bare container value (map or slice) is an
// acceptable argument for a parameter declared with type t.
func AcceptsContainer(t Type) bool {
	switch t := t.(type) {
	case nil, None:
		return false
	case Named:
		if t.Builtin {
			return t.Ident == TypeArray || t.Ident == TypeMixed
		}
		return containerCapabilities[t.Ident]
	case Union:
		for _, m := range t.Members {
			if AcceptsContainer(m) {
				return true
			}
		}
		return false
	case Intersection:
		if len(t.Members) == 0 {
			return false
		}
		for _, m := range t.Members {
			if !AcceptsContainer(m) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
