package invoke

import "maps"

// Args is a bag of call arguments keyed by parameter name or zero-based position.
// An entry holding nil is distinct from a missing entry.
// Args values are immutable: With and At return modified copies.
type Args struct {
	named      map[string]any
	positional map[int]any
}

// Named creates a bag from a name-keyed map.
func Named(m map[string]any) Args {
	return Args{named: maps.Clone(m)}
}

// Positional creates a bag whose entries are keyed by position.
func Positional(values ...any) Args {
	a := Args{positional: make(map[int]any, len(values))}
	for i, v := range values {
		a.positional[i] = v
	}
	return a
}

// With returns a copy of a with the named entry set.
func (a Args) With(name string, value any) Args {
	out := a.clone()
	if out.named == nil {
		out.named = make(map[string]any)
	}
	out.named[name] = value
	return out
}

// At returns a copy of a with the positional entry set.
func (a Args) At(index int, value any) Args {
	out := a.clone()
	if out.positional == nil {
		out.positional = make(map[int]any)
	}
	out.positional[index] = value
	return out
}

// Merge returns a copy of a overlaid with the entries of b.
func (a Args) Merge(b Args) Args {
	out := a.clone()
	for k, v := range b.named {
		if out.named == nil {
			out.named = make(map[string]any)
		}
		out.named[k] = v
	}
	for k, v := range b.positional {
		if out.positional == nil {
			out.positional = make(map[int]any)
		}
		out.positional[k] = v
	}
	return out
}

// Lookup returns the named entry and whether it is present.
func (a Args) Lookup(name string) (any, bool) {
	v, ok := a.named[name]
	return v, ok
}

// LookupAt returns the positional entry and whether it is present.
func (a Args) LookupAt(index int) (any, bool) {
	v, ok := a.positional[index]
	return v, ok
}

// Len returns the number of entries in the bag.
func (a Args) Len() int {
	return len(a.named) + len(a.positional)
}

// NamedEntries returns a copy of the name-keyed entries.
func (a Args) NamedEntries() map[string]any {
	return maps.Clone(a.named)
}

func (a Args) clone() Args {
	return Args{
		named:      maps.Clone(a.named),
		positional: maps.Clone(a.positional),
	}
}
