package signature

import (
	"fmt"
	"regexp"
	"strings"
)

var identPattern = regexp.MustCompile(`^\*?[A-Za-z_][A-Za-z0-9_./\\]*$`)

// ParseType converts a type declaration into a Type.
// Supported forms: "" (None), "T", "?T", "A|B", "A|null", "A&B".
// The returned flag reports whether the declaration admits null.
func ParseType(decl string) (Type, bool, error) {
	decl = strings.TrimSpace(decl)
	if decl == "" {
		return None{}, false, nil
	}

	if strings.HasPrefix(decl, "?") {
		inner := strings.TrimSpace(decl[1:])
		if strings.ContainsAny(inner, "|&") {
			return nil, false, fmt.Errorf("nullable shorthand cannot wrap composite type %q", decl)
		}
		named, err := parseNamed(inner)
		if err != nil {
			return nil, false, err
		}
		return named, true, nil
	}

	hasUnion := strings.Contains(decl, "|")
	hasIntersection := strings.Contains(decl, "&")
	if hasUnion && hasIntersection {
		return nil, false, fmt.Errorf("unsupported type %q: mixed union and intersection", decl)
	}

	switch {
	case hasUnion:
		return parseUnion(decl)
	case hasIntersection:
		t, err := parseIntersection(decl)
		return t, false, err
	default:
		named, err := parseNamed(decl)
		if err != nil {
			return nil, false, err
		}
		return named, named.Ident == TypeNull || named.Ident == TypeMixed, nil
	}
}

func parseNamed(ident string) (Named, error) {
	ident = strings.TrimSpace(ident)
	if !identPattern.MatchString(ident) {
		return Named{}, fmt.Errorf("invalid type name %q", ident)
	}
	return NamedType(ident), nil
}

func parseUnion(decl string) (Type, bool, error) {
	var members []Type
	nullable := false
	for _, part := range strings.Split(decl, "|") {
		named, err := parseNamed(part)
		if err != nil {
			return nil, false, fmt.Errorf("union %q: %w", decl, err)
		}
		if named.Ident == TypeNull {
			nullable = true
			continue
		}
		members = append(members, named)
	}

	switch len(members) {
	case 0:
		return Named{Ident: TypeNull, Builtin: true}, true, nil
	case 1:
		return members[0], nullable, nil
	default:
		return Union{Members: members}, nullable, nil
	}
}

func parseIntersection(decl string) (Type, error) {
	var members []Type
	for _, part := range strings.Split(decl, "&") {
		named, err := parseNamed(part)
		if err != nil {
			return nil, fmt.Errorf("intersection %q: %w", decl, err)
		}
		if named.Builtin {
			return nil, fmt.Errorf("intersection %q: builtin type %s cannot be intersected", decl, named.Ident)
		}
		members = append(members, named)
	}
	return Intersection{Members: members}, nil
}
