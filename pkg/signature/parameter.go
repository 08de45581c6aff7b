package signature

import "fmt"

// Parameter describes one declared parameter of a callable.
type Parameter struct {
	Name       string
	Type       Type
	Nullable   bool
	HasDefault bool
	Default    any
}

// Optional reports whether the parameter may be omitted.
func (p Parameter) Optional() bool { return p.HasDefault }

// Injectable reports whether the parameter may be resolved from a dependency container.
// Only a single named, non-builtin, non-nullable type qualifies.
func (p Parameter) Injectable() bool {
	named, ok := p.Type.(Named)
	return ok && !named.Builtin && !p.Nullable
}

func (p Parameter) String() string {
	decl := "$" + p.Name
	if p.Type != nil && p.Type.Name() != "" {
		prefix := ""
		if p.Nullable {
			prefix = "?"
		}
		decl = prefix + p.Type.Name() + " " + decl
	}
	if p.HasDefault {
		decl += fmt.Sprintf(" = %v", p.Default)
	}
	return decl
}

// Signature is the ordered list of declared parameters of a callable.
type Signature struct {
	Params []Parameter
}

// Param returns the parameter with the given name.
func (s Signature) Param(name string) (Parameter, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Parameter{}, false
}

// Spec is the declarative form of a parameter, as found in definition files.
type Spec struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Type    string `yaml:"type" mapstructure:"type"`
	Default any    `yaml:"default" mapstructure:"default"`
	// HasDefault is set by decoders when the default key is present, since a
	// declared default may itself be null.
	HasDefault bool `yaml:"-" mapstructure:"-"`
}

// FromSpecs builds a Signature from declarative parameter specs.
func FromSpecs(specs []Spec) (Signature, error) {
	sig := Signature{Params: make([]Parameter, 0, len(specs))}
	seen := make(map[string]bool, len(specs))
	for i, s := range specs {
		if s.Name == "" {
			return Signature{}, fmt.Errorf("parameter %d: name is required", i)
		}
		if seen[s.Name] {
			return Signature{}, fmt.Errorf("parameter %d: duplicate name %q", i, s.Name)
		}
		seen[s.Name] = true

		t, nullable, err := ParseType(s.Type)
		if err != nil {
			return Signature{}, fmt.Errorf("parameter %q: %w", s.Name, err)
		}
		sig.Params = append(sig.Params, Parameter{
			Name:       s.Name,
			Type:       t,
			Nullable:   nullable,
			HasDefault: s.HasDefault,
			Default:    s.Default,
		})
	}
	return sig, nil
}
