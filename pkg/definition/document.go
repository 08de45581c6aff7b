package definition

import (
	"fmt"
	"os"
	"reflect"

	"github.com/aretw0/fsmtrail/pkg/fsm"
	"github.com/aretw0/fsmtrail/pkg/invoke"
	"github.com/aretw0/fsmtrail/pkg/signature"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Document is the decoded form of a machine definition file.
type Document struct {
	Name        string           `yaml:"name" mapstructure:"name"`
	Attribute   string           `yaml:"attribute" mapstructure:"attribute"`
	Initial     string           `yaml:"initial" mapstructure:"initial"`
	States      []string         `yaml:"states" mapstructure:"states"`
	Transitions []TransitionSpec `yaml:"transitions" mapstructure:"transitions"`
}

// TransitionSpec declares one transition. From accepts a single state or a list.
type TransitionSpec struct {
	Name    string         `yaml:"name" mapstructure:"name"`
	From    []string       `yaml:"from" mapstructure:"from"`
	To      string         `yaml:"to" mapstructure:"to"`
	Guards  []CallableSpec `yaml:"guards" mapstructure:"guards"`
	Before  []CallableSpec `yaml:"before" mapstructure:"before"`
	Actions []CallableSpec `yaml:"actions" mapstructure:"actions"`
	After   []CallableSpec `yaml:"after" mapstructure:"after"`
}

// CallableSpec references a callable. A plain string is shorthand for Ref.
// When Params is set it replaces the signature derived by reflection.
type CallableSpec struct {
	Ref    string           `yaml:"ref" mapstructure:"ref"`
	Params []signature.Spec `yaml:"params" mapstructure:"params"`
}

// Load reads and parses a definition file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definition: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a YAML definition.
func Parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	var doc Document
	if err := decode(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode definition: %w", err)
	}
	return &doc, nil
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(callableHook, paramHook),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

var (
	callableSpecType = reflect.TypeOf(CallableSpec{})
	paramSpecType    = reflect.TypeOf(signature.Spec{})
)

// callableHook accepts "Type@method" strings where a CallableSpec is expected.
func callableHook(from, to reflect.Type, data any) (any, error) {
	if to != callableSpecType || from.Kind() != reflect.String {
		return data, nil
	}
	return CallableSpec{Ref: data.(string)}, nil
}

// paramHook records whether a parameter declares a default, since the
// default itself may be null.
func paramHook(from, to reflect.Type, data any) (any, error) {
	if to != paramSpecType {
		return data, nil
	}
	m, ok := data.(map[string]any)
	if !ok {
		return data, nil
	}

	var spec signature.Spec
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           &spec,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(m); err != nil {
		return nil, err
	}
	_, spec.HasDefault = m["default"]
	return spec, nil
}

// Machine builds the fsm.Machine the document describes. Callables become
// invoke.StringRef values resolved by the invoker at call time.
func (d *Document) Machine() (*fsm.Machine, error) {
	m := &fsm.Machine{
		Name:      d.Name,
		Attribute: d.Attribute,
		Initial:   d.Initial,
		States:    append([]string(nil), d.States...),
	}

	for _, ts := range d.Transitions {
		t := fsm.Transition{
			Name: ts.Name,
			From: append([]string(nil), ts.From...),
			To:   ts.To,
		}
		var err error
		if t.Guards, err = callables(ts.Name, "guards", ts.Guards); err != nil {
			return nil, err
		}
		if t.Before, err = callables(ts.Name, "before", ts.Before); err != nil {
			return nil, err
		}
		if t.Actions, err = callables(ts.Name, "actions", ts.Actions); err != nil {
			return nil, err
		}
		if t.After, err = callables(ts.Name, "after", ts.After); err != nil {
			return nil, err
		}
		m.Transitions = append(m.Transitions, t)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func callables(transition, role string, specs []CallableSpec) ([]invoke.Callable, error) {
	out := make([]invoke.Callable, 0, len(specs))
	for i, s := range specs {
		if _, _, err := invoke.ParseRef(s.Ref); err != nil {
			return nil, fmt.Errorf("transition %q %s[%d]: %w", transition, role, i, err)
		}
		ref := invoke.StringRef{Ref: s.Ref}
		if s.Params != nil {
			sig, err := signature.FromSpecs(s.Params)
			if err != nil {
				return nil, fmt.Errorf("transition %q %s[%d]: %w", transition, role, i, err)
			}
			ref.Signature = &sig
		}
		out = append(out, ref)
	}
	return out, nil
}
