package definition

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/fsmtrail/pkg/invoke"
)

// Report lists the structural problems of a definition.
type Report struct {
	// UnknownStates are states used by transitions but never declared.
	UnknownStates []string `json:"unknown_states,omitempty"`
	// Unreachable are declared states no transition path leads to from the initial state.
	Unreachable []string `json:"unreachable,omitempty"`
	// Terminal are reachable states without outgoing transitions.
	Terminal []string `json:"terminal,omitempty"`
	// InvalidRefs are callable references that are not of the form Type@method.
	InvalidRefs []string `json:"invalid_refs,omitempty"`
}

// OK reports whether the definition has no errors. Terminal states are not errors.
func (r Report) OK() bool {
	return len(r.UnknownStates) == 0 && len(r.Unreachable) == 0 && len(r.InvalidRefs) == 0
}

// Err returns the report as an error, or nil when OK.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	var errors []string
	for _, s := range r.UnknownStates {
		errors = append(errors, fmt.Sprintf("Unknown state: '%s'", s))
	}
	for _, s := range r.Unreachable {
		errors = append(errors, fmt.Sprintf("Unreachable state: '%s'", s))
	}
	for _, s := range r.InvalidRefs {
		errors = append(errors, fmt.Sprintf("Invalid callable reference: '%s'", s))
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
}

// Check walks the transition graph breadth-first from the initial state.
// Transitions without From are followed from every reachable state.
// Without an initial state every declared state is a starting point.
func Check(d *Document) Report {
	var r Report
	declared := make(map[string]bool, len(d.States))
	for _, s := range d.States {
		declared[s] = true
	}

	unknown := make(map[string]bool)
	note := func(s string) {
		if s != "" && !declared[s] && !unknown[s] {
			unknown[s] = true
			r.UnknownStates = append(r.UnknownStates, s)
		}
	}
	note(d.Initial)
	for _, t := range d.Transitions {
		for _, f := range t.From {
			note(f)
		}
		note(t.To)
		for _, group := range [][]CallableSpec{t.Guards, t.Before, t.Actions, t.After} {
			for _, c := range group {
				if _, _, err := invoke.ParseRef(c.Ref); err != nil {
					r.InvalidRefs = append(r.InvalidRefs, c.Ref)
				}
			}
		}
	}

	queue := []string{d.Initial}
	if d.Initial == "" {
		queue = slices.Clone(d.States)
	}
	visited := make(map[string]bool)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		outgoing := 0
		for _, t := range d.Transitions {
			if len(t.From) > 0 && !slices.Contains(t.From, current) {
				continue
			}
			outgoing++
			if t.To != "" && !visited[t.To] {
				queue = append(queue, t.To)
			}
		}
		if outgoing == 0 {
			r.Terminal = append(r.Terminal, current)
		}
	}

	for _, s := range d.States {
		if !visited[s] {
			r.Unreachable = append(r.Unreachable, s)
		}
	}
	slices.Sort(r.Terminal)
	return r
}
