package history

import (
	"fmt"

	"github.com/aretw0/fsmtrail/pkg/domain"
)

// Result is the reconstructed view of a history. It is derived on every
// request and never stored.
type Result struct {
	// InitialState is the from-state of the first record; nil when the
	// history is empty or starts without a prior state.
	InitialState *string `json:"initial_state"`
	// FinalState is the to-state of the last record; nil when the history is empty.
	FinalState      *string                   `json:"final_state"`
	TransitionCount int                       `json:"transition_count"`
	Transitions     []domain.TransitionRecord `json:"transitions"`
}

// Validation lists every chaining violation found in a history, in record order.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// Stats aggregates a history.
type Stats struct {
	TotalTransitions    int            `json:"total_transitions"`
	UniqueStates        int            `json:"unique_states"`
	StateFrequency      map[string]int `json:"state_frequency"`
	TransitionFrequency map[string]int `json:"transition_frequency"`
}

// Replay walks records once. records must already be in occurrence order.
func Replay(records []domain.TransitionRecord) Result {
	r := Result{
		TransitionCount: len(records),
		Transitions:     make([]domain.TransitionRecord, len(records)),
	}
	for i, rec := range records {
		r.Transitions[i] = rec.Clone()
	}
	if len(records) == 0 {
		return r
	}

	if from, ok := records[0].FromState(); ok {
		r.InitialState = domain.StateRef(from)
	}
	r.FinalState = domain.StateRef(records[len(records)-1].To)
	return r
}

// Validate checks that every record after the first starts in the state the
// previous record ended in. All violations are collected.
func Validate(records []domain.TransitionRecord) Validation {
	v := Validation{Errors: []string{}}
	for i := 1; i < len(records); i++ {
		expected := records[i-1].To
		actual, ok := records[i].FromState()
		if ok && actual == expected {
			continue
		}
		if !ok {
			actual = domain.NoState
		}
		v.Errors = append(v.Errors, fmt.Sprintf("record %d: expected from-state %q, got %q", i, expected, actual))
	}
	v.Valid = len(v.Errors) == 0
	return v
}

// Statistics counts states and state pairs.
// A state is counted once per record it ends and once per record it starts.
// An absent from-state is not a state, but its pair is still counted under
// the key "∅→to".
func Statistics(records []domain.TransitionRecord) Stats {
	s := Stats{
		TotalTransitions:    len(records),
		StateFrequency:      make(map[string]int),
		TransitionFrequency: make(map[string]int),
	}
	for _, rec := range records {
		s.StateFrequency[rec.To]++

		from, ok := rec.FromState()
		if ok {
			s.StateFrequency[from]++
		} else {
			from = domain.NoState
		}
		s.TransitionFrequency[PairKey(from, rec.To)]++
	}
	s.UniqueStates = len(s.StateFrequency)
	return s
}

// PairKey renders a transition pair as used in Stats.TransitionFrequency.
func PairKey(from, to string) string {
	return from + "→" + to
}
