package domain

import (
	"fmt"
	"strings"
	"time"
)

// TransitionRecord describes one committed transition of an entity attribute.
// Records are append-only: once written they are never mutated or deleted.
type TransitionRecord struct {
	ID         string `json:"id"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Attribute  string `json:"attribute"`

	// From is nil for the first transition ever recorded for the attribute.
	From *string `json:"from,omitempty"`
	To   string  `json:"to"`

	// Transition is the optional label of the transition that produced the record.
	Transition string    `json:"transition,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	Context  map[string]any `json:"context,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// StateRef returns a pointer to s, for use as TransitionRecord.From.
func StateRef(s string) *string {
	return &s
}

// FromState returns the from-state and whether it is present.
func (r TransitionRecord) FromState() (string, bool) {
	if r.From == nil {
		return "", false
	}
	return *r.From, true
}

// Validate checks the invariants a record must hold before it is appended.
func (r TransitionRecord) Validate() error {
	switch {
	case strings.TrimSpace(r.EntityID) == "":
		return fmt.Errorf("%w: entity id is empty", ErrInvalidRecord)
	case strings.TrimSpace(r.Attribute) == "":
		return fmt.Errorf("%w: attribute is empty", ErrInvalidRecord)
	case r.To == "":
		return fmt.Errorf("%w: to-state is empty", ErrInvalidRecord)
	case r.OccurredAt.IsZero():
		return fmt.Errorf("%w: occurrence time is not set", ErrInvalidRecord)
	}
	return nil
}

// Clone returns a copy whose payload maps can be modified without touching r.
func (r TransitionRecord) Clone() TransitionRecord {
	out := r
	if r.From != nil {
		out.From = StateRef(*r.From)
	}
	out.Context = CloneMap(r.Context)
	out.Metadata = CloneMap(r.Metadata)
	return out
}

// CloneMap deep copies nested maps; other values are copied shallowly.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if sub, ok := v.(map[string]any); ok {
			out[k] = CloneMap(sub)
		} else {
			out[k] = v
		}
	}
	return out
}
