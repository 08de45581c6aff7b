package fsm

import "sync"

// Entity is a persisted object whose attributes are driven by machines.
type Entity interface {
	EntityType() string
	EntityID() string
	// State returns the current state of attribute and whether it has one.
	State(attribute string) (string, bool)
	SetState(attribute, state string)
}

// Object is a minimal Entity keeping its states in a map.
type Object struct {
	Type string
	ID   string

	mu     sync.RWMutex
	states map[string]string
}

// NewObject creates an Object with optional initial states.
func NewObject(entityType, id string, states map[string]string) *Object {
	o := &Object{Type: entityType, ID: id, states: make(map[string]string, len(states))}
	for k, v := range states {
		o.states[k] = v
	}
	return o
}

func (o *Object) EntityType() string { return o.Type }
func (o *Object) EntityID() string   { return o.ID }

func (o *Object) State(attribute string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	s, ok := o.states[attribute]
	return s, ok
}

func (o *Object) SetState(attribute, state string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.states == nil {
		o.states = make(map[string]string)
	}
	o.states[attribute] = state
}
