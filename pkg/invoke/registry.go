package invoke

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/aretw0/fsmtrail/pkg/signature"
)

type staticEntry struct {
	fn  reflect.Value
	sig signature.Signature
}

// Registry holds functions addressable as "Type@method" without an instance.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]staticEntry
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]staticEntry),
	}
}

// Register adds a static function for typeName@method.
// If an entry with the same reference exists, it is overwritten.
func (r *Registry) Register(typeName, method string, fn any, opts ...signature.Option) error {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return fmt.Errorf("register %s@%s: expected func, got %T", typeName, method, fn)
	}
	sig, err := signature.OfType(v.Type(), opts...)
	if err != nil {
		return fmt.Errorf("register %s@%s: %w", typeName, method, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[typeName+"@"+method] = staticEntry{fn: v, sig: sig}
	return nil
}

func (r *Registry) lookup(typeName, method string) (staticEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.funcs[typeName+"@"+method]
	return e, ok
}
