package descriptor

import (
	"sync"

	"github.com/mesh-intelligence/knobs/pkg/types"
)

// Registry maps type names to descriptors. Every method is safe for
// concurrent use; enum descriptors are created lazily by GetOrCreate.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Descriptor
	order  []string
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

// NewRegistry returns a registry holding the built-in descriptors.
func NewRegistry() *Registry {
	r := &Registry{}
	r.reset()
	return r
}

// Reset drops every registration and restores the built-ins.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reset()
}

func (r *Registry) reset() {
	r.byName = make(map[string]*Descriptor, len(types.Builtins))
	r.order = r.order[:0]
	for _, t := range types.Builtins {
		r.byName[t.Name] = builtins[t.Name]
		r.order = append(r.order, t.Name)
	}
}

// Register makes d the descriptor for its type. An existing registration is
// replaced only when override is set. Register reports whether d was stored.
func (r *Registry) Register(d *Descriptor, override bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(d, override)
}

func (r *Registry) register(d *Descriptor, override bool) bool {
	name := d.Type().Name
	if _, exists := r.byName[name]; exists {
		if !override {
			return false
		}
	} else {
		r.order = append(r.order, name)
	}
	r.byName[name] = d
	return true
}

// Get returns the descriptor registered for t.
func (r *Registry) Get(t types.Type) (*Descriptor, bool) {
	return r.Lookup(t.Name)
}

// Lookup returns the descriptor registered under a type name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}

// GetOrCreate returns the descriptor registered for t, building and
// registering a structural one when t is an enum.
// Returns *types.UnsupportedTypeError for any other unregistered type.
func (r *Registry) GetOrCreate(t types.Type) (*Descriptor, error) {
	if d, ok := r.Get(t); ok {
		return d, nil
	}
	if !t.IsEnum() {
		return nil, &types.UnsupportedTypeError{Type: t.Name}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if d, ok := r.byName[t.Name]; ok {
		return d, nil
	}
	d, err := New(Config{Type: t})
	if err != nil {
		return nil, err
	}
	r.register(d, false)
	return d, nil
}

// Types returns the registered types in registration order.
func (r *Registry) Types() []types.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Type, len(r.order))
	for i, name := range r.order {
		out[i] = r.byName[name].Type()
	}
	return out
}
