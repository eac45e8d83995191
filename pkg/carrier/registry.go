package carrier

import (
	"fmt"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Entry declares one known provider for BuildRegistry.
type Entry struct {
	Key     string
	Enabled bool
	New     func() (Adapter, error)
}

// Registry manages registered carriers in registration order.
type Registry struct {
	order    []string
	adapters map[string]Adapter
	mu       sync.RWMutex
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// BuildRegistry instantiates every enabled entry in order. An entry whose
// constructor fails is logged and left out.
func BuildRegistry(entries []Entry, logger *otelzap.Logger) *Registry {
	r := NewRegistry()
	for _, e := range entries {
		if !e.Enabled {
			continue
		}
		a, err := e.New()
		if err != nil {
			logger.Warn("Carrier excluded from registry",
				zap.String("carrier", e.Key),
				zap.Error(err),
			)
			continue
		}
		r.Register(a)
	}
	return r
}

// Register adds an adapter. Registering a name again replaces the adapter
// but keeps its original position.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[a.Name()]; !ok {
		r.order = append(r.order, a.Name())
	}
	r.adapters[a.Name()] = a
}

// Get returns an adapter by name.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.adapters[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// All returns all adapters in registration order.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Adapter, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, r.adapters[name])
	}
	return result
}

// Names returns the provider keys in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
