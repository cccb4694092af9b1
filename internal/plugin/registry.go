package plugin

import "sync"

// Registry maps plugin names to handlers. Registering a name that already
// exists overwrites the previous handler. Registries are constructed
// explicitly and passed to the expander, so callers can hold isolated
// plugin sets. Registration must finish before concurrent resolution starts.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Renderer),
	}
}

// NewBuiltinRegistry returns a registry pre-loaded with the built-in handlers.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	for _, p := range Builtins() {
		r.Register(p)
	}
	return r
}

func (r *Registry) Register(p Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[p.Name()]; exists {
		pluginLogger.Debug().Str("plugin", p.Name()).Msg("Overwriting registered plugin")
	}
	r.handlers[p.Name()] = p
}

func (r *Registry) Resolve(name string) (Renderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.handlers[name]
	return p, ok
}

// Names returns the registered plugin names in arbitrary order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}
