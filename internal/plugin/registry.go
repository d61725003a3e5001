// Package plugin registers text transforms with a host application.
//
// A host passes every note through Registry.Apply before display; each
// plugin rewrites the text it recognizes and leaves the rest untouched.
package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// Info describes a plugin to its host.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Plugin is a named text transform.
type Plugin interface {
	Info() Info
	Transform(text string) string
}

// ErrPluginNotFound is returned when a plugin name is not registered.
type ErrPluginNotFound struct {
	Name string
}

func (e *ErrPluginNotFound) Error() string {
	return fmt.Sprintf("plugin %q not found", e.Name)
}

// Registry is a thread-safe registry of plugins. Apply runs plugins in
// registration order.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin // name → plugin
	order   []string          // registration order
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
	}
}

// Register adds a plugin. Registering a name again replaces the plugin but
// keeps its original position.
func (r *Registry) Register(p Plugin) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[info.Name]; !ok {
		r.order = append(r.order, info.Name)
	}
	r.plugins[info.Name] = p
	return nil
}

// Unregister removes a plugin from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[name]; !ok {
		return
	}
	delete(r.plugins, name)

	filtered := r.order[:0]
	for _, n := range r.order {
		if n != name {
			filtered = append(filtered, n)
		}
	}
	r.order = filtered
}

// Get returns a plugin by name, or an error if not found.
func (r *Registry) Get(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]
	if !ok {
		return nil, &ErrPluginNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered plugins, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.plugins))
	for _, p := range r.plugins {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// Apply passes text through every plugin in registration order.
func (r *Registry) Apply(text string) string {
	r.mu.RLock()
	chain := make([]Plugin, 0, len(r.order))
	for _, name := range r.order {
		chain = append(chain, r.plugins[name])
	}
	r.mu.RUnlock()

	for _, p := range chain {
		text = p.Transform(text)
	}
	return text
}
