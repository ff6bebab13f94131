package spacetime

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/anisan-cli/spacetime/source"
)

// Registry holds the source plugins and compositors available to compositions.
// Each composition takes a snapshot of the plugins at construction, so later
// changes to the registry do not leak into existing compositions.
type Registry struct {
	plugins     map[string]source.Factory
	compositors map[string]CompositorFactory
}

// NewRegistry creates a registry preloaded with the built-in sources:
// the null source ("") and "text" and "media".
func NewRegistry() *Registry {
	r := &Registry{
		plugins:     make(map[string]source.Factory),
		compositors: make(map[string]CompositorFactory),
	}
	lo.Must0(r.Plugin("", source.Null))
	lo.Must0(r.Plugin("text", source.Text))
	lo.Must0(r.Plugin("media", source.Media))
	return r
}

// Plugin registers a source factory under name.
func (r *Registry) Plugin(name string, factory source.Factory) error {
	if factory == nil {
		return fmt.Errorf("plugin %q: nil factory", name)
	}
	if _, ok := r.plugins[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicatePlugin, name)
	}
	r.plugins[name] = factory
	return nil
}

// RemovePlugin unregisters a source factory.
func (r *Registry) RemovePlugin(name string) {
	delete(r.plugins, name)
}

// Source returns the factory registered under name.
func (r *Registry) Source(name string) (source.Factory, bool) {
	f, ok := r.plugins[name]
	return f, ok
}

// Plugins returns the registered plugin names in order.
func (r *Registry) Plugins() []string {
	names := lo.Keys(r.plugins)
	sort.Strings(names)
	return names
}

// Compositor registers a compositor factory under name.
func (r *Registry) Compositor(name string, factory CompositorFactory) error {
	if factory == nil {
		return fmt.Errorf("compositor %q: nil factory", name)
	}
	if _, ok := r.compositors[name]; ok {
		return fmt.Errorf("%w: compositor %q", ErrDuplicatePlugin, name)
	}
	r.compositors[name] = factory
	return nil
}

// RemoveCompositor unregisters a compositor factory.
func (r *Registry) RemoveCompositor(name string) {
	delete(r.compositors, name)
}

func (r *Registry) compositor(name string) (CompositorFactory, bool) {
	f, ok := r.compositors[name]
	return f, ok
}

func (r *Registry) snapshot() map[string]source.Factory {
	return lo.Assign(r.plugins)
}
