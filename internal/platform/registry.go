package platform

import (
	"fmt"
	"slices"

	"github.com/goapply/goapply/internal/types"
	"gopkg.in/yaml.v3"
)

// Registry maps platforms to their adapters.
type Registry struct {
	adapters map[types.Platform]*Adapter
}

// Builtin returns a registry with the shipped adapters for every platform.
func Builtin() *Registry {
	r := &Registry{adapters: map[types.Platform]*Adapter{}}
	for _, a := range []*Adapter{linkedIn(), indeed(), naukri(), internshala(), unstop()} {
		r.adapters[a.Name] = a
	}
	return r
}

// Get returns the adapter for p.
func (r *Registry) Get(p types.Platform) (*Adapter, error) {
	a, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for platform %q", p)
	}
	return a, nil
}

// Register adds or replaces an adapter after validating it.
func (r *Registry) Register(a *Adapter) error {
	if err := a.Validate(); err != nil {
		return err
	}
	r.adapters[a.Name] = a
	return nil
}

// Override decodes each yaml node over a copy of the registered adapter so
// that a configuration file only needs to list the selectors it changes.
// Lists given in the override replace the built in ones.
func (r *Registry) Override(overrides map[string]yaml.Node) error {
	for name, node := range overrides {
		p, err := types.ParsePlatform(name)
		if err != nil {
			return err
		}
		base, err := r.Get(p)
		if err != nil {
			return err
		}
		copied, err := clone(base)
		if err != nil {
			return err
		}
		if err := node.Decode(copied); err != nil {
			return fmt.Errorf("decoding overrides for platform %s: %w", p, err)
		}
		copied.Name = p
		if err := r.Register(copied); err != nil {
			return err
		}
	}
	return nil
}

// Platforms returns the registered platforms in display order.
func (r *Registry) Platforms() []types.Platform {
	var out []types.Platform
	for _, p := range types.Platforms {
		if _, ok := r.adapters[p]; ok {
			out = append(out, p)
		}
	}
	for p := range r.adapters {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// clone deep copies an adapter through its yaml representation.
func clone(a *Adapter) (*Adapter, error) {
	b, err := yaml.Marshal(a)
	if err != nil {
		return nil, err
	}
	var c Adapter
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
