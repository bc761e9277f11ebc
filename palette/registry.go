package palette

import (
	"fmt"
	"sync"
)

// Provider resolves a palette by name. Both *Table and the sqlite backed
// store in the parent package implement it.
type Provider interface {
	Palette(name string) (Palette, error)
}

// Registry memoizes palettes resolved through a Provider. Each name is
// resolved and validated at most once; afterwards the cached palette is
// shared read-only between callers.
type Registry struct {
	provider Provider

	mu       sync.Mutex
	palettes map[string]Palette
}

// NewRegistry returns a Registry backed by p.
func NewRegistry(p Provider) *Registry {
	return &Registry{
		provider: p,
		palettes: make(map[string]Palette),
	}
}

// Palette returns the named palette, resolving it on first use. The returned
// palette must not be modified.
func (r *Registry) Palette(name string) (Palette, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.palettes[name]; ok {
		return p, nil
	}

	p, err := r.provider.Palette(name)
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%q: %w", name, err)
	}

	// Keep a private copy so the provider can't change it underneath us
	p = append(Palette(nil), p...)
	r.palettes[name] = p

	return p, nil
}

// Forget drops any memoized copy of the named palette.
func (r *Registry) Forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.palettes, name)
}
