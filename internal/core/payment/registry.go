package payment

import (
	"errors"
	"fmt"
)

// Registry maps normalized provider names to their callback adapters. Built
// once at startup; immutable afterwards, so it is safe for concurrent use.
type Registry struct {
	adapters map[string]CallbackAdapter
	fallback CallbackAdapter
}

// NewRegistry assembles a registry from the full adapter set. Exactly one
// adapter must self-identify as the fallback; anything else is a
// configuration error the caller must treat as fatal.
func NewRegistry(adapters ...CallbackAdapter) (*Registry, error) {
	r := &Registry{adapters: make(map[string]CallbackAdapter, len(adapters))}

	for _, a := range adapters {
		name := normalizeProvider(a.Provider())
		if _, dup := r.adapters[name]; dup {
			return nil, fmt.Errorf("payment: duplicate adapter for provider %q", name)
		}
		r.adapters[name] = a

		if a.Fallback() {
			if r.fallback != nil {
				return nil, fmt.Errorf("payment: adapters %q and %q both claim the fallback role",
					r.fallback.Provider(), a.Provider())
			}
			r.fallback = a
		}
	}

	if r.fallback == nil {
		return nil, errors.New("payment: no fallback adapter registered")
	}
	return r, nil
}

// Resolve returns the adapter for the given provider name, normalized with
// trim and uppercase. Unknown or blank names resolve to the fallback adapter
// so that an unexpected webhook is still processed under generic rules
// instead of being dropped.
func (r *Registry) Resolve(provider string) CallbackAdapter {
	if a, ok := r.adapters[normalizeProvider(provider)]; ok {
		return a
	}
	return r.fallback
}
