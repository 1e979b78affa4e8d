package mediatype

import (
	"fmt"
	"sync"
)

// Registry is a catalog of media types. The zero value is an empty catalog.
type Registry struct {
	mu      sync.RWMutex
	catalog []*MediaType
}

// NewRegistry creates a registry holding the given media types.
func NewRegistry(types ...*MediaType) (*Registry, error) {
	registry := &Registry{}

	for _, mt := range types {
		err := registry.Register(mt)
		if err != nil {
			return nil, err
		}
	}

	return registry, nil
}

// Defaults returns the media types every session starts with.
func Defaults() []*MediaType {
	return []*MediaType{
		Wildcard(),
		JSON(),
		FormURLEncoded(),
	}
}

// DefaultRegistry returns a registry holding Defaults.
func DefaultRegistry() *Registry {
	registry := &Registry{}
	registry.catalog = Defaults()

	return registry
}

// Register adds mt to the catalog, replacing an entry with the same name.
func (r *Registry) Register(mt *MediaType) error {
	if mt == nil {
		return fmt.Errorf("%w: nil media type", ErrConfiguration)
	}

	if len(mt.signatures) == 0 {
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, mt.name, ErrNoSignature)
	}

	if mt.parser == nil {
		return fmt.Errorf("%w: %s: %w", ErrConfiguration, mt.name, ErrNoParser)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog = append(r.without(mt.name), mt)

	return nil
}

// Unregister removes the media type called name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog = r.without(name)
}

// Reset restores the default catalog.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.catalog = Defaults()
}

// Types returns the catalog in registration order.
func (r *Registry) Types() []*MediaType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]*MediaType(nil), r.catalog...)
}

// Lookup returns the media type registered under name.
func (r *Registry) Lookup(name string) (*MediaType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, mt := range r.catalog {
		if mt.name == name {
			return mt, true
		}
	}

	return nil, false
}

// Find returns the media type best matching one of the candidates, or nil.
// The most specific match wins: the media type whose matching signature is the
// longest. Equal lengths keep registration order.
func (r *Registry) Find(candidates ...string) *MediaType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *MediaType

	bestLen := -1

	for _, mt := range r.catalog {
		signature, ok := mt.Supports(candidates...)
		if ok && len(signature) > bestLen {
			best = mt
			bestLen = len(signature)
		}
	}

	return best
}

// MustFind is like Find but reports ErrParserNotFound.
func (r *Registry) MustFind(candidates ...string) (*MediaType, error) {
	mt := r.Find(candidates...)
	if mt == nil {
		return nil, fmt.Errorf("%w: %q", ErrParserNotFound, candidates)
	}

	return mt, nil
}

func (r *Registry) without(name string) []*MediaType {
	kept := make([]*MediaType, 0, len(r.catalog)+1)

	for _, mt := range r.catalog {
		if mt.name != name {
			kept = append(kept, mt)
		}
	}

	return kept
}

// Builtin returns a built-in media type by name: "wildcard", "json",
// "form", "xml", "yaml" or "grid5000".
func Builtin(name string) (*MediaType, error) {
	switch name {
	case NameWildcard:
		return Wildcard(), nil
	case NameJSON:
		return JSON(), nil
	case NameForm, "application_x_www_form_urlencoded":
		return FormURLEncoded(), nil
	case NameXML:
		return XML(), nil
	case NameYAML:
		return YAML(), nil
	case NameGrid5000:
		return Grid5000(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMediaType, name)
	}
}
