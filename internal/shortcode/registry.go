package shortcode

import (
	"sort"
	"strings"
	"sync"
)

// Registry is a thread-safe catalogue of shortcode definitions.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
	validator   DefinitionValidator
}

// DefinitionValidator abstracts definition validation so callers can customise behaviour in tests.
type DefinitionValidator interface {
	ValidateDefinition(def Definition) error
}

// NewRegistry constructs a registry using the supplied validator.
func NewRegistry(validator DefinitionValidator) *Registry {
	return &Registry{
		definitions: make(map[string]Definition),
		validator:   validator,
	}
}

// NewBookRegistry returns a registry holding BuiltInDefinitions plus a
// permissive definition for every name in extra.
func NewBookRegistry(extra ...string) (*Registry, error) {
	registry := NewRegistry(NewValidator())
	for _, def := range BuiltInDefinitions() {
		if err := registry.Register(def); err != nil {
			return nil, err
		}
	}
	for _, name := range extra {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := registry.Get(name); ok {
			continue
		}
		if err := registry.Register(Definition{Name: name, AnyParams: true}); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Register stores a definition if it passes validation and the name is not taken.
func (r *Registry) Register(def Definition) error {
	name := strings.TrimSpace(strings.ToLower(def.Name))
	if name == "" {
		return ErrInvalidDefinition
	}

	if r.validator != nil {
		if err := r.validator.ValidateDefinition(def); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.definitions[name]; exists {
		return ErrDuplicateDefinition
	}

	r.definitions[name] = def
	return nil
}

// Get returns the stored definition.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, ok := r.definitions[strings.ToLower(strings.TrimSpace(name))]
	return def, ok
}

// List returns all registered definitions in name order.
func (r *Registry) List() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Definition, 0, len(r.definitions))
	for _, def := range r.definitions {
		result = append(result, def)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

// Remove deletes the definition if it exists.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.definitions, strings.ToLower(name))
}
