package transforms

import (
	"sort"
	"sync"

	"github.com/arthur-debert/assetpipe/pkg/errors"
)

// Registry is a thread-safe set of transforms keyed by name
type Registry struct {
	mu    sync.RWMutex
	items map[string]Transform
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{items: make(map[string]Transform)}
}

// DefaultRegistry returns a registry holding every built-in transform
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range Builtins() {
		MustRegister(r, t)
	}
	return r
}

// Register adds a transform
func (r *Registry) Register(t Transform) error {
	if t == nil || t.Name() == "" {
		return errors.New(errors.ErrInvalidInput, "transform name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[t.Name()]; exists {
		return errors.Newf(errors.ErrAlreadyExists, "transform '%s' is already registered", t.Name())
	}
	r.items[t.Name()] = t
	return nil
}

// MustRegister registers a transform and panics if registration fails
// This is useful for init code where registration errors are programming errors
func MustRegister(r *Registry, t Transform) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Get looks up a transform
func (r *Registry) Get(name string) (Transform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[name]
	if !ok {
		return nil, errors.Newf(errors.ErrTransformNotFound, "transform '%s' not found in registry", name)
	}
	return t, nil
}

// Has checks if a transform is registered
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.items[name]
	return ok
}

// List returns all registered names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that a ref names a registered transform and uses only the
// options that transform recognizes.
func (r *Registry) Validate(ref Ref) error {
	t, err := r.Get(ref.Name)
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(t.Options()))
	for _, o := range t.Options() {
		known[o] = true
	}
	for _, key := range ref.Options.Keys() {
		if !known[key] {
			return errors.Newf(errors.ErrTransformOption,
				"transform '%s' does not recognize option '%s'", ref.Name, key).
				WithDetail("recognized", t.Options())
		}
	}
	return nil
}
