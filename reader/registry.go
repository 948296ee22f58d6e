package reader

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps plugin names to the factories creating their readers. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns a registry with all built-in readers.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for name, version := range phoenixVersions {
			// Names are unique, registering into an empty registry can't fail.
			_ = defaultRegistry.Register(name, NewPhoenixFactory(version))
		}
	})
	return defaultRegistry
}

// Register adds a factory under name. Names are case-insensitive and can only be registered once.
func (r *Registry) Register(name string, factory Factory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("reader name must not be empty")
	}
	if factory == nil {
		return fmt.Errorf("reader '%v' has no factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("reader '%v' is already registered", key)
	}
	r.factories[key] = factory
	return nil
}

// New creates the reader named by cfg.
func (r *Registry) New(cfg Config, env Environment) (Reader, error) {
	key := strings.ToLower(strings.TrimSpace(cfg.Name))

	r.mu.RLock()
	factory, exists := r.factories[key]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("unknown reader '%v', known readers are: %v", cfg.Name, strings.Join(r.Names(), ", "))
	}

	rd, err := factory(cfg, env)
	if err != nil {
		return nil, fmt.Errorf("failed to create reader '%v': %w", key, err)
	}
	return rd, nil
}

// Names returns all registered names in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
