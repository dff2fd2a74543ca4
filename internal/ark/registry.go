package ark

import (
	"sync"
)

// Key identifies a cached client: the bearer credential plus an optional
// variant (typically the model endpoint) so different model variants under
// the same credential can carry different client configuration.
type Key struct {
	Credential string
	Variant    string
}

// Registry is an explicit client cache. Callers construct one, inject it
// where clients are needed, and evict entries when a credential is rotated.
// It replaces hidden package-level client singletons so concurrent jobs
// stay deterministic under test.
type Registry struct {
	mu      sync.Mutex
	clients map[Key]Client
	build   func(Key) (Client, error)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBuilder overrides how the registry constructs clients for new keys.
func WithBuilder(build func(Key) (Client, error)) RegistryOption {
	return func(r *Registry) {
		r.build = build
	}
}

// NewRegistry creates a client registry. By default new keys are served by
// NewClient with the key's credential.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		clients: make(map[Key]Client),
		build: func(k Key) (Client, error) {
			return NewClient(WithAPIKey(k.Credential))
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the client for the key, constructing and caching one on
// first use.
func (r *Registry) Get(k Key) (Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.clients[k]; ok {
		return c, nil
	}

	c, err := r.build(k)
	if err != nil {
		return nil, err
	}
	r.clients[k] = c
	return c, nil
}

// Evict drops the cached client for the key, if any.
func (r *Registry) Evict(k Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, k)
}

// Len returns the number of cached clients.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}
