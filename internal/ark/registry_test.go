package ark

import (
	"context"
	"sync"
	"testing"
)

// stubClient satisfies the Client interface for registry tests.
type stubClient struct {
	key Key
}

func (s *stubClient) CreateTask(ctx context.Context, req CreateTaskRequest) (string, error) {
	return "", nil
}

func (s *stubClient) GetTask(ctx context.Context, taskID string) (Task, error) {
	return Task{}, nil
}

func TestRegistry_GetCachesPerKey(t *testing.T) {
	builds := 0
	r := NewRegistry(WithBuilder(func(k Key) (Client, error) {
		builds++
		return &stubClient{key: k}, nil
	}))

	key := Key{Credential: "key-a", Variant: "seedance-1-0-pro-250528"}
	c1, err := r.Get(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c2, err := r.Get(key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c1 != c2 {
		t.Error("expected the same client instance for the same key")
	}
	if builds != 1 {
		t.Errorf("expected 1 build, got %d", builds)
	}
}

func TestRegistry_DistinctKeysGetDistinctClients(t *testing.T) {
	r := NewRegistry(WithBuilder(func(k Key) (Client, error) {
		return &stubClient{key: k}, nil
	}))

	c1, _ := r.Get(Key{Credential: "key-a", Variant: "model-1"})
	c2, _ := r.Get(Key{Credential: "key-a", Variant: "model-2"})
	c3, _ := r.Get(Key{Credential: "key-b", Variant: "model-1"})

	if c1 == c2 || c1 == c3 {
		t.Error("expected distinct clients for distinct keys")
	}
	if r.Len() != 3 {
		t.Errorf("expected 3 cached clients, got %d", r.Len())
	}
}

func TestRegistry_Evict(t *testing.T) {
	builds := 0
	r := NewRegistry(WithBuilder(func(k Key) (Client, error) {
		builds++
		return &stubClient{key: k}, nil
	}))

	key := Key{Credential: "key-a"}
	first, _ := r.Get(key)
	r.Evict(key)
	second, _ := r.Get(key)

	if first == second {
		t.Error("expected a fresh client after eviction")
	}
	if builds != 2 {
		t.Errorf("expected 2 builds, got %d", builds)
	}
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	r := NewRegistry(WithBuilder(func(k Key) (Client, error) {
		return &stubClient{key: k}, nil
	}))

	key := Key{Credential: "key-a"}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Get(key); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if r.Len() != 1 {
		t.Errorf("expected a single cached client, got %d", r.Len())
	}
}
