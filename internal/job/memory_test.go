package job

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryRepository_SaveAndFind(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	j := NewWithID("test-job")
	j.Prompt = "a cat"

	if err := repo.Save(ctx, j); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	found, err := repo.FindByID(ctx, "test-job")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Prompt != "a cat" {
		t.Errorf("expected prompt carried over, got %q", found.Prompt)
	}

	// Stored copy must be isolated from later mutations of the original.
	j.Prompt = "changed"
	found2, _ := repo.FindByID(ctx, "test-job")
	if found2.Prompt != "a cat" {
		t.Error("mutation of the saved job leaked into the repository")
	}
}

func TestMemoryRepository_FindMissing(t *testing.T) {
	repo := NewMemoryRepository()

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestMemoryRepository_List(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if err := repo.Save(ctx, NewWithID(id)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	jobs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 3 {
		t.Errorf("expected 3 jobs, got %d", len(jobs))
	}
}

func TestMemoryRepository_Delete(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if err := repo.Save(ctx, NewWithID("test-job")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Delete(ctx, "test-job"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := repo.FindByID(ctx, "test-job"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound after delete, got %v", err)
	}
	if err := repo.Delete(ctx, "test-job"); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound for double delete, got %v", err)
	}
}
