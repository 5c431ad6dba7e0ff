package campaign

import (
	"context"
	"errors"
	"testing"
)

func TestInMemoryCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	created, err := s.Create(ctx, Campaign{
		OwnerID:         "default",
		Name:            "spring-outreach",
		SystemPrompt:    "You are a friendly sales rep.",
		InitialGreeting: "Hello, interested in a demo?",
		IsActive:        true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Fatalf("Create() did not assign an ID")
	}

	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.InitialGreeting != "Hello, interested in a demo?" || !got.IsActive {
		t.Fatalf("unexpected campaign: %+v", got)
	}

	inactive := false
	updated, err := s.Update(ctx, created.ID, Update{IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.IsActive {
		t.Fatalf("Update() did not apply IsActive")
	}
	if updated.Name != "spring-outreach" {
		t.Fatalf("Update() clobbered untouched field: %+v", updated)
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("List() length = %d, want 1", len(list))
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after delete error = %v, want ErrNotFound", err)
	}
}

func TestInMemoryMissingID(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if _, err := s.Update(ctx, "nope", Update{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() error = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete() error = %v, want ErrNotFound", err)
	}
}
