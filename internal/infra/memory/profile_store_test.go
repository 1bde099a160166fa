package memory

import (
	"context"
	"testing"
)

func TestProfileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewProfileStore()

	if err := store.SetActiveChild(ctx, "Léa"); err != nil {
		t.Fatalf("set active: %v", err)
	}
	name, err := store.ActiveChild(ctx)
	if err != nil || name != "Léa" {
		t.Fatalf("expected Léa, got %q (%v)", name, err)
	}

	if err := store.SetChildNames(ctx, []string{"Léa", "Tom"}); err != nil {
		t.Fatalf("set names: %v", err)
	}
	names, err := store.ChildNames(ctx)
	if err != nil {
		t.Fatalf("get names: %v", err)
	}
	if len(names) != 2 || names[1] != "Tom" {
		t.Fatalf("unexpected names %v", names)
	}
}

func TestProfileStoreEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewProfileStore()
	names, err := store.ChildNames(ctx)
	if err != nil || names != nil {
		t.Fatalf("expected no names, got %v (%v)", names, err)
	}
}

func TestMigrateLegacyKey(t *testing.T) {
	ctx := context.Background()
	store := NewProfileStore()
	store.Seed(keyLegacyChild, "Léa")

	if err := store.MigrateLegacyKey(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	name, _ := store.ActiveChild(ctx)
	if name != "Léa" {
		t.Fatalf("expected migrated name, got %q", name)
	}
	// Migration never overwrites an already chosen name.
	store.Seed(keyLegacyChild, "Tom")
	if err := store.MigrateLegacyKey(ctx); err != nil {
		t.Fatalf("migrate 2: %v", err)
	}
	name, _ = store.ActiveChild(ctx)
	if name != "Léa" {
		t.Fatalf("migration overwrote active child with %q", name)
	}
}
