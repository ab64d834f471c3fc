package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/store"
)

func worldFixture(id, name string) *domain.World {
	return &domain.World{
		ID:      id,
		Name:    name,
		OwnerID: "u1",
		Pages: []*domain.PageNode{
			{ID: "p1", Title: "Races", Children: []*domain.PageNode{
				{ID: "p2", Title: "Elves", Content: "<p>pointy ears</p>"},
			}},
		},
		Collaborators: []domain.Collaborator{{ID: "u1", Name: "Ana", Role: domain.RoleOwner}},
	}
}

// exerciseStore runs the shared contract every backend must satisfy.
func exerciseStore(t *testing.T, s domain.WorldStore) {
	t.Helper()
	ctx := context.Background()

	// empty owner
	worlds, err := s.FindWorlds(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(worlds) != 0 {
		t.Fatalf("expected no worlds, got %d", len(worlds))
	}

	// replace and read back, order preserved
	in := []*domain.World{worldFixture("w1", "Midgard"), worldFixture("w2", "Asgard")}
	if err := s.ReplaceWorlds(ctx, "u1", in); err != nil {
		t.Fatal(err)
	}
	worlds, err = s.FindWorlds(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(worlds) != 2 || worlds[0].ID != "w1" || worlds[1].ID != "w2" {
		t.Fatalf("unexpected worlds: %+v", worlds)
	}
	if worlds[0].Pages[0].Children[0].Content != "<p>pointy ears</p>" {
		t.Fatal("nested page content must survive the round trip")
	}

	// wholesale replace drops what is absent
	if err := s.ReplaceWorlds(ctx, "u1", []*domain.World{worldFixture("w2", "Asgard")}); err != nil {
		t.Fatal(err)
	}
	worlds, _ = s.FindWorlds(ctx, "u1")
	if len(worlds) != 1 || worlds[0].ID != "w2" {
		t.Fatalf("expected only w2, got %+v", worlds)
	}

	// owners are isolated
	other, err := s.FindWorlds(ctx, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if len(other) != 0 {
		t.Fatal("owners must not see each other's worlds")
	}

	// delete
	if err := s.DeleteWorlds(ctx, "u1"); err != nil {
		t.Fatal(err)
	}
	worlds, _ = s.FindWorlds(ctx, "u1")
	if len(worlds) != 0 {
		t.Fatal("expected worlds deleted")
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, store.NewMemory())
}

func TestSQLiteStore(t *testing.T) {
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "worlds.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(context.Background())
	exerciseStore(t, s)
}

func TestOpenEmptyDSN(t *testing.T) {
	if _, err := store.Open(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty dsn")
	}
}
