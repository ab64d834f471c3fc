package service_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/identity"
	"github.com/GreenHouse007/world-builder/internal/service"
	"github.com/GreenHouse007/world-builder/internal/store"
)

func newService() (*service.WorldService, *service.MockEmitter) {
	emitter := &service.MockEmitter{}
	return service.NewWorldService(store.NewMemory(), emitter, zerolog.Nop()), emitter
}

func actor() *identity.Actor {
	return &identity.Actor{ID: "u1", Name: "Ana"}
}

func TestApplyChangesPersistsAndReturnsCanonical(t *testing.T) {
	svc, emitter := newService()
	ctx := context.Background()

	world := &domain.World{ID: "w1", Name: "Midgard", OwnerID: "u1",
		Collaborators: []domain.Collaborator{{ID: "u1", Name: "Ana", Role: domain.RoleOwner}}}

	out, err := svc.ApplyChanges(ctx, actor(), []domain.WorldChange{
		{Type: domain.ChangeCreateWorld, World: world},
		{Type: domain.ChangeInsertPage, WorldID: "w1",
			Page: &domain.PageNode{ID: "p1", Title: "Races"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || len(out[0].Pages) != 1 {
		t.Fatalf("unexpected result: %+v", out)
	}
	if out[0].UpdatedAt == "" {
		t.Fatal("expected updatedAt stamped on touched world")
	}

	// A later list sees the persisted state.
	listed, err := svc.ListWorlds(ctx, actor())
	if err != nil {
		t.Fatal(err)
	}
	if len(listed) != 1 || listed[0].Pages[0].ID != "p1" {
		t.Fatalf("unexpected listed state: %+v", listed)
	}

	if len(emitter.Events) == 0 || emitter.Events[0].Event != "worlds:changed" {
		t.Fatalf("expected worlds:changed emission, got %+v", emitter.Events)
	}
}

func TestApplyChangesFiltersUnknownTypes(t *testing.T) {
	svc, _ := newService()
	out, err := svc.ApplyChanges(context.Background(), actor(), []domain.WorldChange{
		{Type: domain.ChangeType("dropAllTables"), WorldID: "w1"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no worlds, got %+v", out)
	}
}

func TestListWorldsNormalizesStoredRecords(t *testing.T) {
	mem := store.NewMemory()
	// A malformed record: no collaborators, no owner.
	if err := mem.ReplaceWorlds(context.Background(), "u1",
		[]*domain.World{{ID: "w1", Name: ""}}); err != nil {
		t.Fatal(err)
	}
	svc := service.NewWorldService(mem, nil, zerolog.Nop())

	worlds, err := svc.ListWorlds(context.Background(), actor())
	if err != nil {
		t.Fatal(err)
	}
	if len(worlds) != 1 {
		t.Fatalf("expected one world, got %d", len(worlds))
	}
	w := worlds[0]
	if w.Name != domain.DefaultWorldName {
		t.Fatalf("expected defaulted name, got %q", w.Name)
	}
	if len(w.Collaborators) != 1 || w.Collaborators[0].Role != domain.RoleOwner {
		t.Fatalf("expected synthesized owner, got %+v", w.Collaborators)
	}
	if w.OwnerID != w.Collaborators[0].ID {
		t.Fatal("ownerId must match the owner collaborator")
	}
}

func TestDeleteAll(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	if _, err := svc.ApplyChanges(ctx, actor(), []domain.WorldChange{
		{Type: domain.ChangeCreateWorld, World: &domain.World{ID: "w1", Name: "Midgard", OwnerID: "u1"}},
	}); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteAll(ctx, actor()); err != nil {
		t.Fatal(err)
	}
	worlds, err := svc.ListWorlds(ctx, actor())
	if err != nil {
		t.Fatal(err)
	}
	if len(worlds) != 0 {
		t.Fatalf("expected no worlds, got %d", len(worlds))
	}
}
