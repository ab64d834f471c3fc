package worldsync_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/pagetree"
	"github.com/GreenHouse007/world-builder/internal/worldsync"
)

func page(id string, children ...*domain.PageNode) *domain.PageNode {
	return &domain.PageNode{ID: id, Title: "Page " + id, Children: children}
}

func ids(forest []*domain.PageNode) []string {
	var out []string
	for _, n := range pagetree.Flatten(forest) {
		out = append(out, n.ID)
	}
	return out
}

func testWorld(id string, pages ...*domain.PageNode) *domain.World {
	return &domain.World{
		ID:      id,
		Name:    "World " + id,
		OwnerID: "u1",
		Pages:   pages,
		Collaborators: []domain.Collaborator{
			{ID: "u1", Name: "Ana", Role: domain.RoleOwner},
		},
	}
}

func strptr(s string) *string { return &s }
func boolptr(b bool) *bool    { return &b }

func TestApplyCreateWorld(t *testing.T) {
	base := []*domain.World{testWorld("w1")}

	t.Run("insert", func(t *testing.T) {
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeCreateWorld, World: testWorld("w2")},
		})
		require.Len(t, out, 2)
		assert.Equal(t, "w2", out[1].ID)
	})

	t.Run("replace by id", func(t *testing.T) {
		replacement := testWorld("w1")
		replacement.Name = "Replaced"
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeCreateWorld, World: replacement},
		})
		require.Len(t, out, 1)
		assert.Equal(t, "Replaced", out[0].Name)
	})
}

func TestApplyUpdateWorld(t *testing.T) {
	base := []*domain.World{testWorld("w1")}
	out := worldsync.Apply(base, []domain.WorldChange{
		{Type: domain.ChangeUpdateWorld, WorldID: "w1",
			WorldPatch: &domain.WorldPatch{Name: strptr("Renamed"), Description: strptr("desc")}},
	})
	assert.Equal(t, "Renamed", out[0].Name)
	assert.Equal(t, "desc", out[0].Description)
	assert.Equal(t, "u1", out[0].OwnerID, "absent fields untouched")
}

func TestApplyDeleteWorld(t *testing.T) {
	base := []*domain.World{testWorld("w1"), testWorld("w2")}
	out := worldsync.Apply(base, []domain.WorldChange{
		{Type: domain.ChangeDeleteWorld, WorldID: "w1"},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "w2", out[0].ID)

	// absent world is a no-op
	out = worldsync.Apply(base, []domain.WorldChange{
		{Type: domain.ChangeDeleteWorld, WorldID: "nope"},
	})
	assert.Len(t, out, 2)
}

func TestApplyInsertPage(t *testing.T) {
	base := []*domain.World{testWorld("w1", page("root"))}

	t.Run("at root", func(t *testing.T) {
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeInsertPage, WorldID: "w1", Page: page("p1")},
		})
		assert.Equal(t, []string{"root", "p1"}, ids(out[0].Pages))
	})

	t.Run("under parent", func(t *testing.T) {
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeInsertPage, WorldID: "w1", ParentID: strptr("root"), Page: page("p1")},
		})
		require.Len(t, out[0].Pages, 1)
		assert.Equal(t, []string{"root", "p1"}, ids(out[0].Pages))
	})

	t.Run("unknown world ignored", func(t *testing.T) {
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeInsertPage, WorldID: "nope", Page: page("p1")},
		})
		assert.Equal(t, []string{"root"}, ids(out[0].Pages))
	})
}

func TestApplyUpdatePage(t *testing.T) {
	base := []*domain.World{testWorld("w1", page("p1"))}
	out := worldsync.Apply(base, []domain.WorldChange{
		{Type: domain.ChangeUpdatePage, WorldID: "w1", PageID: "p1",
			PagePatch: &domain.PagePatch{Title: strptr("Dragons"), Favorite: boolptr(true)}},
	})
	p := pagetree.Find(out[0].Pages, "p1")
	assert.Equal(t, "Dragons", p.Title)
	assert.True(t, p.Favorite)
	assert.Empty(t, p.Content, "absent fields untouched")
}

func TestApplyInsertThenRemoveIsNetNoop(t *testing.T) {
	base := []*domain.World{testWorld("w1")}
	out := worldsync.Apply(base, []domain.WorldChange{
		{Type: domain.ChangeInsertPage, WorldID: "w1", Page: page("p1")},
		{Type: domain.ChangeRemovePage, WorldID: "w1", PageID: "p1"},
	})
	assert.Empty(t, out[0].Pages)
}

func TestApplyMovePage(t *testing.T) {
	base := []*domain.World{testWorld("w1", page("a"), page("b"), page("c"))}

	t.Run("before", func(t *testing.T) {
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeMovePage, WorldID: "w1", PageID: "c", TargetID: "a", Position: domain.MoveBefore},
		})
		assert.Equal(t, []string{"c", "a", "b"}, ids(out[0].Pages))
	})

	t.Run("after", func(t *testing.T) {
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeMovePage, WorldID: "w1", PageID: "a", TargetID: "b", Position: domain.MoveAfter},
		})
		assert.Equal(t, []string{"b", "a", "c"}, ids(out[0].Pages))
	})

	t.Run("missing target falls back to append", func(t *testing.T) {
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeMovePage, WorldID: "w1", PageID: "a", TargetID: "gone", Position: domain.MoveBefore},
		})
		assert.Equal(t, []string{"b", "c", "a"}, ids(out[0].Pages))
	})

	t.Run("cycle-inducing move ignored", func(t *testing.T) {
		nested := []*domain.World{testWorld("w1", page("a", page("b")))}
		out := worldsync.Apply(nested, []domain.WorldChange{
			{Type: domain.ChangeMovePage, WorldID: "w1", PageID: "a", TargetID: "b", Position: domain.MoveBefore},
		})
		assert.Equal(t, []string{"a", "b"}, ids(out[0].Pages))
	})
}

func TestApplyAppendActivity(t *testing.T) {
	base := []*domain.World{testWorld("w1")}

	t.Run("prepends and sanitizes", func(t *testing.T) {
		out := worldsync.Apply(base, []domain.WorldChange{
			{Type: domain.ChangeAppendActivity, WorldID: "w1",
				Entries: []domain.ActivityEntry{{Target: "Races"}}},
			{Type: domain.ChangeAppendActivity, WorldID: "w1",
				Entries: []domain.ActivityEntry{{Target: "Dragons"}}},
		})
		activity := out[0].Activity
		require.Len(t, activity, 2)
		assert.Equal(t, "Dragons", activity[0].Target, "newest first")
		assert.NotEmpty(t, activity[0].Timestamp)
		assert.Equal(t, domain.ActivityUpdate, activity[0].Action)
	})

	t.Run("cap enforced", func(t *testing.T) {
		changes := make([]domain.WorldChange, domain.ActivityCap+5)
		for i := range changes {
			changes[i] = domain.WorldChange{
				Type: domain.ChangeAppendActivity, WorldID: "w1",
				Entries: []domain.ActivityEntry{{Target: fmt.Sprintf("t%d", i)}},
			}
		}
		out := worldsync.Apply(base, changes)
		assert.Len(t, out[0].Activity, domain.ActivityCap)
		assert.Equal(t, fmt.Sprintf("t%d", domain.ActivityCap+4), out[0].Activity[0].Target)
	})
}

func TestApplySetCollaborators(t *testing.T) {
	base := []*domain.World{testWorld("w1")}
	out := worldsync.Apply(base, []domain.WorldChange{
		{Type: domain.ChangeSetCollaborators, WorldID: "w1",
			Collaborators: []domain.Collaborator{
				{ID: "u1", Role: domain.RoleOwner},
				{ID: "u9", Role: domain.RoleViewer},
			}},
	})
	assert.Len(t, out[0].Collaborators, 2)
}

func TestApplyUnknownTypeIgnored(t *testing.T) {
	base := []*domain.World{testWorld("w1")}
	out := worldsync.Apply(base, []domain.WorldChange{
		{Type: domain.ChangeType("explodeWorld"), WorldID: "w1"},
	})
	assert.Equal(t, "w1", out[0].ID)
	assert.Len(t, out, 1)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	base := []*domain.World{testWorld("w1", page("p1"))}
	worldsync.Apply(base, []domain.WorldChange{
		{Type: domain.ChangeRemovePage, WorldID: "w1", PageID: "p1"},
		{Type: domain.ChangeUpdateWorld, WorldID: "w1", WorldPatch: &domain.WorldPatch{Name: strptr("X")}},
	})
	assert.Equal(t, "World w1", base[0].Name)
	assert.Equal(t, []string{"p1"}, ids(base[0].Pages))
}

// Sequential composition: applying C1 ++ C2 equals applying C1 then C2.
func TestApplySequentialComposition(t *testing.T) {
	base := []*domain.World{testWorld("w1", page("a"))}
	c1 := []domain.WorldChange{
		{Type: domain.ChangeInsertPage, WorldID: "w1", Page: page("b")},
		{Type: domain.ChangeUpdatePage, WorldID: "w1", PageID: "a",
			PagePatch: &domain.PagePatch{Title: strptr("Alpha")}},
	}
	c2 := []domain.WorldChange{
		{Type: domain.ChangeMovePage, WorldID: "w1", PageID: "b", TargetID: "a", Position: domain.MoveBefore},
		{Type: domain.ChangeAppendActivity, WorldID: "w1",
			Entries: []domain.ActivityEntry{{ID: "e1", Action: domain.ActivityMove, Target: "b", Timestamp: "2026-01-01T00:00:00Z"}}},
	}

	combined := worldsync.Apply(base, append(append([]domain.WorldChange{}, c1...), c2...))
	stepped := worldsync.Apply(worldsync.Apply(base, c1), c2)
	assert.Equal(t, combined, stepped)
}
