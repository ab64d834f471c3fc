package worldsync

import (
	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/pagetree"
)

// Apply folds an ordered change list over a world list and returns the
// result. Each change sees the output of the previous one; changes are not
// commutative. The input list is deep-cloned up front, so callers keep their
// snapshot.
//
// The reducer is total: unknown change types, missing world ids and
// cycle-inducing moves are silently ignored, which keeps it safe to run
// speculatively against any base state.
func Apply(worlds []*domain.World, changes []domain.WorldChange) []*domain.World {
	out := domain.CloneWorlds(worlds)
	for _, c := range changes {
		out = applyOne(out, c)
	}
	return out
}

func applyOne(worlds []*domain.World, c domain.WorldChange) []*domain.World {
	switch c.Type {
	case domain.ChangeCreateWorld:
		if c.World == nil {
			return worlds
		}
		w := c.World.Clone()
		for i := range worlds {
			if worlds[i].ID == w.ID {
				worlds[i] = w
				return worlds
			}
		}
		return append(worlds, w)

	case domain.ChangeDeleteWorld:
		for i := range worlds {
			if worlds[i].ID == c.WorldID {
				return append(worlds[:i], worlds[i+1:]...)
			}
		}
		return worlds

	case domain.ChangeUpdateWorld:
		return withWorld(worlds, c.WorldID, func(w *domain.World) {
			if c.WorldPatch == nil {
				return
			}
			if c.WorldPatch.Name != nil {
				w.Name = *c.WorldPatch.Name
			}
			if c.WorldPatch.OwnerID != nil {
				w.OwnerID = *c.WorldPatch.OwnerID
			}
			if c.WorldPatch.Description != nil {
				w.Description = *c.WorldPatch.Description
			}
		})

	case domain.ChangeInsertPage:
		return withWorld(worlds, c.WorldID, func(w *domain.World) {
			if c.Page == nil {
				return
			}
			w.Pages = pagetree.AddChild(w.Pages, c.ParentID, c.Page)
		})

	case domain.ChangeUpdatePage:
		return withWorld(worlds, c.WorldID, func(w *domain.World) {
			if c.PagePatch == nil {
				return
			}
			w.Pages = pagetree.Update(w.Pages, c.PageID, func(p *domain.PageNode) {
				if c.PagePatch.Title != nil {
					p.Title = *c.PagePatch.Title
				}
				if c.PagePatch.Content != nil {
					p.Content = *c.PagePatch.Content
				}
				if c.PagePatch.Favorite != nil {
					p.Favorite = *c.PagePatch.Favorite
				}
			})
		})

	case domain.ChangeRemovePage:
		return withWorld(worlds, c.WorldID, func(w *domain.World) {
			w.Pages, _ = pagetree.Remove(w.Pages, c.PageID)
		})

	case domain.ChangeMovePage:
		return withWorld(worlds, c.WorldID, func(w *domain.World) {
			moved, err := pagetree.Move(w.Pages, c.PageID, c.TargetID, c.Position)
			if err != nil {
				return
			}
			w.Pages = moved
		})

	case domain.ChangeAppendActivity:
		return withWorld(worlds, c.WorldID, func(w *domain.World) {
			entries := append([]domain.ActivityEntry(nil), c.Entries...)
			for i := range entries {
				sanitizeActivity(&entries[i])
			}
			w.Activity = append(entries, w.Activity...)
			if len(w.Activity) > domain.ActivityCap {
				w.Activity = w.Activity[:domain.ActivityCap]
			}
		})

	case domain.ChangeSetCollaborators:
		return withWorld(worlds, c.WorldID, func(w *domain.World) {
			w.Collaborators = append([]domain.Collaborator(nil), c.Collaborators...)
		})
	}
	return worlds
}

// withWorld applies fn to the world matching id. Missing worlds are a no-op.
func withWorld(worlds []*domain.World, id string, fn func(*domain.World)) []*domain.World {
	for _, w := range worlds {
		if w.ID == id {
			fn(w)
			return worlds
		}
	}
	return worlds
}
