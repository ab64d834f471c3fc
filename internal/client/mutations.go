package client

import (
	"strings"
	"time"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/identity"
	"github.com/GreenHouse007/world-builder/internal/pagetree"
	"github.com/GreenHouse007/world-builder/internal/worldsync"
)

// The helpers below are the mutation surface the UI calls. Each builds the
// corresponding world changes, applies them optimistically and queues them
// for the server via Dispatch. Destructive ones (DeleteWorld, DeletePage)
// expect the UI to have confirmed with the user already.

func (s *Session) actor() *identity.Actor {
	if s.provider != nil {
		if a, ok := s.provider.CurrentActor(); ok {
			return a
		}
	}
	return &identity.Actor{ID: "anonymous", Name: "Anonymous"}
}

func (s *Session) activity(action domain.ActivityAction, target, context string) domain.ActivityEntry {
	a := s.actor()
	return domain.ActivityEntry{
		ID:        identity.NewActivityID(),
		Action:    action,
		Target:    target,
		Context:   context,
		ActorID:   a.ID,
		ActorName: a.DisplayName(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// World returns a copy of one world, or nil.
func (s *Session) World(id string) *domain.World {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.worlds {
		if w.ID == id {
			return w.Clone()
		}
	}
	return nil
}

// FindPage returns a copy of one page node, or nil.
func (s *Session) FindPage(worldID, pageID string) *domain.PageNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.worlds {
		if w.ID == worldID {
			if n := pagetree.Find(w.Pages, pageID); n != nil {
				cloned := domain.ClonePages([]*domain.PageNode{n})
				return cloned[0]
			}
		}
	}
	return nil
}

// CreateWorld makes a new world owned by the current actor.
func (s *Session) CreateWorld(name string) *domain.World {
	a := s.actor()
	w := worldsync.Normalize(&domain.World{
		ID:      identity.NewID(),
		Name:    name,
		OwnerID: a.ID,
		Collaborators: []domain.Collaborator{{
			ID:    a.ID,
			Name:  a.DisplayName(),
			Email: a.Email,
			Role:  domain.RoleOwner,
		}},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	s.Dispatch(
		domain.WorldChange{Type: domain.ChangeCreateWorld, World: w},
		domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: w.ID,
			Entries: []domain.ActivityEntry{s.activity(domain.ActivityCreate, w.Name, "")}},
	)
	return w
}

// RenameWorld updates a world's display name.
func (s *Session) RenameWorld(worldID, name string) {
	s.Dispatch(
		domain.WorldChange{Type: domain.ChangeUpdateWorld, WorldID: worldID,
			WorldPatch: &domain.WorldPatch{Name: &name}},
		domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: worldID,
			Entries: []domain.ActivityEntry{s.activity(domain.ActivityUpdate, name, "renamed world")}},
	)
}

// SetWorldDescription updates a world's description.
func (s *Session) SetWorldDescription(worldID, description string) {
	s.Dispatch(domain.WorldChange{Type: domain.ChangeUpdateWorld, WorldID: worldID,
		WorldPatch: &domain.WorldPatch{Description: &description}})
}

// DeleteWorld removes a world entirely.
func (s *Session) DeleteWorld(worldID string) {
	s.Dispatch(domain.WorldChange{Type: domain.ChangeDeleteWorld, WorldID: worldID})
}

// DuplicateWorld deep-copies a world under a fresh identity. Every page gets
// a fresh id too; the copy must not share identity with its source.
func (s *Session) DuplicateWorld(worldID string) *domain.World {
	src := s.World(worldID)
	if src == nil {
		return nil
	}
	a := s.actor()
	dup := src.Clone()
	dup.ID = identity.NewID()
	dup.Name = src.Name + " (copy)"
	dup.OwnerID = a.ID
	dup.Pages = pagetree.Clone(src.Pages)
	dup.Activity = nil
	dup.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	dup = worldsync.Normalize(dup)
	s.Dispatch(
		domain.WorldChange{Type: domain.ChangeCreateWorld, World: dup},
		domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: dup.ID,
			Entries: []domain.ActivityEntry{s.activity(domain.ActivityDuplicate, src.Name, "duplicated world")}},
	)
	return dup
}

// CreatePage adds a page under parentID (nil for a root page).
func (s *Session) CreatePage(worldID string, parentID *string, title string) *domain.PageNode {
	if strings.TrimSpace(title) == "" {
		title = domain.DefaultPageTitle
	}
	page := &domain.PageNode{ID: identity.NewID(), Title: title}
	s.Dispatch(
		domain.WorldChange{Type: domain.ChangeInsertPage, WorldID: worldID, ParentID: parentID, Page: page},
		domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: worldID,
			Entries: []domain.ActivityEntry{s.activity(domain.ActivityCreate, title, "")}},
	)
	return page
}

// UpdatePage shallow-merges the patch into a page. Called on every editor
// save, so it deliberately records no activity; discrete actions do that
// themselves.
func (s *Session) UpdatePage(worldID, pageID string, patch domain.PagePatch) {
	s.Dispatch(domain.WorldChange{Type: domain.ChangeUpdatePage, WorldID: worldID,
		PageID: pageID, PagePatch: &patch})
}

// ToggleFavorite flips a page's favorite flag.
func (s *Session) ToggleFavorite(worldID, pageID string) {
	page := s.FindPage(worldID, pageID)
	if page == nil {
		return
	}
	fav := !page.Favorite
	s.Dispatch(domain.WorldChange{Type: domain.ChangeUpdatePage, WorldID: worldID,
		PageID: pageID, PagePatch: &domain.PagePatch{Favorite: &fav}})
}

// DeletePage detaches a page and its whole subtree.
func (s *Session) DeletePage(worldID, pageID string) {
	target := ""
	if page := s.FindPage(worldID, pageID); page != nil {
		target = page.Title
	}
	s.Dispatch(
		domain.WorldChange{Type: domain.ChangeRemovePage, WorldID: worldID, PageID: pageID},
		domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: worldID,
			Entries: []domain.ActivityEntry{s.activity(domain.ActivityDelete, target, "")}},
	)
}

// MovePage relocates a page next to targetID. Moving a page under its own
// descendant is rejected with pagetree.ErrCycle before any change is queued.
func (s *Session) MovePage(worldID, pageID, targetID string, position domain.MovePosition) error {
	s.mu.Lock()
	for _, w := range s.worlds {
		if w.ID == worldID && pagetree.IsDescendant(w.Pages, pageID, targetID) {
			s.mu.Unlock()
			return pagetree.ErrCycle
		}
	}
	s.mu.Unlock()

	target := ""
	if page := s.FindPage(worldID, pageID); page != nil {
		target = page.Title
	}
	s.Dispatch(
		domain.WorldChange{Type: domain.ChangeMovePage, WorldID: worldID,
			PageID: pageID, TargetID: targetID, Position: position},
		domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: worldID,
			Entries: []domain.ActivityEntry{s.activity(domain.ActivityMove, target, "")}},
	)
	return nil
}

// DuplicatePage copies a page subtree (fresh ids throughout) as a sibling
// appended under the source's parent.
func (s *Session) DuplicatePage(worldID, pageID string) *domain.PageNode {
	src := s.FindPage(worldID, pageID)
	if src == nil {
		return nil
	}
	dup := pagetree.Clone([]*domain.PageNode{src})[0]
	dup.Title = src.Title + " (copy)"

	parentID := s.findParent(worldID, pageID)
	s.Dispatch(
		domain.WorldChange{Type: domain.ChangeInsertPage, WorldID: worldID, ParentID: parentID, Page: dup},
		domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: worldID,
			Entries: []domain.ActivityEntry{s.activity(domain.ActivityDuplicate, src.Title, "")}},
	)
	return dup
}

// SetCollaborators replaces a world's collaborator list.
func (s *Session) SetCollaborators(worldID string, collaborators []domain.Collaborator) {
	s.Dispatch(
		domain.WorldChange{Type: domain.ChangeSetCollaborators, WorldID: worldID, Collaborators: collaborators},
		domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: worldID,
			Entries: []domain.ActivityEntry{s.activity(domain.ActivityShare, "", "updated collaborators")}},
	)
}

// RecordActivity appends a standalone activity entry.
func (s *Session) RecordActivity(worldID string, action domain.ActivityAction, target, context string) {
	s.Dispatch(domain.WorldChange{Type: domain.ChangeAppendActivity, WorldID: worldID,
		Entries: []domain.ActivityEntry{s.activity(action, target, context)}})
}

// findParent returns the id of pageID's parent within a world, or nil when
// the page is (or should fall back to) a root.
func (s *Session) findParent(worldID, pageID string) *string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range s.worlds {
		if w.ID != worldID {
			continue
		}
		for _, n := range pagetree.Flatten(w.Pages) {
			for _, child := range n.Children {
				if child.ID == pageID {
					id := n.ID
					return &id
				}
			}
		}
	}
	return nil
}
