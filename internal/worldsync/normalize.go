// Package worldsync holds the world-change protocol: normalization of
// untrusted world records, the change-log reducer, and the wire codec. The
// same reducer runs on both sides of the sync boundary so client-applied and
// server-applied batches converge on the same state.
package worldsync

import (
	"time"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/identity"
)

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Normalize reconciles a possibly partial or malformed world record (loaded
// from storage or the network) into canonical shape: ids and names defaulted,
// pages defaulted recursively, exactly one Owner collaborator matching
// OwnerID, activity entries sanitized and capped. Idempotent: a canonical
// world passes through unchanged. The input is not mutated.
func Normalize(w *domain.World) *domain.World {
	out := w.Clone()
	if out == nil {
		out = &domain.World{}
	}
	if out.ID == "" {
		out.ID = identity.NewID()
	}
	if out.Name == "" {
		out.Name = domain.DefaultWorldName
	}
	normalizePages(out.Pages)

	for i := range out.Collaborators {
		normalizeCollaborator(&out.Collaborators[i], out.OwnerID)
	}
	resolveOwner(out)

	for i := range out.Activity {
		sanitizeActivity(&out.Activity[i])
	}
	if len(out.Activity) > domain.ActivityCap {
		out.Activity = out.Activity[:domain.ActivityCap]
	}
	return out
}

func normalizePages(pages []*domain.PageNode) {
	for _, p := range pages {
		if p.ID == "" {
			p.ID = identity.NewID()
		}
		if p.Title == "" {
			p.Title = domain.DefaultPageTitle
		}
		normalizePages(p.Children)
	}
}

func normalizeCollaborator(c *domain.Collaborator, ownerID string) {
	if c.ID == "" {
		c.ID = identity.NewID()
	}
	if c.Name == "" {
		c.Name = "Collaborator"
	}
	if c.Role == "" {
		if ownerID != "" && c.ID == ownerID {
			c.Role = domain.RoleOwner
		} else {
			c.Role = domain.RoleEditor
		}
	}
	if c.AvatarColor == "" {
		c.AvatarColor = identity.AvatarColor(c.ID)
	}
}

// resolveOwner settles on exactly one Owner: the declared OwnerID when it is
// present among collaborators, else any collaborator already marked Owner,
// else a synthesized Owner prepended to the list. Duplicate role data for the
// resolved owner id is coerced to Owner; anyone else still marked Owner is
// demoted to Editor.
func resolveOwner(w *domain.World) {
	ownerID := ""
	if w.OwnerID != "" {
		for i := range w.Collaborators {
			if w.Collaborators[i].ID == w.OwnerID {
				ownerID = w.OwnerID
				break
			}
		}
	}
	if ownerID == "" {
		for i := range w.Collaborators {
			if w.Collaborators[i].Role == domain.RoleOwner {
				ownerID = w.Collaborators[i].ID
				break
			}
		}
	}
	if ownerID == "" {
		owner := domain.Collaborator{
			ID:   identity.NewID(),
			Name: "Owner",
			Role: domain.RoleOwner,
		}
		owner.AvatarColor = identity.AvatarColor(owner.ID)
		w.Collaborators = append([]domain.Collaborator{owner}, w.Collaborators...)
		ownerID = owner.ID
	}
	w.OwnerID = ownerID
	for i := range w.Collaborators {
		if w.Collaborators[i].ID == ownerID {
			w.Collaborators[i].Role = domain.RoleOwner
		} else if w.Collaborators[i].Role == domain.RoleOwner {
			w.Collaborators[i].Role = domain.RoleEditor
		}
	}
}

func sanitizeActivity(e *domain.ActivityEntry) {
	if e.ID == "" {
		e.ID = identity.NewActivityID()
	}
	if e.Action == "" {
		e.Action = domain.ActivityUpdate
	}
	if e.Timestamp == "" {
		e.Timestamp = nowStamp()
	}
}
