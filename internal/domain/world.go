package domain

import "context"

// Role of a collaborator within a world.
type Role string

const (
	RoleOwner  Role = "Owner"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// ActivityCap bounds the per-world activity log. Appends beyond the cap evict
// the oldest entries.
const ActivityCap = 40

const (
	DefaultWorldName = "Untitled world"
	DefaultPageTitle = "Untitled page"
)

// PageNode is one node in a world's page forest. Children are owned
// exclusively by their parent; the tree is acyclic by construction and the
// engine never validates that post hoc. Callers reject cycle-inducing moves
// up front.
type PageNode struct {
	ID       string      `json:"id"`
	Title    string      `json:"title"`
	Content  string      `json:"content"`
	Favorite bool        `json:"favorite"`
	Children []*PageNode `json:"children"`
}

// Collaborator is a member of a world. Unique by ID within a world.
type Collaborator struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        Role   `json:"role"`
	AvatarColor string `json:"avatarColor"`
}

// ActivityAction classifies an activity log entry.
type ActivityAction string

const (
	ActivityCreate    ActivityAction = "create"
	ActivityUpdate    ActivityAction = "update"
	ActivityDuplicate ActivityAction = "duplicate"
	ActivityDelete    ActivityAction = "delete"
	ActivityMove      ActivityAction = "move"
	ActivityShare     ActivityAction = "share"
)

// ActivityEntry is an immutable audit record. Entries are created by the
// mutation that causes them and only ever leave the log by cap eviction.
// Timestamps are RFC 3339 strings, matching the wire format.
type ActivityEntry struct {
	ID        string         `json:"id"`
	Action    ActivityAction `json:"action"`
	Target    string         `json:"target"`
	Context   string         `json:"context,omitempty"`
	ActorID   string         `json:"actorId"`
	ActorName string         `json:"actorName"`
	Timestamp string         `json:"timestamp"`
}

// World is a named workspace: a page forest plus collaboration metadata.
// Once normalized, exactly one collaborator holds RoleOwner and its ID equals
// OwnerID.
type World struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	OwnerID       string          `json:"ownerId"`
	Description   string          `json:"description,omitempty"`
	Pages         []*PageNode     `json:"pages"`
	Collaborators []Collaborator  `json:"collaborators"`
	Activity      []ActivityEntry `json:"activity"`
	CreatedAt     string          `json:"createdAt,omitempty"`
	UpdatedAt     string          `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy of the world. Page IDs are preserved; use
// pagetree.Clone when a duplicate must not share identity with its source.
func (w *World) Clone() *World {
	if w == nil {
		return nil
	}
	out := *w
	out.Pages = clonePages(w.Pages)
	out.Collaborators = append([]Collaborator(nil), w.Collaborators...)
	out.Activity = append([]ActivityEntry(nil), w.Activity...)
	return &out
}

// ClonePages deep-copies a page forest, preserving IDs.
func ClonePages(pages []*PageNode) []*PageNode {
	return clonePages(pages)
}

func clonePages(pages []*PageNode) []*PageNode {
	if pages == nil {
		return nil
	}
	out := make([]*PageNode, len(pages))
	for i, p := range pages {
		cp := *p
		cp.Children = clonePages(p.Children)
		out[i] = &cp
	}
	return out
}

// CloneWorlds deep-copies a world list.
func CloneWorlds(worlds []*World) []*World {
	out := make([]*World, len(worlds))
	for i, w := range worlds {
		out[i] = w.Clone()
	}
	return out
}

// WorldStore is the server-side document store for worlds, keyed by the
// owning actor. Implementations persist each world as one document.
type WorldStore interface {
	FindWorlds(ctx context.Context, ownerID string) ([]*World, error)
	ReplaceWorlds(ctx context.Context, ownerID string, worlds []*World) error
	DeleteWorlds(ctx context.Context, ownerID string) error
	Close(ctx context.Context) error
}
