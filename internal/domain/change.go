package domain

// ChangeType tags a WorldChange variant. The set is closed; anything else on
// the wire is dropped before it reaches the reducer.
type ChangeType string

const (
	ChangeCreateWorld      ChangeType = "createWorld"
	ChangeUpdateWorld      ChangeType = "updateWorld"
	ChangeDeleteWorld      ChangeType = "deleteWorld"
	ChangeInsertPage       ChangeType = "insertPage"
	ChangeUpdatePage       ChangeType = "updatePage"
	ChangeRemovePage       ChangeType = "removePage"
	ChangeMovePage         ChangeType = "movePage"
	ChangeAppendActivity   ChangeType = "appendActivity"
	ChangeSetCollaborators ChangeType = "setCollaborators"
)

// KnownChangeType reports whether t is one of the closed variant set.
func KnownChangeType(t ChangeType) bool {
	switch t {
	case ChangeCreateWorld, ChangeUpdateWorld, ChangeDeleteWorld,
		ChangeInsertPage, ChangeUpdatePage, ChangeRemovePage,
		ChangeMovePage, ChangeAppendActivity, ChangeSetCollaborators:
		return true
	}
	return false
}

// MovePosition places a moved page relative to its target sibling.
type MovePosition string

const (
	MoveBefore MovePosition = "before"
	MoveAfter  MovePosition = "after"
)

// WorldPatch carries the updateWorld fields. Nil pointers mean "leave as is";
// the reducer shallow-merges only what is present.
type WorldPatch struct {
	Name        *string `json:"name,omitempty"`
	OwnerID     *string `json:"ownerId,omitempty"`
	Description *string `json:"description,omitempty"`
}

// PagePatch carries the updatePage fields, merged the same way.
type PagePatch struct {
	Title    *string `json:"title,omitempty"`
	Content  *string `json:"content,omitempty"`
	Favorite *bool   `json:"favorite,omitempty"`
}

// WorldChange is one tagged mutation intent, the unit of the sync protocol.
// The wire shape is {type, ...fields}; each variant reads only the fields it
// names:
//
//	createWorld      World
//	updateWorld      WorldID, WorldPatch
//	deleteWorld      WorldID
//	insertPage       WorldID, ParentID (nil = root), Page
//	updatePage       WorldID, PageID, PagePatch
//	removePage       WorldID, PageID
//	movePage         WorldID, PageID, TargetID, Position
//	appendActivity   WorldID, Entries
//	setCollaborators WorldID, Collaborators
type WorldChange struct {
	Type          ChangeType      `json:"type"`
	WorldID       string          `json:"worldId,omitempty"`
	World         *World          `json:"world,omitempty"`
	WorldPatch    *WorldPatch     `json:"worldPatch,omitempty"`
	ParentID      *string         `json:"parentId,omitempty"`
	Page          *PageNode       `json:"page,omitempty"`
	PageID        string          `json:"pageId,omitempty"`
	PagePatch     *PagePatch      `json:"pagePatch,omitempty"`
	TargetID      string          `json:"targetId,omitempty"`
	Position      MovePosition    `json:"position,omitempty"`
	Entries       []ActivityEntry `json:"entries,omitempty"`
	Collaborators []Collaborator  `json:"collaborators,omitempty"`
}
