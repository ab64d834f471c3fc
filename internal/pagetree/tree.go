// Package pagetree implements the pure operations over a world's page forest:
// an ordered collection of root pages, each owning an ordered list of
// children. Every operation takes a forest and returns a new one; inputs are
// never mutated, so callers can hold onto prior snapshots safely.
package pagetree

import (
	"errors"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/identity"
)

// ErrCycle is returned by Move when the target sits inside the moved node's
// own subtree. Callers are expected to pre-check with IsDescendant; the move
// functions still refuse rather than corrupt the forest.
var ErrCycle = errors.New("pagetree: cannot move a page under its own descendant")

// Find returns the first node matching id in pre-order, or nil.
func Find(forest []*domain.PageNode, id string) *domain.PageNode {
	for _, n := range forest {
		if n.ID == id {
			return n
		}
		if found := Find(n.Children, id); found != nil {
			return found
		}
	}
	return nil
}

// AddChild appends node to the children of parentID, searched at any depth.
// A nil parentID appends node as a new root. An unknown parentID also falls
// back to a root append, so a page is never silently dropped.
func AddChild(forest []*domain.PageNode, parentID *string, node *domain.PageNode) []*domain.PageNode {
	out := domain.ClonePages(forest)
	if parentID != nil {
		if parent := Find(out, *parentID); parent != nil {
			parent.Children = append(parent.Children, node)
			return out
		}
	}
	return append(out, node)
}

// InsertBefore splices node immediately before the target, at the target's
// depth. Reports false with the forest unchanged when targetID is absent;
// callers then fall back to AddChild at the root.
func InsertBefore(forest []*domain.PageNode, targetID string, node *domain.PageNode) ([]*domain.PageNode, bool) {
	out := domain.ClonePages(forest)
	spliced, ok := insertRelative(out, targetID, node, false)
	if !ok {
		return forest, false
	}
	return spliced, true
}

// InsertAfter is InsertBefore's mirror: node lands immediately after the
// target.
func InsertAfter(forest []*domain.PageNode, targetID string, node *domain.PageNode) ([]*domain.PageNode, bool) {
	out := domain.ClonePages(forest)
	spliced, ok := insertRelative(out, targetID, node, true)
	if !ok {
		return forest, false
	}
	return spliced, true
}

// insertRelative walks siblings in order, recursing into children before
// moving on, and splices node next to the first match. nodes must already be
// a private clone.
func insertRelative(nodes []*domain.PageNode, targetID string, node *domain.PageNode, after bool) ([]*domain.PageNode, bool) {
	for i, n := range nodes {
		if n.ID == targetID {
			at := i
			if after {
				at = i + 1
			}
			out := make([]*domain.PageNode, 0, len(nodes)+1)
			out = append(out, nodes[:at]...)
			out = append(out, node)
			out = append(out, nodes[at:]...)
			return out, true
		}
		if children, ok := insertRelative(n.Children, targetID, node, after); ok {
			n.Children = children
			return nodes, true
		}
	}
	return nodes, false
}

// Remove detaches the first node matching id together with its entire
// subtree. The detached subtree is returned so callers can reinsert it (Move
// does exactly that). A nil second return means id was not found.
func Remove(forest []*domain.PageNode, id string) ([]*domain.PageNode, *domain.PageNode) {
	out := domain.ClonePages(forest)
	pruned, removed := removeNode(out, id)
	if removed == nil {
		return forest, nil
	}
	return pruned, removed
}

func removeNode(nodes []*domain.PageNode, id string) ([]*domain.PageNode, *domain.PageNode) {
	for i, n := range nodes {
		if n.ID == id {
			out := make([]*domain.PageNode, 0, len(nodes)-1)
			out = append(out, nodes[:i]...)
			out = append(out, nodes[i+1:]...)
			return out, n
		}
		if children, removed := removeNode(n.Children, id); removed != nil {
			n.Children = children
			return nodes, removed
		}
	}
	return nodes, nil
}

// Update applies fn to the matching node's own fields. Children are
// preserved no matter what fn does to them. Not finding id is a no-op.
func Update(forest []*domain.PageNode, id string, fn func(*domain.PageNode)) []*domain.PageNode {
	out := domain.ClonePages(forest)
	node := Find(out, id)
	if node == nil {
		return forest
	}
	children := node.Children
	fn(node)
	node.Children = children
	return out
}

// Move relocates the node with id next to targetID per position. When the
// target vanished (concurrent delete), the removed subtree is appended at the
// forest root rather than lost. Moving a node under its own descendant
// returns ErrCycle with the forest unchanged.
func Move(forest []*domain.PageNode, id, targetID string, position domain.MovePosition) ([]*domain.PageNode, error) {
	if IsDescendant(forest, id, targetID) {
		return forest, ErrCycle
	}
	pruned, removed := Remove(forest, id)
	if removed == nil {
		return forest, nil
	}
	var out []*domain.PageNode
	var ok bool
	if position == domain.MoveAfter {
		out, ok = InsertAfter(pruned, targetID, removed)
	} else {
		out, ok = InsertBefore(pruned, targetID, removed)
	}
	if !ok {
		out = append(domain.ClonePages(pruned), removed)
	}
	return out, nil
}

// IsDescendant reports whether candidateID appears anywhere in the subtree
// rooted at ancestorID, the ancestor itself excluded.
func IsDescendant(forest []*domain.PageNode, ancestorID, candidateID string) bool {
	ancestor := Find(forest, ancestorID)
	if ancestor == nil {
		return false
	}
	return Find(ancestor.Children, candidateID) != nil
}

// Flatten returns every node exactly once in pre-order: forest order first,
// then depth-first children.
func Flatten(forest []*domain.PageNode) []*domain.PageNode {
	var out []*domain.PageNode
	for _, n := range forest {
		out = append(out, n)
		out = append(out, Flatten(n.Children)...)
	}
	return out
}

// Clone deep-copies the forest assigning fresh IDs to every node. Titles,
// content and favorite flags carry over. Used by world duplication: the copy
// must not share identity with its source.
func Clone(forest []*domain.PageNode) []*domain.PageNode {
	out := make([]*domain.PageNode, len(forest))
	for i, n := range forest {
		out[i] = &domain.PageNode{
			ID:       identity.NewID(),
			Title:    n.Title,
			Content:  n.Content,
			Favorite: n.Favorite,
			Children: Clone(n.Children),
		}
	}
	return out
}
