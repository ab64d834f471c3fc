package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/GreenHouse007/world-builder/internal/domain"
	"github.com/GreenHouse007/world-builder/internal/identity"
	"github.com/GreenHouse007/world-builder/internal/pagetree"
)

func (s *Server) registerWorldTools() {
	// ── list_worlds ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_worlds",
		mcp.WithDescription("List all worlds with their page trees"),
	), s.handleListWorlds)

	// ── create_world ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_world",
		mcp.WithDescription("Create a new world"),
		mcp.WithString("name", mcp.Description("World name"), mcp.Required()),
	), s.handleCreateWorld)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a page in a world, optionally nested under a parent page"),
		mcp.WithString("worldId", mcp.Description("World ID"), mcp.Required()),
		mcp.WithString("title", mcp.Description("Page title")),
		mcp.WithString("parentId", mcp.Description("Parent page ID (omit for a root page)")),
	), s.handleCreatePage)

	// ── update_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_page",
		mcp.WithDescription("Update a page's title and/or content"),
		mcp.WithString("worldId", mcp.Description("World ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID"), mcp.Required()),
		mcp.WithString("title", mcp.Description("New title (optional)")),
		mcp.WithString("content", mcp.Description("New content (optional)")),
	), s.handleUpdatePage)

	// ── move_page ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_page",
		mcp.WithDescription("Move a page before or after another page"),
		mcp.WithString("worldId", mcp.Description("World ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID to move"), mcp.Required()),
		mcp.WithString("targetId", mcp.Description("Page ID to position against"), mcp.Required()),
		mcp.WithString("position", mcp.Description("before or after (default before)")),
	), s.handleMovePage)

	// ── delete_page (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("Delete a page and its entire subtree"),
		mcp.WithString("worldId", mcp.Description("World ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID"), mcp.Required()),
	), s.handleDeletePage)

	// ── delete_world (destructive) ─────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_world",
		mcp.WithDescription("Delete a world entirely"),
		mcp.WithString("worldId", mcp.Description("World ID"), mcp.Required()),
	), s.handleDeleteWorld)
}

func (s *Server) apply(ctx context.Context, changes ...domain.WorldChange) ([]*domain.World, error) {
	return s.worlds.ApplyChanges(ctx, s.actor, changes)
}

func (s *Server) handleListWorlds(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	worlds, err := s.worlds.ListWorlds(ctx, s.actor)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(worlds, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleCreateWorld(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, _ := args["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	world := &domain.World{
		ID:      identity.NewID(),
		Name:    name,
		OwnerID: s.actor.ID,
		Collaborators: []domain.Collaborator{{
			ID:   s.actor.ID,
			Name: s.actor.DisplayName(),
			Role: domain.RoleOwner,
		}},
	}
	if _, err := s.apply(ctx, domain.WorldChange{Type: domain.ChangeCreateWorld, World: world}); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("created world %s (%s)", world.Name, world.ID)), nil
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	worldID, _ := args["worldId"].(string)
	if worldID == "" {
		return nil, fmt.Errorf("worldId is required")
	}
	title, _ := args["title"].(string)
	if title == "" {
		title = domain.DefaultPageTitle
	}
	var parentID *string
	if p, _ := args["parentId"].(string); p != "" {
		parentID = &p
	}
	page := &domain.PageNode{ID: identity.NewID(), Title: title}
	if _, err := s.apply(ctx, domain.WorldChange{
		Type: domain.ChangeInsertPage, WorldID: worldID, ParentID: parentID, Page: page,
	}); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(fmt.Sprintf("created page %s (%s)", page.Title, page.ID)), nil
}

func (s *Server) handleUpdatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	worldID, _ := args["worldId"].(string)
	pageID, _ := args["pageId"].(string)
	if worldID == "" || pageID == "" {
		return nil, fmt.Errorf("worldId and pageId are required")
	}
	patch := &domain.PagePatch{}
	if title, ok := args["title"].(string); ok && title != "" {
		patch.Title = &title
	}
	if content, ok := args["content"].(string); ok && content != "" {
		patch.Content = &content
	}
	if patch.Title == nil && patch.Content == nil {
		return nil, fmt.Errorf("nothing to update")
	}
	if _, err := s.apply(ctx, domain.WorldChange{
		Type: domain.ChangeUpdatePage, WorldID: worldID, PageID: pageID, PagePatch: patch,
	}); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText("page updated"), nil
}

func (s *Server) handleMovePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	worldID, _ := args["worldId"].(string)
	pageID, _ := args["pageId"].(string)
	targetID, _ := args["targetId"].(string)
	if worldID == "" || pageID == "" || targetID == "" {
		return nil, fmt.Errorf("worldId, pageId and targetId are required")
	}
	position := domain.MoveBefore
	if p, _ := args["position"].(string); p == string(domain.MoveAfter) {
		position = domain.MoveAfter
	}

	// Reject cycle-inducing moves before queueing anything.
	worlds, err := s.worlds.ListWorlds(ctx, s.actor)
	if err != nil {
		return nil, err
	}
	for _, w := range worlds {
		if w.ID == worldID && pagetree.IsDescendant(w.Pages, pageID, targetID) {
			return nil, pagetree.ErrCycle
		}
	}

	if _, err := s.apply(ctx, domain.WorldChange{
		Type: domain.ChangeMovePage, WorldID: worldID,
		PageID: pageID, TargetID: targetID, Position: position,
	}); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText("page moved"), nil
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	worldID, _ := args["worldId"].(string)
	pageID, _ := args["pageId"].(string)
	if worldID == "" || pageID == "" {
		return nil, fmt.Errorf("worldId and pageId are required")
	}
	if _, err := s.apply(ctx, domain.WorldChange{
		Type: domain.ChangeRemovePage, WorldID: worldID, PageID: pageID,
	}); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText("page deleted"), nil
}

func (s *Server) handleDeleteWorld(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	worldID, _ := args["worldId"].(string)
	if worldID == "" {
		return nil, fmt.Errorf("worldId is required")
	}
	if _, err := s.apply(ctx, domain.WorldChange{
		Type: domain.ChangeDeleteWorld, WorldID: worldID,
	}); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText("world deleted"), nil
}
