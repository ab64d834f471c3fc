// Package mcpserver exposes world operations over the Model Context
// Protocol, so agents can inspect and edit a user's worlds through the same
// change pipeline the web client uses.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/GreenHouse007/world-builder/internal/identity"
	"github.com/GreenHouse007/world-builder/internal/service"
)

// Server is the MCP server for the world-builder backend. Tools act on
// behalf of one fixed actor; the protocol carries no auth of its own here.
type Server struct {
	mcp    *server.MCPServer
	worlds *service.WorldService
	actor  *identity.Actor
}

func New(worlds *service.WorldService, actor *identity.Actor) *Server {
	s := &Server{
		worlds: worlds,
		actor:  actor,
	}
	s.mcp = server.NewMCPServer(
		"world-builder-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerWorldTools()
	return s
}

// ServeStdio runs the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}
