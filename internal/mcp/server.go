// ABOUTME: MCP server setup for the chocolate analytics catalog.
// ABOUTME: Wraps the MCP server around a loaded application.
package mcp

import (
	"context"
	"errors"

	"github.com/harperreed/chococrunch/internal/app"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Version is reported to MCP clients.
const Version = "1.0.0"

// Server wraps the MCP server with access to the loaded dataset.
type Server struct {
	mcpServer *mcp.Server
	app       *app.App
}

// NewServer creates a new MCP server over a.
func NewServer(a *app.App) (*Server, error) {
	if a == nil || a.Catalog == nil || a.Store == nil {
		return nil, errors.New("mcp server needs a loaded app")
	}
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "chococrunch",
			Version: Version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		app:       a,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
