// Package mcp exposes memory search over the Model Context Protocol so
// agent runtimes can query the store as a tool.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/search"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes memory search tools.
type Server struct {
	engine *search.Engine
	store  *memstore.Store
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(engine *search.Engine, store *memstore.Store) *Server {
	s := &Server{
		engine: engine,
		store:  store,
	}

	s.mcp = server.NewMCPServer(
		"memoria",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchMemoryTool, s.handleSearchMemory)
	s.mcp.AddTool(getDocumentTool, s.handleGetDocument)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
