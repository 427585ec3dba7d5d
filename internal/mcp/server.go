// Package mcp exposes the tracked notes over the Model Context Protocol so
// agents can read pipeline state. All tools are read-only; mutations go
// through the CLI.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"vnotes/internal/ops"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"note_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"note_fetch": {
		def:     fetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFetch },
	},
	"note_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
}

// NewServer creates an MCP server with the note tools registered.
func NewServer(s *ops.Services, version string) *server.MCPServer {
	srv := server.NewMCPServer(
		"vnotes",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(s)
	for _, entry := range toolRegistry {
		srv.AddTool(entry.def, entry.handler(h))
	}
	return srv
}

// Run starts the MCP server on stdio transport.
func Run(s *ops.Services, version string) error {
	return server.ServeStdio(NewServer(s, version))
}
