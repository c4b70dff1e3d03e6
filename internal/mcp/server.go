package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("exlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Exercise log server. Create users, append exercise entries, and query per-user logs filtered by date range and entry limit."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListUsers, Handler: h.listUsers},
		server.ServerTool{Tool: toolGetExerciseLog, Handler: h.getExerciseLog},
		server.ServerTool{Tool: toolAddExercise, Handler: h.addExercise},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resUserCatalog, Handler: h.userCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resUserCatalog = mcp.NewResource(
	"exlog://users",
	"User Catalog",
	mcp.WithResourceDescription("All tracked users with their exercise counts"),
	mcp.WithMIMEType("application/json"),
)
