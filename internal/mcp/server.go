package mcp

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/folio/internal/blog"
	"github.com/hpungsan/folio/internal/config"
)

// KnownTypes lists all valid type names.
var KnownTypes = []string{"article", "category", "tag", "blog"}

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"article_list": {
		def:     articleListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArticleList },
	},
	"article_fetch": {
		def:     articleFetchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArticleFetch },
	},
	"article_related": {
		def:     articleRelatedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArticleRelated },
	},
	"article_recommended": {
		def:     articleRecommendedToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArticleRecommended },
	},
	"article_create": {
		def:     articleCreateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArticleCreate },
	},
	"article_update": {
		def:     articleUpdateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArticleUpdate },
	},
	"article_delete": {
		def:     articleDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleArticleDelete },
	},
	"category_list": {
		def:     categoryListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCategoryList },
	},
	"tag_list": {
		def:     tagListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTagList },
	},
	"blog_stats": {
		def:     blogStatsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBlogStats },
	},
	"blog_export": {
		def:     blogExportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBlogExport },
	},
	"blog_import": {
		def:     blogImportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleBlogImport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// ValidateDisabledTypes returns a list of unknown type names from the given list.
func ValidateDisabledTypes(names []string) []string {
	known := make(map[string]bool, len(KnownTypes))
	for _, t := range KnownTypes {
		known[t] = true
	}

	unknown := make([]string, 0)
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// GetTypeForTool extracts the type name from a tool name.
// Tool names follow the pattern "type_action" (e.g., "article_fetch" → "article").
func GetTypeForTool(toolName string) string {
	if idx := strings.Index(toolName, "_"); idx > 0 {
		return toolName[:idx]
	}
	return ""
}

// ExpandTypesToTools returns all tool names belonging to the given types.
func ExpandTypesToTools(types []string) []string {
	if len(types) == 0 {
		return nil
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}

	tools := make([]string, 0)
	for name := range toolRegistry {
		if typeSet[GetTypeForTool(name)] {
			tools = append(tools, name)
		}
	}
	return tools
}

// NewServer creates a new MCP server with the folio tools registered.
// Read tools go through repo; write tools go through the admin database.
// Tools listed in cfg.DisabledTools or belonging to cfg.DisabledTypes
// are excluded from registration.
func NewServer(repo blog.Repository, db *sql.DB, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"folio",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	h := NewHandlers(repo, db, cfg)

	// Expand types first, then add individual tools
	disabled := make(map[string]bool)
	for _, tool := range ExpandTypesToTools(cfg.DisabledTypes) {
		disabled[tool] = true
	}
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(repo blog.Repository, db *sql.DB, cfg *config.Config, version string) error {
	s := NewServer(repo, db, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
