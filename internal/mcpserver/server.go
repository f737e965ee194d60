// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Jera content tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jera/internal/config"
	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/parser"
	"github.com/starford/jera/internal/scaffold"
	"github.com/starford/jera/internal/storage"
)

// Server wraps the MCP server with Jera tools.
type Server struct {
	mcp   *server.MCPServer
	store storage.Provider
	db    *index.DB
	cfg   *config.Config
}

// New creates a new MCP server with all Jera tools registered.
func New(store storage.Provider, db *index.DB, cfg *config.Config) *Server {
	s := &Server{store: store, db: db, cfg: cfg}

	s.mcp = server.NewMCPServer(
		"Jera",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_content",
		mcp.WithDescription("Full-text search through site posts and pages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchContent)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read the raw Markdown source of a post or page, front matter included."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Source path relative to the site root (e.g. _posts/2026-01-02-title.md)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List indexed posts and pages with their titles and URLs."),
		mcp.WithString("collection", mcp.Description("Optional filter: posts or pages (empty for all)")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("create_draft",
		mcp.WithDescription("Create a new draft post from a title. The body, when given, "+
			"MUST be plain Markdown without front matter; the front matter is generated. "+
			"Read the get_front_matter_contract tool or the jera://front-matter resource "+
			"first to learn which fields exist."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Human-readable post title")),
		mcp.WithString("body", mcp.Description("Optional Markdown body for the draft")),
	), s.createDraft)

	s.mcp.AddTool(mcp.NewTool("get_front_matter_contract",
		mcp.WithDescription("Returns the canonical Jera front matter contract. "+
			"Call this before creating or editing content to ensure correct structure."),
	), s.getFrontMatterContract)

	// Resource: front matter contract.
	s.mcp.AddResource(
		mcp.NewResource("jera://front-matter", "Front Matter Contract",
			mcp.WithResourceDescription("Canonical front matter shape every post and page must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFrontMatterResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) searchContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.store.Read(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection := ""
	if c, err := req.RequireString("collection"); err == nil {
		collection = c
	}

	rows, _, err := s.db.ListPages(200, 0, collection, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, r := range rows {
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s", r.Path, r.Collection, r.Title))
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no pages indexed"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) createDraft(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := ""
	if b, err := req.RequireString("body"); err == nil {
		body = b
	}
	if strings.HasPrefix(strings.TrimSpace(body), "---") {
		return mcp.NewToolResultError("body must not contain front matter; it is generated"), nil
	}

	now := time.Now().In(s.cfg.Location())
	rel, content, err := scaffold.PostStub(title, now, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if body != "" {
		content = append(content, []byte(strings.TrimRight(body, "\n")+"\n")...)
	}

	// Check existence.
	if _, readErr := s.store.Read(rel); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("post already exists: %s", rel)), nil
	}
	if err := s.store.Write(rel, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// Index the new draft so search finds it before the next build.
	res, _ := parser.Parse(content)
	if res != nil {
		_ = s.db.UpsertPage(index.PageRow{
			Path:       rel,
			Title:      title,
			Collection: "posts",
			Checksum:   "",
			Date:       now,
			Tags:       []string{},
			Categories: []string{},
			UpdatedAt:  now,
		}, res.Body, nil)
	}

	return mcp.NewToolResultText(fmt.Sprintf("created: %s", rel)), nil
}

func (s *Server) getFrontMatterContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontMatterContract), nil
}

func (s *Server) readFrontMatterResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "jera://front-matter",
			MIMEType: "text/markdown",
			Text:     FrontMatterContract,
		},
	}, nil
}
