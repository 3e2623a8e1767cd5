// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Blogster post tools for LLM integration via stdio
// transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/PlebOne/blogster/internal/apperr"
	"github.com/PlebOne/blogster/internal/postservice"
	"github.com/PlebOne/blogster/internal/relays"
)

// Server wraps the MCP server with Blogster tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *postservice.Service
	settings *relays.Settings
}

// New creates a new MCP server with all Blogster tools registered.
func New(svc *postservice.Service, settings *relays.Settings) *Server {
	s := &Server{svc: svc, settings: settings}

	s.mcp = server.NewMCPServer(
		"Blogster",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List posts with optional status filter (Draft, Published, Failed)."),
		mcp.WithString("status", mcp.Description("Optional status filter")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("read_post",
		mcp.WithDescription("Read a post file, frontmatter included."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the post file")),
	), s.readPost)

	s.mcp.AddTool(mcp.NewTool("write_post",
		mcp.WithDescription("Create a new draft post. Read the format contract first via "+
			"the get_post_contract tool or the blogster://post-format resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Post title")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Markdown body")),
		mcp.WithString("tags", mcp.Description("Optional comma-separated tags")),
	), s.writePost)

	s.mcp.AddTool(mcp.NewTool("publish_post",
		mcp.WithDescription("Publish a post as a Nostr long-form event to the active relays. "+
			"Requires configured credentials and a non-blank title and body."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the post file")),
	), s.publishPost)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Full-text search through post titles, bodies, and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("get_post_contract",
		mcp.WithDescription("Returns the canonical Blogster post format contract."),
	), s.getPostContract)

	s.mcp.AddResource(
		mcp.NewResource("blogster://post-format", "Post Format Contract",
			mcp.WithResourceDescription("Canonical post file format that all posts must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPostFormatResource,
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

func (s *Server) listPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := ""
	if v, err := req.RequireString("status"); err == nil {
		status = v
	}
	rows, _, err := s.svc.ListPosts(ctx, 0, 0, status, "", "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(rows, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.GetPost(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(post, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) writePost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var tags []string
	if raw, err := req.RequireString("tags"); err == nil && raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	post, err := s.svc.CreatePost(ctx, title, content, tags)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", post.FilePath)), nil
}

func (s *Server) publishPost(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	post, err := s.svc.PublishPost(ctx, path, s.settings)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotReady):
			return mcp.NewToolResultError("post is not ready to publish (missing title or body)"), nil
		case errors.Is(err, apperr.ErrNoCredentials):
			return mcp.NewToolResultError("no nostr credentials configured"), nil
		default:
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	return mcp.NewToolResultText(fmt.Sprintf("published: event %s accepted by %s",
		post.NostrEventID, strings.Join(post.PublishedRelays, ", "))), nil
}

func (s *Server) searchPosts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.SearchPosts(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getPostContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(PostFormatContract), nil
}

func (s *Server) readPostFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "blogster://post-format",
			MIMEType: "text/markdown",
			Text:     PostFormatContract,
		},
	}, nil
}
