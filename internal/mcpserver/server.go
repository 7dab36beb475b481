// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes sync tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/arnarsson/gitpress/internal/api"
)

// Server wraps the MCP server with sync tools.
type Server struct {
	mcp    *server.MCPServer
	engine api.Syncer
}

// New creates a new MCP server with all sync tools registered.
func New(engine api.Syncer) *Server {
	s := &Server{engine: engine}

	s.mcp = server.NewMCPServer(
		"gitpress",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("run_sync",
		mcp.WithDescription("Run a content sync. mode selects full (re-scan "+
			"everything) or incremental (replay commits since the last run). "+
			"Incremental fails when no previous run recorded a bookmark."),
		mcp.WithString("mode", mcp.Description("full or incremental (default full)")),
	), s.runSync)

	s.mcp.AddTool(mcp.NewTool("preview_sync",
		mcp.WithDescription("Dry run: report what a full sync would create, "+
			"update, and delete, without changing anything."),
	), s.previewSync)

	s.mcp.AddTool(mcp.NewTool("sync_status",
		mcp.WithDescription("Report the outcome of the most recent sync run."),
	), s.syncStatus)

	s.mcp.AddResource(
		mcp.NewResource("gitpress://content-format", "Content Format Contract",
			mcp.WithResourceDescription("Canonical Markdown document format synced documents must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContentFormatResource,
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

func (s *Server) runSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode := "full"
	if m, err := req.RequireString("mode"); err == nil && m != "" {
		mode = m
	}

	var (
		stats any
		err   error
	)
	switch mode {
	case "full":
		stats, err = s.engine.FullSync(ctx)
	case "incremental":
		stats, err = s.engine.IncrementalSync(ctx)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown mode: %s", mode)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) previewSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	preview, err := s.engine.Preview(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(preview, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) syncStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.engine.LastStats()
	if stats == nil {
		return mcp.NewToolResultText("no sync has run yet"), nil
	}
	out, _ := json.MarshalIndent(stats, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readContentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "gitpress://content-format",
			MIMEType: "text/markdown",
			Text:     ContentFormatContract,
		},
	}, nil
}
