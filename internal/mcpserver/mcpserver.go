// Package mcpserver exposes the content operations as MCP tools over stdio,
// for AI-agent clients. Each tool returns the query layer's JSON envelope as
// a single text content block.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/markmhendrickson/site-mcp/internal/query"
	"github.com/markmhendrickson/site-mcp/internal/record"
)

type Server struct {
	svc *query.Service
	mcp *server.MCPServer
}

func New(svc *query.Service, version string) *Server {
	s := &Server{
		svc: svc,
		mcp: server.NewMCPServer("markmhendrickson", version,
			server.WithToolHandlerMiddleware(recoverToEnvelope),
		),
	}

	s.mcp.AddTool(mcp.NewTool("markmhendrickson_get_posts",
		mcp.WithDescription("Return post records from production (markmhendrickson.com). Optional filters supported. Production serves published posts only."),
		mcp.WithObject("filters",
			mcp.Description(`Optional filters to apply (e.g., {"published": true})`),
		),
	), s.listHandler(s.svc.GetPosts))

	s.mcp.AddTool(mcp.NewTool("markmhendrickson_get_links",
		mcp.WithDescription("Return links records from production (markmhendrickson.com). Optional filters supported."),
		mcp.WithObject("filters",
			mcp.Description(`Optional filters to apply (e.g., {"active": true})`),
		),
	), s.listHandler(s.svc.GetLinks))

	s.mcp.AddTool(mcp.NewTool("markmhendrickson_get_timeline",
		mcp.WithDescription("Return timeline records from production (markmhendrickson.com). Optional filters supported."),
		mcp.WithObject("filters",
			mcp.Description(`Optional filters to apply (e.g., {"entry_type": "work"})`),
		),
	), s.listHandler(s.svc.GetTimeline))

	s.mcp.AddTool(mcp.NewTool("markmhendrickson_get_all_content",
		mcp.WithDescription("Return posts, links, and timeline records in a single response."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return envelopeResult(s.svc.GetAllContent(ctx))
	})

	s.mcp.AddTool(mcp.NewTool("markmhendrickson_get_about",
		mcp.WithDescription("Return the home post (about page) content."),
	), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return envelopeResult(s.svc.GetAbout(ctx))
	})

	return s
}

// ServeStdio runs the MCP server over stdin/stdout until the client
// disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) listHandler(op func(context.Context, record.Filter) query.ListResult) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter, ok := filtersArg(req.GetArguments())
		if !ok {
			return errorResult("Invalid filters. Expected an object."), nil
		}
		return envelopeResult(op(ctx, filter))
	}
}

// filtersArg extracts the optional filters object from tool arguments. The
// second return is false when filters is present but not an object.
func filtersArg(args map[string]any) (record.Filter, bool) {
	raw, ok := args["filters"]
	if !ok || raw == nil {
		return nil, true
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}
	return record.Filter(m), true
}

// recoverToEnvelope converts a panicking tool handler into the standard
// {success:false, error} envelope, so a fault in one call surfaces like any
// other failure instead of tearing down the session.
func recoverToEnvelope(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (res *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				res = errorResult(fmt.Sprintf("%v", r))
				err = nil
			}
		}()
		return next(ctx, req)
	}
}

func envelopeResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal envelope: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func errorResult(message string) *mcp.CallToolResult {
	data, _ := json.Marshal(map[string]any{"success": false, "error": message})
	return mcp.NewToolResultText(string(data))
}
