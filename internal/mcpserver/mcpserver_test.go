package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markmhendrickson/site-mcp/internal/query"
	"github.com/markmhendrickson/site-mcp/internal/record"
	"github.com/markmhendrickson/site-mcp/internal/source"
)

func mustParseList(t *testing.T, doc string) []record.Record {
	t.Helper()
	records, err := record.ParseList([]byte(doc))
	require.NoError(t, err)
	return records
}

func newTestServer(t *testing.T) (*Server, *source.Static) {
	t.Helper()
	src := &source.Static{
		Data: map[source.Dataset][]record.Record{
			source.Posts:    mustParseList(t, `[{"slug":"a","published":true},{"slug":"professional-mission","title":"Mark Hendrickson"}]`),
			source.Links:    mustParseList(t, `[{"url":"u","active":true}]`),
			source.Timeline: mustParseList(t, `[{"entry_type":"work"}]`),
		},
		Errs: map[source.Dataset]error{},
	}
	s := New(query.New(src), "test")

	handleRaw(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"0.0.0"}}}`)
	return s, src
}

type toolResponse struct {
	Result struct {
		IsError bool `json:"isError"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func handleRaw(t *testing.T, s *Server, message string) toolResponse {
	t.Helper()
	msg := s.mcp.HandleMessage(context.Background(), json.RawMessage(message))
	out, err := json.Marshal(msg)
	require.NoError(t, err)

	var resp toolResponse
	require.NoError(t, json.Unmarshal(out, &resp))
	return resp
}

func callTool(t *testing.T, s *Server, name string, arguments map[string]any) toolResponse {
	t.Helper()
	params := map[string]any{"name": name}
	if arguments != nil {
		params["arguments"] = arguments
	}
	req, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      2,
		"method":  "tools/call",
		"params":  params,
	})
	require.NoError(t, err)
	return handleRaw(t, s, string(req))
}

// envelope decodes the single text content block of a tool result.
func envelope(t *testing.T, resp toolResponse) map[string]any {
	t.Helper()
	require.Nil(t, resp.Error, "expected a tool result, got a protocol error")
	require.Len(t, resp.Result.Content, 1)
	require.Equal(t, "text", resp.Result.Content[0].Type)

	var env map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Result.Content[0].Text), &env))
	return env
}

func TestListTools(t *testing.T) {
	s, _ := newTestServer(t)
	resp := handleRaw(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	require.Nil(t, resp.Error)
}

func TestGetPostsTool(t *testing.T) {
	t.Run("NoFilters", func(t *testing.T) {
		s, _ := newTestServer(t)
		env := envelope(t, callTool(t, s, "markmhendrickson_get_posts", nil))
		assert.Equal(t, true, env["success"])
		assert.Equal(t, float64(2), env["count"])
	})

	t.Run("Filtered", func(t *testing.T) {
		s, _ := newTestServer(t)
		env := envelope(t, callTool(t, s, "markmhendrickson_get_posts", map[string]any{
			"filters": map[string]any{"published": true},
		}))
		assert.Equal(t, true, env["success"])
		assert.Equal(t, float64(1), env["count"])
	})

	t.Run("FiltersNotAnObject", func(t *testing.T) {
		s, _ := newTestServer(t)
		env := envelope(t, callTool(t, s, "markmhendrickson_get_posts", map[string]any{
			"filters": "not-an-object",
		}))
		assert.Equal(t, false, env["success"])
		assert.Equal(t, "Invalid filters. Expected an object.", env["error"])
	})

	t.Run("RetrievalFailure", func(t *testing.T) {
		s, src := newTestServer(t)
		src.Errs[source.Posts] = errors.New("fetch posts: status 503")
		env := envelope(t, callTool(t, s, "markmhendrickson_get_posts", nil))
		assert.Equal(t, false, env["success"])
		assert.NotEmpty(t, env["error"])
		assert.Equal(t, float64(0), env["count"])
	})
}

func TestGetAllContentTool(t *testing.T) {
	s, src := newTestServer(t)
	src.Errs[source.Timeline] = errors.New("fetch timeline: timeout")

	env := envelope(t, callTool(t, s, "markmhendrickson_get_all_content", nil))
	assert.Equal(t, false, env["success"])
	errs := env["errors"].(map[string]any)
	assert.Contains(t, errs, "timeline")
	counts := env["counts"].(map[string]any)
	assert.Equal(t, float64(2), counts["posts"])
}

func TestGetAboutTool(t *testing.T) {
	s, _ := newTestServer(t)

	env := envelope(t, callTool(t, s, "markmhendrickson_get_about", nil))
	require.Equal(t, true, env["success"])
	data := env["data"].(map[string]any)
	assert.Equal(t, "Mark Hendrickson", data["title"])
}

func TestHandlerPanicBecomesErrorEnvelope(t *testing.T) {
	s, _ := newTestServer(t)
	s.mcp.AddTool(mcp.NewTool("boom"), func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		panic("kaboom")
	})

	env := envelope(t, callTool(t, s, "boom", nil))
	assert.Equal(t, false, env["success"])
	assert.Contains(t, env["error"], "kaboom")
}

func TestUnknownToolRejectedByProtocol(t *testing.T) {
	s, _ := newTestServer(t)
	resp := callTool(t, s, "markmhendrickson_get_nothing", nil)
	assert.NotNil(t, resp.Error)
}
