package codeserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_ytcode/internal/extraction"
)

func errNotCompleted() error { return extraction.ErrNotCompleted }
func errNoCode() error       { return extraction.ErrNoCode }

func connect(t *testing.T, svc Extractor) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "go_ytcode", Version: "test"}, nil)
	RegisterTools(server, svc)

	st, ct := mcp.NewInMemoryTransports()
	ss, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	cs, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)
	t.Cleanup(func() { cs.Close() })
	return cs
}

func callTool(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) (*mcp.CallToolResult, map[string]any) {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	out := map[string]any{}
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok && !res.IsError {
			require.NoError(t, json.Unmarshal([]byte(tc.Text), &out))
		}
	}
	return res, out
}

func TestTools_Listed(t *testing.T) {
	cs := connect(t, newService(t, "x"))
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"extract_code", "extraction_status", "extraction_list", "extraction_archive"} {
		assert.True(t, names[want], want)
	}
}

func TestTools_ExtractStatusArchive(t *testing.T) {
	svc := newService(t, "Python Flask tutorial")
	cs := connect(t, svc)

	res, out := callTool(t, cs, "extract_code", map[string]any{"url": sampleURL})
	require.False(t, res.IsError)
	id, _ := out["id"].(string)
	require.NotEmpty(t, id)

	waitCompleted(t, svc, id)

	res, out = callTool(t, cs, "extraction_status", map[string]any{"id": id})
	require.False(t, res.IsError)
	assert.Equal(t, "completed", out["status"])
	assert.NotNil(t, out["result"])

	res, out = callTool(t, cs, "extraction_list", map[string]any{})
	require.False(t, res.IsError)
	assert.EqualValues(t, 1, out["total"])

	res, out = callTool(t, cs, "extraction_archive", map[string]any{"id": id})
	require.False(t, res.IsError)
	assert.FileExists(t, out["path"].(string))
	assert.Equal(t, "python-flask-tutorial-code.zip", out["filename"])
}

func TestTools_Errors(t *testing.T) {
	cs := connect(t, newService(t, "x"))

	res, _ := callTool(t, cs, "extract_code", map[string]any{"url": "https://example.com"})
	assert.True(t, res.IsError)

	res, _ = callTool(t, cs, "extraction_status", map[string]any{"id": "missing"})
	assert.True(t, res.IsError)
}
