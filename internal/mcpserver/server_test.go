package mcpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sfmcp/internal/adapter"
	"sfmcp/internal/metrics"
	"sfmcp/internal/salesforce"
	"sfmcp/internal/salesforce/sftest"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *sftest.Org, *metrics.Recorder) {
	t.Helper()
	org := sftest.NewOrg(t)
	client := salesforce.NewClient(org.Options())
	t.Cleanup(func() { _ = client.Close() })

	rec := metrics.NewRecorder()
	return New(Config{Name: "sfmcp-test", Version: "test"}, adapter.New(client), rec), org, rec
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok, "content is not text")
	return text.Text
}

func TestServer_ListTools(t *testing.T) {
	s, _, _ := newTestServer(t)

	tools := s.ListTools()
	require.Len(t, tools, 3)
	assert.Equal(t, ToolListObjects, tools[0].Name)
	assert.Equal(t, ToolDescribeObject, tools[1].Name)
	assert.Equal(t, ToolExecuteSOQLQuery, tools[2].Name)

	assert.Empty(t, tools[0].InputSchema.Required)
	assert.Equal(t, []string{"object_name"}, tools[1].InputSchema.Required)
	assert.Equal(t, []string{"query"}, tools[2].InputSchema.Required)
	assert.Contains(t, tools[2].Description, "SELECT *")
	assert.Contains(t, tools[2].Description, soqlReference)
}

func TestServer_CallListObjects(t *testing.T) {
	s, _, _ := newTestServer(t)

	res, err := s.CallTool(context.Background(), ToolListObjects, nil)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out adapter.ListObjectsResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Len(t, out.Objects, 4)
}

func TestServer_CallDescribeObject(t *testing.T) {
	s, _, _ := newTestServer(t)

	res, err := s.CallTool(context.Background(), ToolDescribeObject, map[string]any{"object_name": "Account"})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var out struct {
		Name   string           `json:"name"`
		Fields []map[string]any `json:"fields"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "Account", out.Name)
	assert.Len(t, out.Fields, 5)
}

func TestServer_CallExecuteSOQLQuery(t *testing.T) {
	s, _, _ := newTestServer(t)

	res, err := s.CallTool(context.Background(), ToolExecuteSOQLQuery, map[string]any{"query": sftest.QueryTwoAccounts})
	require.NoError(t, err)
	require.False(t, res.IsError)

	text := resultText(t, res)
	assert.JSONEq(t, fmt.Sprintf(`{
		"query": %q,
		"rows": [
			{"Id": "001000000000001AAA", "Name": "Acme"},
			{"Id": "002000000000002AAA", "Name": "Globex"}
		],
		"row_count": 2,
		"columns": ["Id", "Name"]
	}`, sftest.QueryTwoAccounts), text)
	assert.Less(t, strings.Index(text, `"Id"`), strings.Index(text, `"Name"`), "row keys keep query order")
}

func TestServer_ToolErrors(t *testing.T) {
	tests := []struct {
		name    string
		tool    string
		args    map[string]any
		message string
	}{
		{
			name:    "empty query",
			tool:    ToolExecuteSOQLQuery,
			args:    map[string]any{"query": ""},
			message: "query must not be empty",
		},
		{
			name:    "missing query argument",
			tool:    ToolExecuteSOQLQuery,
			args:    nil,
			message: "query must not be empty",
		},
		{
			name:    "malformed query",
			tool:    ToolExecuteSOQLQuery,
			args:    map[string]any{"query": "SELECT * FROM Account"},
			message: "unexpected token: 'Account'",
		},
		{
			name:    "unknown object",
			tool:    ToolDescribeObject,
			args:    map[string]any{"object_name": "Nope__c"},
			message: "The requested resource does not exist",
		},
		{
			name:    "blank object name",
			tool:    ToolDescribeObject,
			args:    map[string]any{"object_name": "  "},
			message: "object_name must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _, _ := newTestServer(t)

			res, err := s.CallTool(context.Background(), tt.tool, tt.args)
			require.NoError(t, err, "failures are tool results, not protocol errors")
			assert.True(t, res.IsError)
			assert.Equal(t, tt.message, resultText(t, res))
		})
	}
}

func TestServer_CallUnknownTool(t *testing.T) {
	s, _, _ := newTestServer(t)

	_, err := s.CallTool(context.Background(), "delete_everything", nil)
	assert.Error(t, err)
}

func TestServer_RecordsMetrics(t *testing.T) {
	s, _, rec := newTestServer(t)
	ctx := context.Background()

	_, err := s.CallTool(ctx, ToolListObjects, nil)
	require.NoError(t, err)
	_, err = s.CallTool(ctx, ToolExecuteSOQLQuery, map[string]any{"query": ""})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()

	assert.Contains(t, body, `sfmcp_tool_calls_total{outcome="success",tool="list_objects"} 1`)
	assert.Contains(t, body, `sfmcp_tool_calls_total{outcome="error",tool="execute_soql_query"} 1`)
	assert.Contains(t, body, `sfmcp_tool_errors_total{kind="InvalidRequestError",tool="execute_soql_query"} 1`)
}

func TestServer_JSONRPC(t *testing.T) {
	s, _, _ := newTestServer(t)
	ctx := context.Background()

	call := func(t *testing.T, body string) map[string]any {
		t.Helper()
		msg := s.MCPServer().HandleMessage(ctx, json.RawMessage(body))
		data, err := json.Marshal(msg)
		require.NoError(t, err)
		var out map[string]any
		require.NoError(t, json.Unmarshal(data, &out))
		return out
	}

	t.Run("tools/list", func(t *testing.T) {
		out := call(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
		result, ok := out["result"].(map[string]any)
		require.True(t, ok, "got %v", out)
		tools, ok := result["tools"].([]any)
		require.True(t, ok)
		assert.Len(t, tools, 3)
	})

	t.Run("tools/call", func(t *testing.T) {
		out := call(t, fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"method":"tools/call",
			"params":{"name":"execute_soql_query","arguments":{"query":%q}}}`, sftest.QueryCount))
		result, ok := out["result"].(map[string]any)
		require.True(t, ok, "got %v", out)
		assert.NotEqual(t, true, result["isError"])

		content := result["content"].([]any)
		require.Len(t, content, 1)
		text := content[0].(map[string]any)["text"].(string)
		assert.JSONEq(t, fmt.Sprintf(`{"query":%q,"rows":[{"cnt":42}],"row_count":1,"columns":["cnt"]}`, sftest.QueryCount), text)
	})
}

func TestServer_ServeSSE(t *testing.T) {
	s, _, _ := newTestServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.serveSSE(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/readyz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(base + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	streamCtx, streamCancel := context.WithTimeout(ctx, 5*time.Second)
	defer streamCancel()
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, base+"/sse", nil)
	require.NoError(t, err)
	stream, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer stream.Body.Close()
	assert.Contains(t, stream.Header.Get("Content-Type"), "text/event-stream")

	line, err := bufio.NewReader(stream.Body).ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: endpoint\n", line)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("SSE server did not stop")
	}
}

func TestServer_ReadyzBeforeServing(t *testing.T) {
	s, _, _ := newTestServer(t)

	w := httptest.NewRecorder()
	s.Handler("http://localhost:8090").ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNew_Defaults(t *testing.T) {
	s := New(Config{}, nil, nil)
	assert.Equal(t, "localhost:8090", s.Addr())
	assert.Equal(t, "sfmcp", s.config.Name)
}
