package rest

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const s1 = "scenarios:\n  - name: \"S1\"\n    steps:\n      - get: /health\n      - think_time: 2s\n"

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MaxSessions = 2
	server, err := NewServer(cfg, zap.NewNop())
	require.NoError(t, err)
	return server
}

// call sends a request and decodes a JSON object body, if any.
func call(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func openDocument(t *testing.T, s *Server, text string) (string, map[string]any) {
	t.Helper()
	code, body := call(t, s, "POST", "/api/v1/documents", text)
	require.Equal(t, 201, code)
	return body["id"].(string), body["state"].(map[string]any)
}

// nodeID returns the id of the first node of kind typ in a JSON tree.
func nodeID(t *testing.T, state map[string]any, typ string) string {
	t.Helper()
	var walk func(n map[string]any) string
	walk = func(n map[string]any) string {
		if n["type"] == typ {
			return n["id"].(string)
		}
		children, _ := n["children"].([]any)
		for _, c := range children {
			if id := walk(c.(map[string]any)); id != "" {
				return id
			}
		}
		return ""
	}
	root, ok := state["tree"].(map[string]any)
	require.True(t, ok, "state has no tree")
	id := walk(root)
	require.NotEmpty(t, id, "no %s node", typ)
	return id
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	code, body := call(t, s, "GET", "/health", "")
	assert.Equal(t, 200, code)
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 0, body["sessions"])
}

func TestDocumentLifecycle(t *testing.T) {
	s := newTestServer(t)
	id, state := openDocument(t, s, s1)

	assert.Equal(t, s1, state["text"])
	assert.Equal(t, "test", state["tree"].(map[string]any)["type"])

	code, body := call(t, s, "GET", "/api/v1/documents", "")
	assert.Equal(t, 200, code)
	assert.Equal(t, []any{id}, body["ids"])

	code, body = call(t, s, "GET", "/api/v1/documents/"+id, "")
	assert.Equal(t, 200, code)
	assert.Equal(t, id, body["id"])

	code, _ = call(t, s, "DELETE", "/api/v1/documents/"+id, "")
	assert.Equal(t, 204, code)
	code, body = call(t, s, "GET", "/api/v1/documents/"+id, "")
	assert.Equal(t, 404, code)
	assert.Equal(t, "error_404", body["error"])
}

func TestSessionsAreEvicted(t *testing.T) {
	s := newTestServer(t)
	first, _ := openDocument(t, s, s1)
	openDocument(t, s, s1)
	openDocument(t, s, s1)

	assert.Equal(t, 2, s.Sessions().Len())
	_, ok := s.Sessions().Get(first)
	assert.False(t, ok)
}

func TestEditText_ParseErrorKeepsSession(t *testing.T) {
	s := newTestServer(t)
	id, _ := openDocument(t, s, s1)

	code, body := call(t, s, "PUT", "/api/v1/documents/"+id+"/text", "scenarios: [unclosed")
	assert.Equal(t, 200, code)
	state := body["state"].(map[string]any)
	assert.Equal(t, "scenarios: [unclosed", state["text"])
	assert.Nil(t, state["tree"])
	assert.NotEmpty(t, state["error"])

	code, _ = call(t, s, "POST", "/api/v1/documents/"+id+"/nodes/n1/toggle", "")
	assert.Equal(t, 409, code)
	code, _ = call(t, s, "GET", "/api/v1/documents/"+id+"/lint", "")
	assert.Equal(t, 409, code)
}

func TestNodeEdits(t *testing.T) {
	s := newTestServer(t)
	id, state := openDocument(t, s, s1)
	get := nodeID(t, state, "get")
	base := "/api/v1/documents/" + id + "/nodes/" + get

	code, body := call(t, s, "POST", base+"/enabled", `{"enabled": false}`)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["changed"])
	assert.Contains(t, body["state"].(map[string]any)["text"], "enabled: false")

	code, body = call(t, s, "POST", base+"/data", `{"url": "/status"}`)
	require.Equal(t, 200, code)
	assert.Contains(t, body["state"].(map[string]any)["text"], "get: /status")

	code, _ = call(t, s, "POST", base+"/data", `["not", "an", "object"]`)
	assert.Equal(t, 400, code)

	code, body = call(t, s, "POST", base+"/toggle", "")
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["changed"])

	code, _ = call(t, s, "POST", base+"/enabled", `{}`)
	assert.Equal(t, 400, code)

	code, _ = call(t, s, "POST", "/api/v1/documents/"+id+"/nodes/missing/toggle", "")
	assert.Equal(t, 404, code)
}

func TestRenameScenario(t *testing.T) {
	s := newTestServer(t)
	id, state := openDocument(t, s, s1)
	scenario := nodeID(t, state, "scenario")

	code, body := call(t, s, "POST", "/api/v1/documents/"+id+"/nodes/"+scenario+"/rename", `{"name": "Checkout"}`)
	require.Equal(t, 200, code)
	assert.Contains(t, body["state"].(map[string]any)["text"], "name: Checkout")
}

func TestAddAndRemoveChild(t *testing.T) {
	s := newTestServer(t)
	id, state := openDocument(t, s, s1)
	get := nodeID(t, state, "get")
	steps := nodeID(t, state, "steps")
	docs := "/api/v1/documents/" + id

	code, body := call(t, s, "POST", docs+"/nodes/"+get+"/children", `{"type": "assertion"}`)
	require.Equal(t, 201, code)
	added := body["node"].(map[string]any)
	assert.Equal(t, "assertion", added["type"])

	code, body = call(t, s, "POST", docs+"/nodes/"+get+"/children", `{"type": "scenario"}`)
	assert.Equal(t, 422, code)
	assert.Contains(t, body["message"], "cannot add")

	code, _ = call(t, s, "POST", docs+"/nodes/"+get+"/children", `{"type": "bogus"}`)
	assert.Equal(t, 400, code)

	code, _ = call(t, s, "DELETE", docs+"/nodes/"+steps, "")
	assert.Equal(t, 422, code)

	code, body = call(t, s, "DELETE", docs+"/nodes/"+get, "")
	require.Equal(t, 200, code)
	assert.NotContains(t, body["state"].(map[string]any)["text"], "/health")
}

func TestMove(t *testing.T) {
	s := newTestServer(t)
	id, state := openDocument(t, s, s1)
	get := nodeID(t, state, "get")
	think := nodeID(t, state, "think_time")
	docs := "/api/v1/documents/" + id

	code, body := call(t, s, "POST", docs+"/move", `{"node_id": "`+think+`", "target_id": "`+get+`", "position": "before"}`)
	require.Equal(t, 200, code)
	text := body["state"].(map[string]any)["text"].(string)
	assert.Less(t, strings.Index(text, "think_time"), strings.Index(text, "get:"))

	code, _ = call(t, s, "POST", docs+"/move", `{"node_id": "`+think+`", "target_id": "`+get+`", "position": "sideways"}`)
	assert.Equal(t, 400, code)
}

func TestDragAndDrop(t *testing.T) {
	s := newTestServer(t)
	id, state := openDocument(t, s, s1)
	get := nodeID(t, state, "get")
	think := nodeID(t, state, "think_time")
	steps := nodeID(t, state, "steps")
	drag := "/api/v1/documents/" + id + "/drag"

	code, _ := call(t, s, "POST", drag+"/over", `{"target_id": "`+get+`", "position": "before"}`)
	assert.Equal(t, 409, code, "no drag in progress")

	code, _ = call(t, s, "POST", drag+"/start", `{"node_id": "`+steps+`"}`)
	assert.Equal(t, 422, code)

	code, _ = call(t, s, "POST", drag+"/start", `{"node_id": "`+get+`"}`)
	require.Equal(t, 200, code)

	code, body := call(t, s, "POST", drag+"/over", `{"target_id": "`+think+`", "position": "inside"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, false, body["allowed"])

	code, body = call(t, s, "POST", drag+"/over", `{"target_id": "`+think+`", "position": "after"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["allowed"])

	code, body = call(t, s, "POST", "/api/v1/documents/"+id+"/drop", `{"target_id": "`+think+`", "position": "after"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, true, body["changed"])
	st := body["state"].(map[string]any)
	assert.Nil(t, st["drag"])
	text := st["text"].(string)
	assert.Less(t, strings.Index(text, "think_time"), strings.Index(text, "get:"))

	code, _ = call(t, s, "POST", "/api/v1/documents/"+id+"/drop", `{"target_id": "`+think+`", "position": "after"}`)
	assert.Equal(t, 409, code)
}

func TestSelection(t *testing.T) {
	s := newTestServer(t)
	id, state := openDocument(t, s, s1)
	get := nodeID(t, state, "get")
	path := "/api/v1/documents/" + id + "/selection"

	code, body := call(t, s, "PUT", path, `{"node_id": "`+get+`"}`)
	require.Equal(t, 200, code)
	assert.Equal(t, get, body["state"].(map[string]any)["selected"])

	code, _ = call(t, s, "PUT", path, `{"node_id": "missing"}`)
	assert.Equal(t, 404, code)

	code, body = call(t, s, "PUT", path, `{"node_id": ""}`)
	require.Equal(t, 200, code)
	assert.Nil(t, body["state"].(map[string]any)["selected"])
}

func TestDownload(t *testing.T) {
	s := newTestServer(t)
	id, _ := openDocument(t, s, s1)

	req := httptest.NewRequest("GET", "/api/v1/documents/"+id+"/download", nil)
	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "test.yaml")
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, s1, string(raw))
}

func TestLint(t *testing.T) {
	s := newTestServer(t)
	id, _ := openDocument(t, s, "scenarios:\n  - name: S\n    steps:\n      - loop: 0\n        steps:\n          - get: /a\n")

	code, body := call(t, s, "GET", "/api/v1/documents/"+id+"/lint", "")
	require.Equal(t, 200, code)
	assert.EqualValues(t, 1, body["errors"])
	diags := body["diagnostics"].([]any)
	require.NotEmpty(t, diags)
	assert.Equal(t, "loop-count", diags[0].(map[string]any)["rule"])
}

func TestAddableTypes(t *testing.T) {
	s := newTestServer(t)

	code, body := call(t, s, "GET", "/api/v1/node-types/scenarios/addable", "")
	require.Equal(t, 200, code)
	assert.Equal(t, []any{"scenario"}, body["addable"])
	assert.Equal(t, false, body["removable"])

	code, _ = call(t, s, "GET", "/api/v1/node-types/bogus/addable", "")
	assert.Equal(t, 400, code)
}
