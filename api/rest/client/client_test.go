package client

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/relampo/relampo-yml-editor-sub000/api/rest"
	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

const s1 = "scenarios:\n  - name: \"S1\"\n    steps:\n      - get: /health\n      - think_time: 2s\n"

// setupTestServer starts an editor server on a loopback port.
func setupTestServer(t *testing.T) *Client {
	t.Helper()
	server, err := rest.NewServer(rest.DefaultConfig(), zap.NewNop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() {
		_ = server.App().Listener(ln)
	}()
	t.Cleanup(func() {
		_ = server.ShutdownWithTimeout(time.Second)
	})

	c := NewClient(&Config{BaseURL: "http://" + ln.Addr().String(), RequestTimeout: 5 * time.Second})
	t.Cleanup(c.Close)
	return c
}

func TestNewClient(t *testing.T) {
	c := NewClient(nil)
	defer c.Close()
	assert.Equal(t, "http://localhost:8080", c.GetConfig().BaseURL)
	assert.Equal(t, 30*time.Second, c.GetConfig().RequestTimeout)
}

func TestClient_Health(t *testing.T) {
	c := setupTestServer(t)

	resp, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", resp.Status)
}

func TestClient_DocumentLifecycle(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	doc, err := c.Create(ctx, s1)
	require.NoError(t, err)
	assert.Equal(t, s1, doc.State.Text)
	require.NotNil(t, doc.State.Tree)
	assert.Equal(t, types.TypeTest, doc.State.Tree.Type)

	ids, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{doc.ID}, ids)

	text, err := c.Download(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, s1, text)

	broken, err := c.EditText(ctx, doc.ID, "scenarios: [unclosed")
	require.NoError(t, err)
	assert.Nil(t, broken.State.Tree)
	assert.NotEmpty(t, broken.State.Error)

	require.NoError(t, c.Delete(ctx, doc.ID))
	_, err = c.Get(ctx, doc.ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 404, apiErr.StatusCode)
	assert.Equal(t, "error_404", apiErr.Code)
}

func TestClient_TreeEdits(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	doc, err := c.Create(ctx, s1)
	require.NoError(t, err)
	get := doc.State.Tree.Find(types.TypeGet)
	think := doc.State.Tree.Find(types.TypeThinkTime)
	require.NotNil(t, get)
	require.NotNil(t, think)

	m, err := c.SetEnabled(ctx, doc.ID, get.ID, false)
	require.NoError(t, err)
	assert.True(t, m.Changed)
	assert.Contains(t, m.State.Text, "enabled: false")

	m, err = c.UpdateData(ctx, doc.ID, get.ID, document.MapOf("url", "/status"))
	require.NoError(t, err)
	assert.Contains(t, m.State.Text, "get: /status")

	child, state, err := c.AddChild(ctx, doc.ID, get.ID, types.TypeAssertion)
	require.NoError(t, err)
	assert.Equal(t, types.TypeAssertion, child.Type)
	assert.Contains(t, state.Text, "status")

	m, err = c.Move(ctx, doc.ID, think.ID, get.ID, types.PositionBefore)
	require.NoError(t, err)
	assert.Less(t, strings.Index(m.State.Text, "think_time"), strings.Index(m.State.Text, "get:"))

	m, err = c.Remove(ctx, doc.ID, think.ID)
	require.NoError(t, err)
	assert.NotContains(t, m.State.Text, "think_time")

	_, err = c.Remove(ctx, doc.ID, doc.State.Tree.Find(types.TypeSteps).ID)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 422, apiErr.StatusCode)
}

func TestClient_DragAndSelection(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	doc, err := c.Create(ctx, s1)
	require.NoError(t, err)
	get := doc.State.Tree.Find(types.TypeGet)
	think := doc.State.Tree.Find(types.TypeThinkTime)

	m, err := c.Select(ctx, doc.ID, get.ID)
	require.NoError(t, err)
	assert.Equal(t, get.ID, m.State.Selected)

	_, err = c.StartDrag(ctx, doc.ID, get.ID)
	require.NoError(t, err)

	over, err := c.DragOver(ctx, doc.ID, think.ID, types.PositionAfter)
	require.NoError(t, err)
	assert.True(t, over.Allowed)
	assert.Equal(t, think.ID, over.Drag.Over)

	m, err = c.EndDrag(ctx, doc.ID)
	require.NoError(t, err)
	assert.True(t, m.Changed)
	assert.Nil(t, m.State.Drag)

	_, err = c.StartDrag(ctx, doc.ID, get.ID)
	require.NoError(t, err)
	m, err = c.Drop(ctx, doc.ID, think.ID, types.PositionAfter)
	require.NoError(t, err)
	assert.True(t, m.Changed)
	assert.Less(t, strings.Index(m.State.Text, "think_time"), strings.Index(m.State.Text, "get:"))
}

func TestClient_LintAndAddable(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	doc, err := c.Create(ctx, "scenarios:\n  - name: S\n    steps:\n      - loop: 0\n        steps:\n          - get: /a\n")
	require.NoError(t, err)

	report, err := c.Lint(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Errors)

	addable, err := c.Addable(ctx, types.TypeScenarios)
	require.NoError(t, err)
	assert.Equal(t, []types.NodeType{types.TypeScenario}, addable.Addable)
}

func TestClient_CancelledContext(t *testing.T) {
	c := NewClient(nil)
	defer c.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Health(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(503))
	assert.True(t, IsRetryableError(429))
	assert.False(t, IsRetryableError(404))
	assert.False(t, IsRetryableError(200))
}
