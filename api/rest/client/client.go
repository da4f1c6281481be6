// Package client is a Go client for the editor REST API.
package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"

	"github.com/relampo/relampo-yml-editor-sub000/api/rest"
	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// Config holds the configuration for the client.
type Config struct {
	// BaseURL is the server root, e.g. "http://localhost:8080".
	BaseURL string

	// RequestTimeout bounds each request. A context deadline that comes
	// sooner wins.
	RequestTimeout time.Duration
}

// DefaultConfig returns a default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        "http://localhost:8080",
		RequestTimeout: 30 * time.Second,
	}
}

// Node mirrors the tree node wire shape.
type Node struct {
	ID       string         `json:"id"`
	Type     types.NodeType `json:"type"`
	Name     string         `json:"name"`
	Data     map[string]any `json:"data"`
	Children []*Node        `json:"children,omitempty"`
	Expanded bool           `json:"expanded"`
	Path     string         `json:"path,omitempty"`
	Leaf     bool           `json:"leaf,omitempty"`
}

// Find returns the first node of kind t in document order, or nil.
func (n *Node) Find(t types.NodeType) *Node {
	if n == nil {
		return nil
	}
	if n.Type == t {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(t); found != nil {
			return found
		}
	}
	return nil
}

// DragState mirrors the drag state of a session.
type DragState struct {
	Dragged  string         `json:"dragged"`
	Over     string         `json:"over,omitempty"`
	Position types.Position `json:"position,omitempty"`
}

// State is a session snapshot.
type State struct {
	Text     string     `json:"text"`
	Tree     *Node      `json:"tree"`
	Error    string     `json:"error,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
	Selected string     `json:"selected,omitempty"`
	Drag     *DragState `json:"drag,omitempty"`
}

// Document is an open session.
type Document struct {
	ID    string `json:"id"`
	State State  `json:"state"`
}

// Mutation is the answer to a tree edit.
type Mutation struct {
	Changed bool  `json:"changed"`
	State   State `json:"state"`
}

// DragOver is the answer to hovering a drop zone.
type DragOver struct {
	Allowed bool      `json:"allowed"`
	Drag    DragState `json:"drag"`
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Client talks to one editor server.
type Client struct {
	config *Config
	agent  *fiber.Client
}

// NewClient creates a client. A nil config means DefaultConfig.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	agent := fiber.AcquireClient()
	agent.JSONEncoder = sonic.Marshal
	agent.JSONDecoder = sonic.Unmarshal
	return &Client{config: config, agent: agent}
}

// Close releases the underlying fiber client.
func (c *Client) Close() {
	fiber.ReleaseClient(c.agent)
}

// GetConfig returns the client configuration.
func (c *Client) GetConfig() *Config {
	return c.config
}

func (c *Client) timeout(ctx context.Context) time.Duration {
	timeout := c.config.RequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); timeout <= 0 || left < timeout {
			timeout = left
		}
	}
	return timeout
}

// do sends one request. body may be nil, a string sent as raw text, or a
// value sent as JSON. out may be nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := c.config.BaseURL + path
	var req *fiber.Agent
	switch method {
	case fiber.MethodGet:
		req = c.agent.Get(target)
	case fiber.MethodPost:
		req = c.agent.Post(target)
	case fiber.MethodPut:
		req = c.agent.Put(target)
	case fiber.MethodDelete:
		req = c.agent.Delete(target)
	default:
		return fmt.Errorf("unsupported method %s", method)
	}
	if timeout := c.timeout(ctx); timeout > 0 {
		req.Timeout(timeout)
	}

	switch b := body.(type) {
	case nil:
	case string:
		req.Body([]byte(b))
		req.ContentType("application/yaml")
	case []byte:
		req.Body(b)
		req.ContentType(fiber.MIMEApplicationJSON)
	default:
		req.JSON(b)
	}

	status, respBody, errs := req.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errs[0])
	}
	if status >= fiber.StatusBadRequest {
		apiErr := &APIError{StatusCode: status}
		var errResp rest.ErrorResponse
		if err := sonic.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Code = errResp.Error
			apiErr.Message = errResp.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = append((*raw)[:0], respBody...)
		return nil
	}
	if err := sonic.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func docPath(id string, parts ...string) string {
	p := "/api/v1/documents/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func nodePath(id, nodeID, action string) string {
	p := docPath(id, "nodes", url.PathEscape(nodeID))
	if action != "" {
		p += "/" + action
	}
	return p
}

// Health checks the server.
func (c *Client) Health(ctx context.Context) (*rest.HealthResponse, error) {
	var resp rest.HealthResponse
	if err := c.do(ctx, fiber.MethodGet, "/health", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Create opens a session on text. Text that does not parse still opens a
// session; the state carries the parse error.
func (c *Client) Create(ctx context.Context, text string) (*Document, error) {
	var doc Document
	if err := c.do(ctx, fiber.MethodPost, "/api/v1/documents", text, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the ids of open sessions.
func (c *Client) List(ctx context.Context) ([]string, error) {
	var resp rest.DocumentListResponse
	if err := c.do(ctx, fiber.MethodGet, "/api/v1/documents", nil, &resp); err != nil {
		return nil, err
	}
	return resp.IDs, nil
}

// Get returns a session.
func (c *Client) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := c.do(ctx, fiber.MethodGet, docPath(id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Delete closes a session.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, fiber.MethodDelete, docPath(id), nil, nil)
}

// EditText replaces the document text.
func (c *Client) EditText(ctx context.Context, id, text string) (*Document, error) {
	var doc Document
	if err := c.do(ctx, fiber.MethodPut, docPath(id, "text"), text, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Download returns the document text.
func (c *Client) Download(ctx context.Context, id string) (string, error) {
	var raw []byte
	if err := c.do(ctx, fiber.MethodGet, docPath(id, "download"), nil, &raw); err != nil {
		return "", err
	}
	return string(raw), nil
}

func (c *Client) mutate(ctx context.Context, method, path string, body any) (*Mutation, error) {
	var m Mutation
	if err := c.do(ctx, method, path, body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// ToggleExpanded flips a node's expanded flag.
func (c *Client) ToggleExpanded(ctx context.Context, id, nodeID string) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodPost, nodePath(id, nodeID, "toggle"), nil)
}

// SetEnabled sets a node's enabled flag.
func (c *Client) SetEnabled(ctx context.Context, id, nodeID string, enabled bool) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodPost, nodePath(id, nodeID, "enabled"), rest.EnabledRequest{Enabled: &enabled})
}

// UpdateData replaces a node's data. Key order of data is kept.
func (c *Client) UpdateData(ctx context.Context, id, nodeID string, data *document.Map) (*Mutation, error) {
	body, err := data.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode node data: %w", err)
	}
	return c.mutate(ctx, fiber.MethodPost, nodePath(id, nodeID, "data"), body)
}

// Rename sets a node's display name.
func (c *Client) Rename(ctx context.Context, id, nodeID, name string) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodPost, nodePath(id, nodeID, "rename"), rest.RenameRequest{Name: name})
}

// Remove deletes a node and its subtree.
func (c *Client) Remove(ctx context.Context, id, nodeID string) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodDelete, nodePath(id, nodeID, ""), nil)
}

// AddChild adds a node of kind t under parentID and returns it.
func (c *Client) AddChild(ctx context.Context, id, parentID string, t types.NodeType) (*Node, *State, error) {
	var resp struct {
		Node  *Node `json:"node"`
		State State `json:"state"`
	}
	if err := c.do(ctx, fiber.MethodPost, nodePath(id, parentID, "children"), rest.AddChildRequest{Type: t}, &resp); err != nil {
		return nil, nil, err
	}
	return resp.Node, &resp.State, nil
}

// Move relocates nodeID relative to targetID.
func (c *Client) Move(ctx context.Context, id, nodeID, targetID string, pos types.Position) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodPost, docPath(id, "move"), rest.MoveRequest{
		NodeID:   nodeID,
		TargetID: targetID,
		Position: pos,
	})
}

// Select selects a node; an empty nodeID clears the selection.
func (c *Client) Select(ctx context.Context, id, nodeID string) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodPut, docPath(id, "selection"), rest.SelectionRequest{NodeID: nodeID})
}

// StartDrag picks up a node.
func (c *Client) StartDrag(ctx context.Context, id, nodeID string) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodPost, docPath(id, "drag", "start"), rest.DragStartRequest{NodeID: nodeID})
}

// DragOver asks whether the dragged node may land at pos relative to targetID.
func (c *Client) DragOver(ctx context.Context, id, targetID string, pos types.Position) (*DragOver, error) {
	var resp DragOver
	if err := c.do(ctx, fiber.MethodPost, docPath(id, "drag", "over"), rest.DropZoneRequest{TargetID: targetID, Position: pos}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EndDrag abandons the drag in progress.
func (c *Client) EndDrag(ctx context.Context, id string) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodPost, docPath(id, "drag", "end"), nil)
}

// Drop moves the dragged node to pos relative to targetID and ends the drag.
func (c *Client) Drop(ctx context.Context, id, targetID string, pos types.Position) (*Mutation, error) {
	return c.mutate(ctx, fiber.MethodPost, docPath(id, "drop"), rest.DropZoneRequest{TargetID: targetID, Position: pos})
}

// Lint checks the document.
func (c *Client) Lint(ctx context.Context, id string) (*rest.LintResponse, error) {
	var resp rest.LintResponse
	if err := c.do(ctx, fiber.MethodGet, docPath(id, "lint"), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Addable describes what a node kind may hold.
func (c *Client) Addable(ctx context.Context, t types.NodeType) (*rest.AddableResponse, error) {
	var resp rest.AddableResponse
	if err := c.do(ctx, fiber.MethodGet, "/api/v1/node-types/"+url.PathEscape(string(t))+"/addable", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// IsRetryableError checks if an HTTP status code indicates a retryable error.
func IsRetryableError(statusCode int) bool {
	switch statusCode {
	case fiber.StatusServiceUnavailable,
		fiber.StatusGatewayTimeout,
		fiber.StatusBadGateway,
		fiber.StatusTooManyRequests,
		fiber.StatusRequestTimeout:
		return true
	default:
		return false
	}
}
