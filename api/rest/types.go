package rest

import (
	"github.com/relampo/relampo-yml-editor-sub000/internal/editor"
	"github.com/relampo/relampo-yml-editor-sub000/internal/lint"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse represents a health check response.
type HealthResponse struct {
	Status    string `json:"status"`
	Sessions  int    `json:"sessions"`
	Timestamp string `json:"timestamp"`
}

// DocumentResponse is a session and its current state.
type DocumentResponse struct {
	ID    string       `json:"id"`
	State editor.State `json:"state"`
}

// DocumentListResponse lists open sessions.
type DocumentListResponse struct {
	IDs []string `json:"ids"`
}

// MutationResponse reports whether a tree edit changed anything.
type MutationResponse struct {
	Changed bool         `json:"changed"`
	State   editor.State `json:"state"`
}

// AddChildRequest names the kind of node to add.
type AddChildRequest struct {
	Type types.NodeType `json:"type"`
}

// AddChildResponse returns the created node.
type AddChildResponse struct {
	Node  *types.Node  `json:"node"`
	State editor.State `json:"state"`
}

// EnabledRequest sets data.enabled.
type EnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

// RenameRequest sets a display name.
type RenameRequest struct {
	Name string `json:"name"`
}

// MoveRequest relocates a node.
type MoveRequest struct {
	NodeID   string         `json:"node_id"`
	TargetID string         `json:"target_id"`
	Position types.Position `json:"position"`
}

// DragStartRequest picks up a node.
type DragStartRequest struct {
	NodeID string `json:"node_id"`
}

// DropZoneRequest names a drop zone.
type DropZoneRequest struct {
	TargetID string         `json:"target_id"`
	Position types.Position `json:"position"`
}

// DragOverResponse says whether the zone accepts the dragged node.
type DragOverResponse struct {
	Allowed bool             `json:"allowed"`
	Drag    editor.DragState `json:"drag"`
}

// SelectionRequest selects a node; an empty id clears the selection.
type SelectionRequest struct {
	NodeID string `json:"node_id"`
}

// AddableResponse describes what a node kind may hold.
type AddableResponse struct {
	Type      types.NodeType   `json:"type"`
	Addable   []types.NodeType `json:"addable"`
	Removable bool             `json:"removable"`
	Draggable bool             `json:"draggable"`
}

// LintResponse lists diagnostics for a document.
type LintResponse struct {
	Diagnostics []lint.Diagnostic `json:"diagnostics"`
	Errors      int               `json:"errors"`
	Warnings    int               `json:"warnings"`
}
