// Package editor keeps a YAML test definition and its tree in lockstep.
//
// A Shell owns the current text, the tree parsed from it and the selection.
// Text edits re-parse and replace the tree; tree edits re-serialize and
// replace the text. A Shell is not safe for concurrent use.
package editor

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/internal/parser"
	"github.com/relampo/relampo-yml-editor-sub000/internal/placement"
	"github.com/relampo/relampo-yml-editor-sub000/internal/tree"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/logger"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// Shell is one open document.
type Shell struct {
	text     string
	root     *types.Node
	err      error
	warnings []parser.Warning
	selected string
	drag     DragState

	indent int
	log    *zap.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithIndent sets the indentation used when the tree is written back.
func WithIndent(n int) Option {
	return func(s *Shell) {
		s.indent = n
	}
}

// WithLogger sets the shell logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Shell) {
		s.log = l
	}
}

// New creates a shell holding an empty document.
func New(opts ...Option) *Shell {
	s := &Shell{indent: document.DefaultIndent}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("editor")
	}
	_ = s.EditText("")
	return s
}

// Text returns the current text. After a failed parse it is the text the
// user typed; after a failed serialize it is the last good text.
func (s *Shell) Text() string { return s.text }

// Tree returns the current tree, or nil while the text does not parse.
func (s *Shell) Tree() *types.Node { return s.root }

// Err returns the error of the last parse, or nil.
func (s *Shell) Err() error { return s.err }

// Warnings returns what the last successful parse noticed but accepted.
func (s *Shell) Warnings() []parser.Warning {
	out := make([]parser.Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// EditText replaces the text and rebuilds the tree from it. On a parse
// error the tree becomes nil and the error is returned and kept in Err.
func (s *Shell) EditText(text string) error {
	s.text = text
	b := parser.NewTreeBuilder()
	root, err := b.Parse([]byte(text))
	if err != nil {
		s.root = nil
		s.warnings = nil
		s.err = err
		s.log.Warn("parse failed", zap.Int("bytes", len(text)), zap.Error(err))
		s.reconcile()
		return err
	}

	s.root = root
	s.err = nil
	s.warnings = b.Warnings()
	for _, w := range s.warnings {
		s.log.Debug("parse warning", zap.String("path", w.Path), zap.String("message", w.Message))
	}
	s.log.Debug("tree rebuilt", zap.Int("nodes", root.Count()))
	s.reconcile()
	return nil
}

// reconcile drops selection and drag state that point at vanished nodes.
func (s *Shell) reconcile() {
	if s.selected != "" && !tree.Contains(s.root, s.selected) {
		s.selected = ""
	}
	if s.drag.Active() && !tree.Contains(s.root, s.drag.Dragged) {
		s.drag = DragState{}
	}
}

// apply runs a pure tree mutation and re-serializes. A mutation that
// returns the same root is a no-op and reports false. If the new tree
// cannot be serialized the edit is rejected and both views stay as they were.
func (s *Shell) apply(op string, fn func(root *types.Node) *types.Node) (bool, error) {
	if s.root == nil {
		return false, ErrNoTree
	}
	next := fn(s.root)
	if next == s.root {
		s.log.Debug("no-op edit", zap.String("op", op))
		return false, nil
	}

	data, err := parser.NewTreePrinter().WithIndent(s.indent).Print(next)
	if err != nil {
		s.log.Error("serialize failed", zap.String("op", op), zap.Error(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	s.root = next
	s.text = string(data)
	s.reconcile()
	s.log.Debug("tree edited", zap.String("op", op), zap.Int("bytes", len(s.text)))
	return true, nil
}

func (s *Shell) node(id string) (*types.Node, error) {
	if s.root == nil {
		return nil, ErrNoTree
	}
	n := tree.Find(s.root, id)
	if n == nil {
		return nil, notFound(id)
	}
	return n, nil
}

// ToggleExpanded flips the expanded flag of a node.
func (s *Shell) ToggleExpanded(id string) (bool, error) {
	if _, err := s.node(id); err != nil {
		return false, err
	}
	return s.apply("toggle", func(root *types.Node) *types.Node {
		return tree.ToggleExpanded(root, id)
	})
}

// SetEnabled sets data.enabled on a node.
func (s *Shell) SetEnabled(id string, enabled bool) (bool, error) {
	if _, err := s.node(id); err != nil {
		return false, err
	}
	return s.apply("enabled", func(root *types.Node) *types.Node {
		return tree.UpdateEnabled(root, id, enabled)
	})
}

// UpdateNodeData replaces a node's data as a whole. The reserved __name key
// renames the node.
func (s *Shell) UpdateNodeData(id string, data *document.Map) (bool, error) {
	if _, err := s.node(id); err != nil {
		return false, err
	}
	if data == nil {
		data = document.NewMap()
	}
	return s.apply("update", func(root *types.Node) *types.Node {
		return tree.UpdateData(root, id, data)
	})
}

// Rename sets a node's display name.
func (s *Shell) Rename(id, name string) (bool, error) {
	if _, err := s.node(id); err != nil {
		return false, err
	}
	return s.apply("rename", func(root *types.Node) *types.Node {
		return tree.Rename(root, id, name)
	})
}

// AddChild appends a new node of kind t with default data under parentID
// and returns it.
func (s *Shell) AddChild(parentID string, t types.NodeType) (*types.Node, error) {
	parent, err := s.node(parentID)
	if err != nil {
		return nil, err
	}
	if !placement.CanContain(parent.Type, t) {
		return nil, &PlacementError{Op: "add", Node: t, Target: parent.Type}
	}
	child, err := tree.NewNode(t)
	if err != nil {
		return nil, err
	}
	if _, err := s.apply("add", func(root *types.Node) *types.Node {
		return tree.AddChild(root, parentID, child)
	}); err != nil {
		return nil, err
	}
	s.log.Info("node added", zap.String("type", string(t)), zap.String("parent", parentID), zap.String("id", child.ID))
	return child, nil
}

// Remove deletes a node and its subtree.
func (s *Shell) Remove(id string) (bool, error) {
	n, err := s.node(id)
	if err != nil {
		return false, err
	}
	if !placement.Removable(n.Type) {
		return false, &PlacementError{Op: "remove", Node: n.Type}
	}
	return s.apply("remove", func(root *types.Node) *types.Node {
		return tree.Remove(root, id)
	})
}

// Move relocates a node relative to targetID when the placement rules allow
// it.
func (s *Shell) Move(id, targetID string, pos types.Position) (bool, error) {
	n, err := s.node(id)
	if err != nil {
		return false, err
	}
	target, err := s.node(targetID)
	if err != nil {
		return false, err
	}
	if !s.legalDrop(n, target, pos) {
		return false, &PlacementError{Op: "move", Node: n.Type, Target: target.Type, Position: pos}
	}
	return s.apply("move", func(root *types.Node) *types.Node {
		return tree.Move(root, id, targetID, pos)
	})
}

// legalDrop reports whether n may land at pos relative to target. A sibling
// drop must also suit the parent the target actually sits in.
func (s *Shell) legalDrop(n, target *types.Node, pos types.Position) bool {
	if !placement.CanDrop(n.Type, target.Type, pos) {
		return false
	}
	if pos == types.PositionInside {
		return true
	}
	parent := tree.FindParent(s.root, target.ID)
	return parent != nil && placement.CanContain(parent.Type, n.Type)
}

// Select makes id the selected node; "" clears the selection.
func (s *Shell) Select(id string) error {
	if id == "" {
		s.selected = ""
		return nil
	}
	if _, err := s.node(id); err != nil {
		return err
	}
	s.selected = id
	return nil
}

// Selected returns the selected node id, or "".
func (s *Shell) Selected() string { return s.selected }

// SelectedNode returns the selected node, or nil.
func (s *Shell) SelectedNode() *types.Node {
	if s.selected == "" || s.root == nil {
		return nil
	}
	return tree.Find(s.root, s.selected)
}

// Upload replaces the document with the contents of r.
func (s *Shell) Upload(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	return s.EditText(string(data))
}

// Download writes the current text to w.
func (s *Shell) Download(w io.Writer) error {
	if _, err := io.WriteString(w, s.text); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// LoadFile opens a document from disk. A parse error is returned after the
// text has been loaded, so the shell shows the broken text.
func (s *Shell) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	if err := s.Upload(f); err != nil {
		return err
	}
	s.log.Info("document loaded", zap.String("path", path), zap.Int("nodes", s.root.Count()))
	return nil
}

// SaveFile writes the current text to disk.
func (s *Shell) SaveFile(path string) error {
	if err := os.WriteFile(path, []byte(s.text), 0o644); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	s.log.Info("document saved", zap.String("path", path))
	return nil
}

// State is a snapshot of the shell for API responses.
type State struct {
	Text     string      `json:"text"`
	Tree     *types.Node `json:"tree"`
	Error    string      `json:"error,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
	Selected string      `json:"selected,omitempty"`
	Drag     *DragState  `json:"drag,omitempty"`
}

// Snapshot returns the current state.
func (s *Shell) Snapshot() State {
	st := State{Text: s.text, Tree: s.root, Selected: s.selected}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	for _, w := range s.warnings {
		st.Warnings = append(st.Warnings, w.String())
	}
	if s.drag.Active() {
		d := s.drag
		st.Drag = &d
	}
	return st
}

// IsParseError reports whether err came from parsing document text.
func IsParseError(err error) bool {
	var pe *parser.ParseError
	return errors.As(err, &pe)
}
