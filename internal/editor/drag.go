package editor

import (
	"go.uber.org/zap"

	"github.com/relampo/relampo-yml-editor-sub000/internal/placement"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// DragState is the drag-and-drop interaction in progress: the node being
// dragged and the drop zone currently highlighted.
type DragState struct {
	Dragged  string         `json:"dragged"`
	Over     string         `json:"over,omitempty"`
	Position types.Position `json:"position,omitempty"`
}

// Active reports whether a node is being dragged.
func (d DragState) Active() bool { return d.Dragged != "" }

// Drag returns the current drag state.
func (s *Shell) Drag() DragState { return s.drag }

// StartDrag picks up a node. Structural containers cannot be dragged.
func (s *Shell) StartDrag(id string) error {
	n, err := s.node(id)
	if err != nil {
		return err
	}
	if !placement.Draggable(n.Type) {
		return &PlacementError{Op: "drag", Node: n.Type}
	}
	s.drag = DragState{Dragged: id}
	return nil
}

// DragOver reports whether the dragged node may be dropped at pos relative
// to targetID and highlights that zone when it may. An illegal zone clears
// the highlight.
func (s *Shell) DragOver(targetID string, pos types.Position) bool {
	s.drag.Over, s.drag.Position = "", ""
	if !s.drag.Active() || s.root == nil {
		return false
	}
	if !s.canDrop(targetID, pos) {
		return false
	}
	s.drag.Over, s.drag.Position = targetID, pos
	return true
}

func (s *Shell) canDrop(targetID string, pos types.Position) bool {
	if targetID == s.drag.Dragged {
		return false
	}
	dragged, err := s.node(s.drag.Dragged)
	if err != nil {
		return false
	}
	target, err := s.node(targetID)
	if err != nil {
		return false
	}
	return s.legalDrop(dragged, target, pos)
}

// EndDrag abandons the drag.
func (s *Shell) EndDrag() {
	s.drag = DragState{}
}

// Drop moves the dragged node to pos relative to targetID. The drag state
// is cleared whatever the outcome.
func (s *Shell) Drop(targetID string, pos types.Position) (bool, error) {
	defer s.EndDrag()
	if !s.drag.Active() {
		return false, ErrNotDragging
	}
	id := s.drag.Dragged
	changed, err := s.Move(id, targetID, pos)
	if err != nil {
		s.log.Debug("drop rejected", zap.String("id", id), zap.String("target", targetID), zap.Error(err))
		return false, err
	}
	return changed, nil
}
