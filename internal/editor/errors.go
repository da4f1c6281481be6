package editor

import (
	"errors"
	"fmt"

	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

var (
	// ErrNoTree is returned by tree edits while the text does not parse.
	ErrNoTree = errors.New("document has no tree: fix the text first")
	// ErrNodeNotFound is returned when an id is not in the current tree.
	ErrNodeNotFound = errors.New("node not found")
	// ErrNotDragging is returned by Drop without a prior StartDrag.
	ErrNotDragging = errors.New("no drag in progress")
)

// PlacementError reports an add, remove or move the placement rules reject.
type PlacementError struct {
	Op       string
	Node     types.NodeType
	Target   types.NodeType
	Position types.Position
}

func (e *PlacementError) Error() string {
	switch {
	case e.Op == "remove":
		return fmt.Sprintf("%s nodes cannot be removed", e.Node)
	case e.Position == "":
		return fmt.Sprintf("cannot %s %s under %s", e.Op, e.Node, e.Target)
	}
	return fmt.Sprintf("cannot %s %s %s %s", e.Op, e.Node, e.Position, e.Target)
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}
