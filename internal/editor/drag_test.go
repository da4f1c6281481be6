package editor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relampo/relampo-yml-editor-sub000/internal/tree"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

const dragDoc = `scenarios:
  - name: S1
    steps:
      - get: /a
      - loop: 2
        steps:
          - get: /b
      - think_time: 1s
`

func TestDrag_HappyPath(t *testing.T) {
	s := newShell(t, dragDoc)
	get := first(t, s, types.TypeGet)
	loop := first(t, s, types.TypeLoop)

	require.NoError(t, s.StartDrag(get.ID))
	assert.True(t, s.Drag().Active())
	assert.Equal(t, get.ID, s.Drag().Dragged)

	assert.True(t, s.DragOver(loop.ID, types.PositionInside))
	assert.Equal(t, loop.ID, s.Drag().Over)
	assert.Equal(t, types.PositionInside, s.Drag().Position)
	require.NotNil(t, s.Snapshot().Drag)

	changed, err := s.Drop(loop.ID, types.PositionInside)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, s.Drag().Active())

	movedLoop := tree.Find(s.Tree(), loop.ID)
	require.Len(t, movedLoop.Children, 2)
	assert.Equal(t, get.ID, movedLoop.Children[1].ID)
}

func TestDragOver_IllegalZoneClearsHighlight(t *testing.T) {
	s := newShell(t, dragDoc)
	get := first(t, s, types.TypeGet)
	loop := first(t, s, types.TypeLoop)
	think := first(t, s, types.TypeThinkTime)

	require.NoError(t, s.StartDrag(get.ID))
	require.True(t, s.DragOver(loop.ID, types.PositionBefore))

	assert.False(t, s.DragOver(think.ID, types.PositionInside))
	assert.Equal(t, "", s.Drag().Over)
	assert.True(t, s.Drag().Active(), "the dragged node stays picked up")

	assert.False(t, s.DragOver(get.ID, types.PositionAfter), "a node is not a drop zone for itself")
	assert.False(t, s.DragOver("missing", types.PositionAfter))
}

func TestDragOver_SiblingZoneFollowsTargetParent(t *testing.T) {
	s := newShell(t, dragDoc)
	get := first(t, s, types.TypeGet)
	think := first(t, s, types.TypeThinkTime)
	header, err := s.AddChild(get.ID, types.TypeHeader)
	require.NoError(t, err)
	before := s.Text()

	require.NoError(t, s.StartDrag(header.ID))
	assert.False(t, s.DragOver(think.ID, types.PositionBefore))
	assert.False(t, s.DragOver(think.ID, types.PositionAfter))
	assert.True(t, s.DragOver(get.ID, types.PositionInside))

	_, err = s.Drop(think.ID, types.PositionAfter)
	var pe *PlacementError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, before, s.Text())
}

func TestDrop_RejectedStillClears(t *testing.T) {
	s := newShell(t, dragDoc)
	get := first(t, s, types.TypeGet)
	think := first(t, s, types.TypeThinkTime)
	before := s.Text()

	require.NoError(t, s.StartDrag(get.ID))
	_, err := s.Drop(think.ID, types.PositionInside)

	var pe *PlacementError
	require.True(t, errors.As(err, &pe))
	assert.False(t, s.Drag().Active())
	assert.Equal(t, before, s.Text())
}

func TestDrop_IntoOwnSubtreeIsNoOp(t *testing.T) {
	s := newShell(t, dragDoc)
	loop := first(t, s, types.TypeLoop)
	inner := tree.Find(s.Tree(), loop.ID).Children[0]

	require.NoError(t, s.StartDrag(loop.ID))
	changed, err := s.Drop(inner.ID, types.PositionAfter)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, s.Drag().Active())
}

func TestDrag_Errors(t *testing.T) {
	s := newShell(t, dragDoc)
	steps := first(t, s, types.TypeSteps)

	_, err := s.Drop(steps.ID, types.PositionInside)
	assert.ErrorIs(t, err, ErrNotDragging)

	var pe *PlacementError
	require.True(t, errors.As(s.StartDrag(steps.ID), &pe))
	assert.False(t, s.Drag().Active())

	assert.ErrorIs(t, s.StartDrag("missing"), ErrNodeNotFound)
	assert.False(t, s.DragOver(steps.ID, types.PositionInside))
}

func TestDrag_ClearedWhenNodeVanishes(t *testing.T) {
	s := newShell(t, dragDoc)
	require.NoError(t, s.StartDrag(first(t, s, types.TypeThinkTime).ID))

	require.NoError(t, s.EditText("scenarios:\n  - name: S1\n    steps:\n      - get: /a\n"))
	assert.False(t, s.Drag().Active())

	require.NoError(t, s.StartDrag(first(t, s, types.TypeGet).ID))
	s.EndDrag()
	assert.Equal(t, DragState{}, s.Drag())
}
