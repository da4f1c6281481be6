package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// mk builds a node with default payload for its kind.
func mk(id string, t types.NodeType, children ...*types.Node) *types.Node {
	payload := types.DecodePayload(t, DefaultData(t))
	n := &types.Node{ID: id, Type: t, Payload: payload, Expanded: false}
	n.Name = types.DefaultName(t, payload)
	if t.CanHaveChildren() {
		n.Children = append([]*types.Node{}, children...)
	}
	return n
}

// sample is root > scenarios > scenario > steps > [A, B, C] where B is a loop
// holding D.
func sample() *types.Node {
	return mk("root", types.TypeTest,
		mk("scs", types.TypeScenarios,
			mk("sc", types.TypeScenario,
				mk("steps", types.TypeSteps,
					mk("A", types.TypeGet),
					mk("B", types.TypeLoop, mk("D", types.TypePost)),
					mk("C", types.TypeRequest),
				),
			),
		),
	)
}

func childIDs(n *types.Node) []string {
	var ids []string
	for _, c := range n.Children {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestFindAndParent(t *testing.T) {
	root := sample()
	assert.Equal(t, "D", Find(root, "D").ID)
	assert.Nil(t, Find(root, "missing"))
	assert.Equal(t, "B", FindParent(root, "D").ID)
	assert.Nil(t, FindParent(root, "root"))
	assert.True(t, Contains(Find(root, "B"), "D"))
	assert.False(t, Contains(Find(root, "A"), "D"))
	assert.Equal(t, 1, IndexOf(Find(root, "steps"), "B"))
	assert.Equal(t, []string{"root", "scs", "sc", "steps", "A", "B", "D", "C"}, IDs(root))
}

func TestWalk_SkipChildren(t *testing.T) {
	var seen []string
	Walk(sample(), func(n *types.Node, depth int) bool {
		seen = append(seen, n.ID)
		return n.Type != types.TypeLoop
	})
	assert.NotContains(t, seen, "D")
	assert.Contains(t, seen, "C")
}

func TestToggleExpanded(t *testing.T) {
	root := sample()
	out := ToggleExpanded(root, "B")

	assert.True(t, Find(out, "B").Expanded)
	assert.False(t, Find(root, "B").Expanded, "input is untouched")
	assert.False(t, Find(out, "A").Expanded)
	assert.Same(t, Find(root, "A"), Find(out, "A"), "untouched subtrees are shared")
	assert.Same(t, root, ToggleExpanded(root, "missing"))
}

func TestUpdateEnabled(t *testing.T) {
	root := sample()
	out := UpdateEnabled(root, "B", false)

	assert.False(t, Find(out, "B").Enabled())
	assert.True(t, Find(out, "D").Enabled(), "children are not affected")
	assert.True(t, Find(root, "B").Enabled())
	assert.Equal(t, 3, Find(out, "B").Data().Value("count"))

	assert.Same(t, out, UpdateEnabled(out, "B", false), "same value is a no-op")
	assert.Same(t, root, UpdateEnabled(root, "steps", false), "containers carry no data")
}

func TestUpdateData(t *testing.T) {
	root := sample()

	t.Run("whole object replacement", func(t *testing.T) {
		out := UpdateData(root, "C", document.MapOf("method", "POST", "url", "/orders"))
		c := Find(out, "C")
		assert.Equal(t, []string{"method", "url"}, c.Data().Keys())
		assert.Equal(t, "POST: /orders", c.Name, "derived names follow the data")
	})

	t.Run("reserved name field", func(t *testing.T) {
		out := UpdateData(root, "C", document.MapOf(NameField, "Checkout", "method", "GET", "url", "/a"))
		c := Find(out, "C")
		assert.Equal(t, "Checkout", c.Name)
		assert.False(t, c.Data().Has(NameField))
		assert.Equal(t, "Checkout", c.Data().Value("name"))
	})

	t.Run("no merge", func(t *testing.T) {
		out := UpdateData(root, "B", document.MapOf("count", 7))
		assert.Equal(t, "Loop (7x)", Find(out, "B").Name)
		out = UpdateData(out, "B", document.NewMap())
		assert.False(t, Find(out, "B").Data().Has("count"))
	})

	t.Run("custom names are kept", func(t *testing.T) {
		out := Rename(root, "A", "Health check")
		out = UpdateData(out, "A", document.MapOf("url", "/status"))
		assert.Equal(t, "Health check", Find(out, "A").Name)
		assert.Equal(t, "Health check", Find(out, "A").Data().Value("name"))
	})

	t.Run("verb name in data renames", func(t *testing.T) {
		out := UpdateData(root, "A", document.MapOf("url", "/health", "name", "Ping"))
		assert.Equal(t, "Ping", Find(out, "A").Name)
	})

	t.Run("nil data", func(t *testing.T) {
		assert.Same(t, root, UpdateData(root, "C", nil))
	})
}

func TestRename(t *testing.T) {
	root := sample()
	out := Rename(root, "sc", "Buyers")
	sc := Find(out, "sc")
	assert.Equal(t, "Buyers", sc.Name)
	assert.Equal(t, "Buyers", sc.Data().Value("name"))

	assert.Same(t, root, Rename(root, "sc", "  "))

	out = Rename(root, "A", "Health check")
	assert.Equal(t, "Health check", Find(out, "A").Name)
	assert.Equal(t, "Health check", Find(out, "A").Data().Value("name"))
	assert.Same(t, out, Rename(out, "sc", "Buyers"))
}

func TestAddChild(t *testing.T) {
	root := sample()
	child := mk("E", types.TypeThinkTime)

	out := AddChild(root, "steps", child)
	steps := Find(out, "steps")
	assert.Equal(t, []string{"A", "B", "C", "E"}, childIDs(steps))
	assert.True(t, steps.Expanded)
	assert.Len(t, Find(root, "steps").Children, 3)

	t.Run("creates the children slice", func(t *testing.T) {
		leaf := mk("root", types.TypeTest)
		leaf.Children = nil
		out := AddChild(leaf, "root", mk("v", types.TypeVariables))
		assert.Len(t, out.Children, 1)
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		assert.Same(t, root, AddChild(root, "steps", mk("A", types.TypeGet)))
	})

	t.Run("unknown parent", func(t *testing.T) {
		assert.Same(t, root, AddChild(root, "missing", mk("Z", types.TypeGet)))
	})
}

func TestRemove(t *testing.T) {
	root := sample()

	out := Remove(root, "B")
	assert.Equal(t, []string{"A", "C"}, childIDs(Find(out, "steps")))
	assert.Nil(t, Find(out, "D"))
	assert.NotNil(t, Find(root, "D"))

	assert.Same(t, root, Remove(root, "root"), "root is never removed")
	assert.Same(t, root, Remove(root, "missing"))

	out = Remove(root, "sc")
	for _, id := range []string{"sc", "steps", "A", "B", "C", "D"} {
		assert.Nil(t, Find(out, id), id)
	}
	assert.NotNil(t, Find(out, "scs"))
}

func TestMove(t *testing.T) {
	root := sample()

	t.Run("after next sibling", func(t *testing.T) {
		out := Move(root, "A", "B", types.PositionAfter)
		assert.Equal(t, []string{"B", "A", "C"}, childIDs(Find(out, "steps")))
	})

	t.Run("before", func(t *testing.T) {
		out := Move(root, "C", "A", types.PositionBefore)
		assert.Equal(t, []string{"C", "A", "B"}, childIDs(Find(out, "steps")))
	})

	t.Run("onto itself", func(t *testing.T) {
		assert.Same(t, root, Move(root, "A", "A", types.PositionAfter))
	})

	t.Run("inside re-parents and expands", func(t *testing.T) {
		out := Move(root, "A", "B", types.PositionInside)
		b := Find(out, "B")
		assert.Equal(t, []string{"D", "A"}, childIDs(b))
		assert.True(t, b.Expanded)
		assert.Equal(t, []string{"B", "C"}, childIDs(Find(out, "steps")))
	})

	t.Run("into own descendant", func(t *testing.T) {
		assert.Same(t, root, Move(root, "B", "D", types.PositionInside))
		assert.Same(t, root, Move(root, "sc", "A", types.PositionAfter))
	})

	t.Run("missing nodes", func(t *testing.T) {
		assert.Same(t, root, Move(root, "missing", "A", types.PositionAfter))
		assert.Same(t, root, Move(root, "A", "missing", types.PositionAfter))
	})

	t.Run("beside the root", func(t *testing.T) {
		assert.Same(t, root, Move(root, "A", "root", types.PositionBefore))
	})

	t.Run("bad position", func(t *testing.T) {
		assert.Same(t, root, Move(root, "A", "B", types.Position("sideways")))
	})

	t.Run("keeps ids", func(t *testing.T) {
		out := Move(root, "B", "C", types.PositionInside)
		assert.Equal(t, "D", Find(out, "B").Children[0].ID)
		assert.ElementsMatch(t, IDs(root), IDs(out))
	})
}

func TestNewNode(t *testing.T) {
	n, err := NewNode(types.TypeRequest)
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, "GET: https://api.example.com/endpoint", n.Name)
	assert.NotNil(t, n.Children)
	assert.True(t, n.Expanded)

	sc, err := NewNode(types.TypeScenario)
	require.NoError(t, err)
	assert.Equal(t, "New Scenario", sc.Name)
	require.Len(t, sc.Children, 1)
	assert.Equal(t, types.TypeSteps, sc.Children[0].Type)

	after, err := NewNode(types.TypeSparkAfter)
	require.NoError(t, err)
	assert.Equal(t, "after", after.Data().Value("when"))

	leaf, err := NewNode(types.TypeAssertion)
	require.NoError(t, err)
	assert.Nil(t, leaf.Children)

	_, err = NewNode("bogus")
	assert.Error(t, err)

	other, err := NewNode(types.TypeRequest)
	require.NoError(t, err)
	assert.NotEqual(t, n.ID, other.ID)
}

func TestDefaultData(t *testing.T) {
	for _, typ := range types.AllTypes() {
		assert.NotNil(t, DefaultData(typ), typ)
	}
	assert.Equal(t, 3, DefaultData(types.TypeLoop).Value("count"))
	assert.Equal(t, "${status} == 200", DefaultData(types.TypeIf).Value("condition"))
}
