package tree

import (
	"github.com/duke-git/lancet/v2/strutil"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// NameField is the reserved data key that carries a new display name through
// UpdateData. It is never stored.
const NameField = "__name"

// update rebuilds the path from root to the node with the given id, replacing
// that node with fn's result. Untouched subtrees are shared. When the node is
// missing or fn returns it unchanged, root itself is returned.
func update(root *types.Node, id string, fn func(n *types.Node) *types.Node) *types.Node {
	out, _ := updateRec(root, id, fn)
	return out
}

func updateRec(n *types.Node, id string, fn func(*types.Node) *types.Node) (*types.Node, bool) {
	if n == nil {
		return n, false
	}
	if n.ID == id {
		out := fn(n)
		return out, out != n
	}
	for i, c := range n.Children {
		nc, changed := updateRec(c, id, fn)
		if changed {
			cp := n.Clone()
			cp.Children[i] = nc
			return cp, true
		}
	}
	return n, false
}

// ToggleExpanded flips the expanded flag of one node.
func ToggleExpanded(root *types.Node, id string) *types.Node {
	return update(root, id, func(n *types.Node) *types.Node {
		cp := n.Clone()
		cp.Expanded = !n.Expanded
		return cp
	})
}

// SetExpanded sets the expanded flag of one node.
func SetExpanded(root *types.Node, id string, expanded bool) *types.Node {
	return update(root, id, func(n *types.Node) *types.Node {
		if n.Expanded == expanded {
			return n
		}
		cp := n.Clone()
		cp.Expanded = expanded
		return cp
	})
}

// UpdateEnabled sets data.enabled on one node. Its children are untouched.
func UpdateEnabled(root *types.Node, id string, enabled bool) *types.Node {
	return update(root, id, func(n *types.Node) *types.Node {
		data := n.Data()
		data.Set("enabled", enabled)
		return withPayload(n, types.ReplaceData(n.Payload, n.Type, data), n.Name)
	})
}

// UpdateData replaces the data of one node. A NameField entry renames the
// node and is stripped before the data is stored. Data is never merged: the
// caller sends the whole object.
func UpdateData(root *types.Node, id string, data *document.Map) *types.Node {
	if data == nil {
		return root
	}
	return update(root, id, func(n *types.Node) *types.Node {
		clean := data.Without(NameField)
		payload := types.ReplaceData(n.Payload, n.Type, clean)

		name := n.Name
		if v, ok := data.GetString(NameField); ok && !strutil.IsBlank(v) {
			name = v
			payload = types.WithName(payload, v)
		} else if n.Name == derivedName(n.Type, n.Payload) {
			// Derived names follow the data they were derived from.
			name = types.DefaultName(n.Type, payload)
		} else if _, ok := payload.(types.VerbPayload); ok && !clean.Has("name") {
			payload = types.WithName(payload, n.Name)
		}
		return withPayload(n, payload, name)
	})
}

// derivedName is the name a node gets from its data alone. A verb step's own
// name entry does not count.
func derivedName(t types.NodeType, p types.Payload) string {
	if v, ok := p.(types.VerbPayload); ok {
		v.Extra = v.Extra.Without("name")
		return types.DefaultName(t, v)
	}
	return types.DefaultName(t, p)
}

// Rename sets the display name of one node and, for kinds that carry their
// own name attribute, that attribute too so both stay in agreement.
func Rename(root *types.Node, id, name string) *types.Node {
	if strutil.IsBlank(name) {
		return root
	}
	return update(root, id, func(n *types.Node) *types.Node {
		return withPayload(n, types.WithName(n.Payload, name), name)
	})
}

// withPayload returns n unchanged when neither data nor name differ.
func withPayload(n *types.Node, payload types.Payload, name string) *types.Node {
	if name == n.Name && document.Equal(payload.Data(), n.Data()) {
		return n
	}
	cp := n.Clone()
	cp.Payload = payload
	cp.Name = name
	return cp
}

// AddChild appends child to the children of parentID and expands the parent
// so the child is visible. A child whose id already exists in the tree is
// rejected.
func AddChild(root *types.Node, parentID string, child *types.Node) *types.Node {
	if child == nil {
		return root
	}
	for _, id := range IDs(child) {
		if Contains(root, id) {
			return root
		}
	}
	return update(root, parentID, func(n *types.Node) *types.Node {
		return appendChild(n, child)
	})
}

func appendChild(n, child *types.Node) *types.Node {
	cp := n.Clone()
	if cp.Children == nil {
		cp.Children = []*types.Node{}
	}
	cp.Children = append(cp.Children, child)
	cp.Expanded = true
	return cp
}

// Remove deletes a node and its subtree. The root cannot be removed.
func Remove(root *types.Node, id string) *types.Node {
	if root == nil || root.ID == id {
		return root
	}
	parent := FindParent(root, id)
	if parent == nil {
		return root
	}
	return update(root, parent.ID, func(n *types.Node) *types.Node {
		idx := IndexOf(n, id)
		cp := n.Clone()
		cp.Children = append(cp.Children[:idx:idx], cp.Children[idx+1:]...)
		return cp
	})
}

// Move relocates the subtree rooted at id relative to targetID. It is a no-op
// when id and targetID are the same node, when the target lies inside the
// moved subtree, when either node is missing, or when a before/after target
// has no parent.
func Move(root *types.Node, id, targetID string, pos types.Position) *types.Node {
	if root == nil || id == targetID || id == root.ID || !pos.Valid() {
		return root
	}
	node := Find(root, id)
	if node == nil || Contains(node, targetID) {
		return root
	}

	moved := node.DeepClone()
	excised := Remove(root, id)
	if excised == root || !Contains(excised, targetID) {
		return root
	}

	if pos == types.PositionInside {
		return update(excised, targetID, func(n *types.Node) *types.Node {
			return appendChild(n, moved)
		})
	}

	parent := FindParent(excised, targetID)
	if parent == nil {
		return root
	}
	return update(excised, parent.ID, func(n *types.Node) *types.Node {
		idx := IndexOf(n, targetID)
		if pos == types.PositionAfter {
			idx++
		}
		cp := n.Clone()
		children := make([]*types.Node, 0, len(cp.Children)+1)
		children = append(children, cp.Children[:idx]...)
		children = append(children, moved)
		children = append(children, cp.Children[idx:]...)
		cp.Children = children
		return cp
	})
}
