package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
)

// Node is one element of the editor tree.
//
// Nodes are treated as immutable values: mutations build new nodes along the
// changed path and share untouched subtrees with the previous tree.
type Node struct {
	ID       string
	Type     NodeType
	Name     string
	Payload  Payload
	Children []*Node // nil for kinds that cannot hold children
	Expanded bool
	Path     Path
}

// Data returns the generic view of the node's payload.
func (n *Node) Data() *document.Map {
	if n == nil || n.Payload == nil {
		return document.NewMap()
	}
	return n.Payload.Data()
}

// Enabled reports whether the node is enabled. Nodes without an explicit
// enabled flag are enabled.
func (n *Node) Enabled() bool {
	v, ok := n.Data().Get("enabled")
	if !ok {
		return true
	}
	b, isBool := v.(bool)
	return !isBool || b
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool {
	return n != nil && len(n.Children) > 0
}

// Clone returns a shallow copy: a new Node with its own Children slice that
// still points at the same child nodes.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := *n
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		copy(out.Children, n.Children)
	}
	out.Path = n.Path.Clone()
	return &out
}

// DeepClone copies the whole subtree, ids included.
func (n *Node) DeepClone() *Node {
	if n == nil {
		return nil
	}
	out := n.Clone()
	for i, c := range n.Children {
		out.Children[i] = c.DeepClone()
	}
	return out
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total
}

// ChildrenOfType returns the direct children with the given type.
func (n *Node) ChildrenOfType(t NodeType) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct child of type t.
func (n *Node) FirstChild(t NodeType) *Node {
	for _, c := range n.Children {
		if c.Type == t {
			return c
		}
	}
	return nil
}

// String implements fmt.Stringer.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s(%s %q)", n.Type, n.ID, n.Name)
}

// nodeJSON is the wire shape exposed to the detail panel and the REST API.
type nodeJSON struct {
	ID       string        `json:"id"`
	Type     NodeType      `json:"type"`
	Name     string        `json:"name"`
	Data     *document.Map `json:"data"`
	Children []*Node       `json:"children,omitempty"`
	Expanded bool          `json:"expanded"`
	Path     string        `json:"path,omitempty"`
	Leaf     bool          `json:"leaf,omitempty"`
}

// MarshalJSON renders the node with its payload flattened into "data".
func (n *Node) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(nodeJSON{
		ID:       n.ID,
		Type:     n.Type,
		Name:     n.Name,
		Data:     n.Data(),
		Children: n.Children,
		Expanded: n.Expanded,
		Path:     n.Path.String(),
		Leaf:     n.Children == nil,
	})
}

// Path is the breadcrumb of keys and indices that led to a node in the source
// document. It is advisory metadata only.
type Path []any

// Append returns a new path with the given elements appended.
func (p Path) Append(elems ...any) Path {
	out := make(Path, 0, len(p)+len(elems))
	out = append(out, p...)
	return append(out, elems...)
}

// Clone copies the path.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// String renders the path as "scenarios[0].steps[2]".
func (p Path) String() string {
	var b strings.Builder
	for _, elem := range p {
		switch e := elem.(type) {
		case int:
			b.WriteString("[" + strconv.Itoa(e) + "]")
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(fmt.Sprint(e))
		}
	}
	return b.String()
}
