// Package tree holds the pure operations on editor trees. Every mutator
// returns a new root and leaves its input untouched; a request that changes
// nothing returns the input root itself.
package tree

import "github.com/relampo/relampo-yml-editor-sub000/pkg/types"

// Walk visits n and its descendants depth first. Returning false from fn
// skips the children of the visited node.
func Walk(n *types.Node, fn func(n *types.Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *types.Node, depth int, fn func(*types.Node, int) bool) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Find returns the node with the given id, or nil.
func Find(root *types.Node, id string) *types.Node {
	var found *types.Node
	Walk(root, func(n *types.Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindParent returns the parent of the node with the given id. It returns nil
// for the root and for unknown ids.
func FindParent(root *types.Node, id string) *types.Node {
	if root == nil {
		return nil
	}
	for _, c := range root.Children {
		if c.ID == id {
			return root
		}
		if p := FindParent(c, id); p != nil {
			return p
		}
	}
	return nil
}

// Contains reports whether id is n itself or one of its descendants.
func Contains(n *types.Node, id string) bool {
	return Find(n, id) != nil
}

// IndexOf returns the position of the child with the given id, or -1.
func IndexOf(parent *types.Node, id string) int {
	if parent == nil {
		return -1
	}
	for i, c := range parent.Children {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// IDs returns every id in the tree in depth-first order.
func IDs(root *types.Node) []string {
	var ids []string
	Walk(root, func(n *types.Node, _ int) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}
