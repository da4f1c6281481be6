package expression

import (
	"strconv"
	"strings"
)

// Node is a node of a parsed condition. String renders it in canonical form.
type Node interface {
	String() string
}

// LiteralNode is a string, int64, float64, bool or nil constant.
type LiteralNode struct {
	Value any
}

func (n *LiteralNode) String() string {
	switch v := n.Value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// VariableNode is a `${name}` reference or a bare identifier.
type VariableNode struct {
	Name string
	Bare bool
}

func (n *VariableNode) String() string {
	if n.Bare {
		return n.Name
	}
	return "${" + n.Name + "}"
}

// ComparisonNode compares two operands.
type ComparisonNode struct {
	Left     Node
	Operator string // ==, !=, <, >, <=, >=
	Right    Node
}

func (n *ComparisonNode) String() string {
	return n.Left.String() + " " + n.Operator + " " + n.Right.String()
}

// LogicalNode joins two conditions with AND or OR.
type LogicalNode struct {
	Left     Node
	Operator string
	Right    Node
}

func (n *LogicalNode) String() string {
	return group(n.Left, n.Operator) + " " + n.Operator + " " + group(n.Right, n.Operator)
}

// group parenthesizes an OR operand nested under AND.
func group(n Node, parentOp string) string {
	if l, ok := n.(*LogicalNode); ok && l.Operator == "OR" && parentOp == "AND" {
		return "(" + l.String() + ")"
	}
	return n.String()
}

// NotNode negates its operand.
type NotNode struct {
	Operand Node
}

func (n *NotNode) String() string {
	switch n.Operand.(type) {
	case *LogicalNode, *ComparisonNode:
		return "NOT (" + n.Operand.String() + ")"
	}
	return "NOT " + n.Operand.String()
}

// Expression is a parsed condition.
type Expression struct {
	Source string
	Root   Node
}

// String returns the canonical form of the condition.
func (e *Expression) String() string {
	if e == nil || e.Root == nil {
		return ""
	}
	return e.Root.String()
}

// Walk visits every node depth first.
func Walk(n Node, fn func(Node)) {
	if n == nil {
		return
	}
	fn(n)
	switch v := n.(type) {
	case *ComparisonNode:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *LogicalNode:
		Walk(v.Left, fn)
		Walk(v.Right, fn)
	case *NotNode:
		Walk(v.Operand, fn)
	}
}

// References lists the `${...}` names used by the condition in first-use
// order, without duplicates. Bare identifiers are not references.
func (e *Expression) References() []string {
	var out []string
	seen := map[string]bool{}
	Walk(e.Root, func(n Node) {
		if v, ok := n.(*VariableNode); ok && !v.Bare && !seen[v.Name] {
			seen[v.Name] = true
			out = append(out, v.Name)
		}
	})
	return out
}

// RootName returns the variable a reference resolves against: the part
// before the first dot or bracket. Namespaced references such as
// `env:HOME` return the whole name.
func RootName(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.IndexAny(ref, ".["); i > 0 {
		return ref[:i]
	}
	return ref
}

// Namespace returns the prefix of a namespaced reference (`env` for
// `env:HOME`) or "".
func Namespace(ref string) string {
	if i := strings.Index(ref, ":"); i > 0 && !strings.ContainsAny(ref[:i], ".[") {
		return ref[:i]
	}
	return ""
}
