package expression

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

func drawOperand(t *rapid.T) Node {
	switch rapid.IntRange(0, 4).Draw(t, "operand") {
	case 0:
		return &VariableNode{Name: rapid.StringMatching(`[a-z][a-z0-9_]{0,6}(\.[a-z]{1,4})?`).Draw(t, "var")}
	case 1:
		return &LiteralNode{Value: rapid.Int64().Draw(t, "int")}
	case 2:
		return &LiteralNode{Value: rapid.StringMatching(`[A-Za-z0-9 ]{0,8}`).Draw(t, "str")}
	case 3:
		return &LiteralNode{Value: rapid.Bool().Draw(t, "bool")}
	}
	return &LiteralNode{Value: nil}
}

func drawCondition(t *rapid.T, depth int) Node {
	kind := 0
	if depth < 4 {
		kind = rapid.IntRange(0, 3).Draw(t, "kind")
	}
	switch kind {
	case 1:
		op := rapid.SampledFrom([]string{"==", "!=", "<", ">", "<=", ">="}).Draw(t, "cmp")
		return &ComparisonNode{Left: drawOperand(t), Operator: op, Right: drawOperand(t)}
	case 2:
		op := rapid.SampledFrom([]string{"AND", "OR"}).Draw(t, "logic")
		return &LogicalNode{Left: drawCondition(t, depth+1), Operator: op, Right: drawCondition(t, depth+1)}
	case 3:
		return &NotNode{Operand: drawCondition(t, depth+1)}
	}
	return drawOperand(t)
}

// TestProperty_CanonicalFormIsStable checks that the canonical rendering of
// any condition parses back to a condition with the same rendering.
func TestProperty_CanonicalFormIsStable(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := drawCondition(t, 0).String()

		expr, err := Parse(text)
		if err != nil {
			t.Fatalf("parse %q: %v", text, err)
		}
		if got := expr.String(); got != text {
			t.Fatalf("canonical form changed:\n  %s\n  %s", text, got)
		}
	})
}

// TestProperty_ReferencesMatchScan checks that a condition built only from
// variables reports the same names as a plain text scan.
func TestProperty_ReferencesMatchScan(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		names := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,5}`), 1, 5).Draw(t, "names")
		text := ""
		for i, n := range names {
			if i > 0 {
				text += " OR "
			}
			text += fmt.Sprintf("${%s} == 1", n)
		}

		expr, err := Parse(text)
		if err != nil {
			t.Fatalf("parse %q: %v", text, err)
		}
		if fmt.Sprint(expr.References()) != fmt.Sprint(ScanReferences(text)) {
			t.Fatalf("%v != %v", expr.References(), ScanReferences(text))
		}
	})
}
