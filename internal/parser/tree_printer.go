package parser

import (
	"fmt"
	"os"

	"github.com/duke-git/lancet/v2/slice"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// TreePrinter implements the Printer interface. It is the inverse of
// TreeBuilder: every form the builder accepts is written back in the shape it
// was read from, as far as the tree remembers it.
type TreePrinter struct {
	indent int
}

// NewTreePrinter creates a TreePrinter with the default indentation.
func NewTreePrinter() *TreePrinter {
	return &TreePrinter{indent: document.DefaultIndent}
}

// WithIndent sets the number of spaces per nesting level.
func (p *TreePrinter) WithIndent(n int) *TreePrinter {
	if n > 0 {
		p.indent = n
	}
	return p
}

// Print serializes a tree to YAML bytes.
func (p *TreePrinter) Print(root *types.Node) ([]byte, error) {
	if root == nil {
		return nil, NewSerializeError("", "tree is empty", nil)
	}
	if root.Type != types.TypeTest {
		return nil, NewSerializeError(root.ID, fmt.Sprintf("root must be a test node, got %s", root.Type), nil)
	}

	doc, err := printRoot(root)
	if err != nil {
		return nil, err
	}

	out, err := document.Encode(doc, p.indent)
	if err != nil {
		return nil, NewSerializeError(root.ID, "failed to encode YAML", err)
	}
	return out, nil
}

// PrintToFile serializes a tree to a file.
func (p *TreePrinter) PrintToFile(root *types.Node, path string) error {
	data, err := p.Print(root)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewSerializeError(root.ID, fmt.Sprintf("failed to write file: %s", path), err)
	}
	return nil
}

func printRoot(root *types.Node) (*document.Map, error) {
	tp, _ := root.Payload.(types.TestPayload)
	sections := document.NewMap()

	test := root.Data()
	if name, ok := nameOf(root); ok {
		test = withName(test, name)
	}
	if test.Len() > 0 || slice.Contain(tp.Layout, keyTest) {
		sections.Set(keyTest, test)
	}

	var scenarios []any
	hasScenarios := false
	for _, child := range root.Children {
		switch {
		case child.Type == types.TypeScenarios:
			hasScenarios = true
			for _, sc := range child.Children {
				if sc.Type != types.TypeScenario {
					return nil, NewSerializeError(sc.ID, fmt.Sprintf("%s cannot be placed in scenarios", sc.Type), nil)
				}
				m, err := printScenario(sc)
				if err != nil {
					return nil, err
				}
				scenarios = append(scenarios, m)
			}
		case child.Type.IsScaffolding():
			setMerged(sections, string(child.Type), rawData(child))
		default:
			return nil, NewSerializeError(child.ID, fmt.Sprintf("%s cannot be placed at the top level", child.Type), nil)
		}
	}
	if hasScenarios {
		if scenarios == nil {
			scenarios = []any{}
		}
		sections.Set(keyScenarios, scenarios)
	}

	tp.Sections.Range(func(k string, v any) bool {
		if !sections.Has(k) {
			sections.Set(k, document.Clone(v))
		}
		return true
	})

	return arrange(tp.Layout, orderTopLevel(sections)), nil
}

// orderTopLevel puts modeled sections in their canonical order, followed by
// any other sections.
func orderTopLevel(sections *document.Map) *document.Map {
	out := document.NewMap()
	for _, k := range topLevelOrder {
		if v, ok := sections.Get(k); ok {
			out.Set(k, v)
		}
	}
	sections.Range(func(k string, v any) bool {
		if !out.Has(k) {
			out.Set(k, v)
		}
		return true
	})
	return out
}

func printScenario(n *types.Node) (*document.Map, error) {
	sp, _ := n.Payload.(types.ScenarioPayload)
	sections := n.Data()
	if name, ok := nameOf(n); ok {
		sections = withName(sections, name)
	}

	var steps []any
	hasSteps := false
	for _, child := range n.Children {
		switch {
		case child.Type.IsScenarioConfig():
			setMerged(sections, string(child.Type), rawData(child))
		case child.Type == types.TypeSteps:
			hasSteps = true
			list, err := printSteps(child.Children)
			if err != nil {
				return nil, err
			}
			steps = append(steps, list...)
		default:
			return nil, NewSerializeError(child.ID, fmt.Sprintf("%s cannot be placed in a scenario", child.Type), nil)
		}
	}
	if hasSteps && (len(steps) > 0 || slice.Contain(sp.Layout, keySteps)) {
		if steps == nil {
			steps = []any{}
		}
		sections.Set(keySteps, steps)
	}

	return arrange(sp.Layout, sections), nil
}

// arrange orders sections by layout, the key order of the original mapping.
// Keys the layout does not know keep their relative order at the end.
func arrange(layout []string, sections *document.Map) *document.Map {
	out := document.NewMap()
	for _, k := range layout {
		if out.Has(k) {
			continue
		}
		if v, ok := sections.Get(k); ok {
			out.Set(k, v)
		}
	}
	sections.Range(func(k string, v any) bool {
		if !out.Has(k) {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// setMerged stores v under key. A second mapping under the same key is merged
// into the first one.
func setMerged(m *document.Map, key string, v any) {
	prev, ok := m.GetMap(key)
	next, isMap := v.(*document.Map)
	if ok && isMap {
		prev.Merge(next)
		return
	}
	m.Set(key, v)
}

// rawData is the value a node writes back verbatim: the original value of
// opaque nodes, the payload's generic view otherwise.
func rawData(n *types.Node) any {
	if op, ok := n.Payload.(types.OpaquePayload); ok {
		return document.Clone(op.Raw)
	}
	return n.Data()
}

// nameOf returns the name to write for a named kind. The node name is written
// when the user changed it; otherwise the payload's own name, if any.
func nameOf(n *types.Node) (string, bool) {
	own := ownName(n.Payload)
	if n.Name != "" && n.Name != types.DefaultName(n.Type, n.Payload) {
		return n.Name, true
	}
	if own != "" {
		return own, true
	}
	return "", false
}

func ownName(p types.Payload) string {
	switch v := p.(type) {
	case types.TestPayload:
		return v.Name
	case types.ScenarioPayload:
		return v.Name
	case types.RequestPayload:
		return v.Name
	case types.GroupPayload:
		return v.Name
	}
	return ""
}

// withName sets name on data, in front when the key is new.
func withName(data *document.Map, name string) *document.Map {
	if data.Has("name") {
		data.Set("name", name)
		return data
	}
	out := document.MapOf("name", name)
	out.Merge(data)
	return out
}
