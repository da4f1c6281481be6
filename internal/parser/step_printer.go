package parser

import (
	"fmt"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

func printSteps(nodes []*types.Node) ([]any, error) {
	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		v, err := printStep(n)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// printStep is the inverse of the step rules.
func printStep(n *types.Node) (any, error) {
	switch {
	case n.Type.IsVerb():
		return printVerb(n)
	case n.Type == types.TypeRequest:
		body, err := printRequestBody(n)
		if err != nil {
			return nil, err
		}
		return document.MapOf("request", body), nil
	case n.Type == types.TypeThinkTime:
		return printThinkTime(n), nil
	case n.Type == types.TypeGroup || n.Type == types.TypeSimple:
		return printGroup(n)
	case n.Type == types.TypeIf:
		return printIf(n)
	case n.Type == types.TypeLoop:
		return printLoop(n)
	case n.Type == types.TypeRetry:
		return printRetry(n)
	case n.Type == types.TypeOnError:
		return printOnError(n)
	case n.Type.IsAssertion():
		return document.MapOf(keyAssertions, []any{rawData(n)}), nil
	case n.Type.IsExtractor():
		return document.MapOf(keyExtractors, []any{rawData(n)}), nil
	case n.Type.IsSpark():
		return document.MapOf(keySpark, sparkData(n)), nil
	}
	return rawData(n), nil
}

func printVerb(n *types.Node) (any, error) {
	vp, ok := n.Payload.(types.VerbPayload)
	if !ok {
		return rawData(n), nil
	}
	sections := document.MapOf(string(n.Type), document.Clone(vp.URL))
	sections.Merge(n.Data().Without("url"))

	children, err := printRequestChildren(n)
	if err != nil {
		return nil, err
	}
	sections.Merge(children)
	return arrange(vp.Layout, sections), nil
}

func printRequestBody(n *types.Node) (*document.Map, error) {
	rp, _ := n.Payload.(types.RequestPayload)
	sections := n.Data()
	if name, ok := nameOf(n); ok {
		sections = withName(sections, name)
	}

	children, err := printRequestChildren(n)
	if err != nil {
		return nil, err
	}
	sections.Merge(children)
	return arrange(rp.Layout, sections), nil
}

// printRequestChildren rebuilds the request sections from the child nodes, in
// canonical section order.
func printRequestChildren(n *types.Node) (*document.Map, error) {
	var (
		headers          *document.Map
		spark            []any
		extractors       []any
		extract          []*types.Node
		assertions       []any
		assert           []*types.Node
		files            []any
		thinkTime, onErr any
	)

	for _, child := range n.Children {
		switch {
		case child.Type == types.TypeHeaders:
			if headers == nil {
				headers = document.NewMap()
			}
			if m, ok := rawData(child).(*document.Map); ok {
				headers.Merge(m)
			}
			for _, h := range child.Children {
				setHeader(headers, h)
			}
		case child.Type == types.TypeHeader:
			if headers == nil {
				headers = document.NewMap()
			}
			setHeader(headers, child)
		case child.Type.IsSpark():
			spark = append(spark, sparkData(child))
		case child.Type == types.TypeExtractor:
			extractors = append(extractors, rawData(child))
		case child.Type == types.TypeExtract:
			extract = append(extract, child)
		case child.Type == types.TypeAssertion:
			assertions = append(assertions, rawData(child))
		case child.Type == types.TypeAssert:
			assert = append(assert, child)
		case child.Type == types.TypeThinkTime:
			thinkTime = inlineThinkTime(child)
		case child.Type == types.TypeOnError:
			v, err := inlineOnError(child)
			if err != nil {
				return nil, err
			}
			onErr = v
		case child.Type == types.TypeFile:
			files = append(files, rawData(child))
		default:
			return nil, NewSerializeError(child.ID, fmt.Sprintf("%s cannot be placed in a request", child.Type), nil)
		}
	}

	out := document.NewMap()
	if headers != nil {
		out.Set(keyHeaders, headers)
	}
	if spark != nil {
		out.Set(keySpark, spark)
	}
	if extractors != nil {
		out.Set(keyExtractors, extractors)
	}
	if extract != nil {
		out.Set(keyExtract, keyedForm(extract))
	}
	if assertions != nil {
		out.Set(keyAssertions, assertions)
	}
	if assert != nil {
		out.Set(keyAssert, keyedForm(assert))
	}
	if thinkTime != nil {
		out.Set(keyThinkTime, thinkTime)
	}
	if onErr != nil {
		out.Set(keyOnError, onErr)
	}
	if files != nil {
		out.Set(keyFiles, files)
	}
	return out, nil
}

func setHeader(headers *document.Map, n *types.Node) {
	data := n.Data()
	name := document.Scalar(data.Value("name"))
	if name == "" {
		return
	}
	headers.Set(name, document.Clone(data.Value("value")))
}

// keyedForm writes extract/assert children as a key to value object when every
// child is a single distinct key without var, name or type fields, and as a
// sequence of objects otherwise.
func keyedForm(nodes []*types.Node) any {
	merged := document.NewMap()
	list := make([]any, 0, len(nodes))
	object := true
	for _, n := range nodes {
		v := rawData(n)
		list = append(list, v)
		m, ok := v.(*document.Map)
		if !ok || m.Len() != 1 || m.Has("var") || m.Has("name") || m.Has("type") {
			object = false
			continue
		}
		key := m.Keys()[0]
		if merged.Has(key) {
			object = false
			continue
		}
		merged.Set(key, m.Value(key))
	}
	if object {
		return merged
	}
	return list
}

func sparkData(n *types.Node) any {
	sp, ok := n.Payload.(types.SparkPayload)
	if !ok {
		return rawData(n)
	}
	data := n.Data()
	switch {
	case n.Type == types.TypeSparkAfter && sp.When != "after":
		data.Set("when", "after")
	case n.Type == types.TypeSparkBefore && sp.When == "after":
		data.Set("when", "before")
	}
	return data
}

func inlineThinkTime(n *types.Node) any {
	tp, ok := n.Payload.(types.ThinkTimePayload)
	if !ok {
		return rawData(n)
	}
	if tp.Shape == types.ThinkTimePlain && tp.Extra.Len() == 0 {
		return document.Clone(tp.Duration)
	}
	return tp.Data()
}

func printThinkTime(n *types.Node) any {
	tp, ok := n.Payload.(types.ThinkTimePayload)
	if !ok {
		return rawData(n)
	}
	if tp.Shape == types.ThinkTimePlain {
		out := document.MapOf(keyThinkTime, document.Clone(tp.Duration))
		out.Merge(tp.Extra)
		return out
	}
	return document.MapOf(keyThinkTime, tp.Data())
}

func inlineOnError(n *types.Node) (any, error) {
	op, ok := n.Payload.(types.OnErrorPayload)
	if !ok {
		return rawData(n), nil
	}
	if n.HasChildren() {
		steps, err := printSteps(n.Children)
		if err != nil {
			return nil, err
		}
		data := op.Data()
		data.Set(keySteps, steps)
		return data, nil
	}
	if op.Bare && op.Extra.Len() == 0 {
		return op.Action, nil
	}
	return op.Data(), nil
}

// controlEntry writes a control-flow step as {key: head, ...siblings, steps}.
func controlEntry(n *types.Node, key string, head any, siblings *document.Map) (*document.Map, error) {
	out := document.MapOf(key, head)
	out.Merge(siblings)
	if n.HasChildren() {
		steps, err := printSteps(n.Children)
		if err != nil {
			return nil, err
		}
		out.Set(keySteps, steps)
	}
	return out, nil
}

func printGroup(n *types.Node) (any, error) {
	gp, ok := n.Payload.(types.GroupPayload)
	if !ok {
		return rawData(n), nil
	}

	if gp.IsAssertionWrapper() && onlyAssertions(n.Children) {
		list := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			list = append(list, rawData(c))
		}
		out := document.MapOf(keyAssertions, list)
		out.Merge(gp.Extra)
		return out, nil
	}

	name, hasName := nameOf(n)
	if gp.Bare && n.Type != types.TypeSimple {
		var head any
		if hasName {
			head = name
		}
		return controlEntry(n, "group", head, gp.Extra)
	}

	body := n.Data().Without("assertions")
	if hasName {
		body = withName(body, name)
	}
	if n.Type == types.TypeSimple {
		body.Set("simple", true)
	}
	steps, err := printSteps(n.Children)
	if err != nil {
		return nil, err
	}
	body.Set(keySteps, steps)
	return document.MapOf("group", body), nil
}

func onlyAssertions(nodes []*types.Node) bool {
	for _, c := range nodes {
		if !c.Type.IsAssertion() {
			return false
		}
	}
	return true
}

func printIf(n *types.Node) (any, error) {
	ip, ok := n.Payload.(types.IfPayload)
	if !ok {
		return rawData(n), nil
	}
	return controlEntry(n, "if", ip.Condition, ip.Extra)
}

func printLoop(n *types.Node) (any, error) {
	lp, ok := n.Payload.(types.LoopPayload)
	if !ok {
		return rawData(n), nil
	}
	if lp.Bare {
		return controlEntry(n, "loop", document.Clone(lp.Count), lp.Extra)
	}
	return controlEntry(n, "loop", lp.Data(), nil)
}

func printRetry(n *types.Node) (any, error) {
	rp, ok := n.Payload.(types.RetryPayload)
	if !ok {
		return rawData(n), nil
	}
	if rp.Bare && rp.Backoff == "" && rp.Delay == nil {
		return controlEntry(n, "retry", document.Clone(rp.Attempts), rp.Extra)
	}
	return controlEntry(n, "retry", rp.Data(), nil)
}

func printOnError(n *types.Node) (any, error) {
	op, ok := n.Payload.(types.OnErrorPayload)
	if !ok {
		return rawData(n), nil
	}
	if op.Bare {
		return controlEntry(n, "on_error", op.Action, op.Extra)
	}
	return controlEntry(n, "on_error", op.Data(), nil)
}
