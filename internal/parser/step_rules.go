package parser

import (
	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// stepRule is one entry of the step dispatch table. Rules are tried in order
// and the first whose match reports true builds the node.
type stepRule struct {
	name  string
	match func(entry *document.Map) bool
	build func(c *buildCtx, entry *document.Map, path types.Path) *types.Node
}

// defaultStepRules returns the dispatch table in priority order. It is a
// function rather than a package variable because the builders recurse back
// into buildStep.
func defaultStepRules() []stepRule {
	return []stepRule{
		{name: "verb", match: matchVerb, build: buildVerb},
		{name: "request", match: hasKey("request"), build: buildRequest},
		{name: "think_time", match: hasKey("think_time"), build: buildThinkTime},
		{name: "assertions", match: matchAssertions, build: buildAssertions},
		{name: "assertion", match: matchAssertion, build: buildAssertion},
		{name: "extractor", match: matchExtractor, build: buildExtractor},
		{name: "spark", match: matchSpark, build: buildSpark},
		{name: "group", match: hasKey("group"), build: buildGroup},
		{name: "if", match: hasKey("if"), build: buildIf},
		{name: "loop", match: hasKey("loop"), build: buildLoop},
		{name: "retry", match: hasKey("retry"), build: buildRetry},
		{name: "on_error", match: hasKey("on_error"), build: buildOnError},
	}
}

func hasKey(key string) func(*document.Map) bool {
	return func(m *document.Map) bool { return m.Has(key) }
}

// verbOf returns the first HTTP verb key present in the entry.
func verbOf(m *document.Map) (types.NodeType, bool) {
	for _, v := range types.Verbs {
		if m.Has(string(v)) {
			return v, true
		}
	}
	return "", false
}

func matchVerb(m *document.Map) bool {
	_, ok := verbOf(m)
	return ok
}

func buildVerb(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	verb, _ := verbOf(m)
	url, _ := m.Get(string(verb))

	rest, children := c.decomposeRequest(m.Without(string(verb)), path)
	data := document.MapOf("url", document.Clone(url))
	data.Merge(rest)

	payload := types.DecodePayload(verb, data).(types.VerbPayload)
	payload.Layout = m.Keys()

	n := c.node(verb, payload, path)
	n.Children = children
	return n
}

func buildRequest(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	v, _ := m.Get("request")
	rm, ok := v.(*document.Map)
	if !ok {
		c.warn(path, "request is a %s, kept verbatim", kindOf(v))
		return c.node(types.TypeStep, types.OpaquePayload{Raw: m.Clone()}, path)
	}
	rm = rm.Clone()
	m.Range(func(k string, val any) bool {
		if k == "request" {
			return true
		}
		if rm.Has(k) {
			c.warn(path, "%s is set both beside and inside request, the inner value wins", k)
			return true
		}
		c.warn(path, "%s beside request moved into the request", k)
		rm.Set(k, document.Clone(val))
		return true
	})

	rpath := path.Append("request")
	rest, children := c.decomposeRequest(rm, rpath)

	payload := types.DecodePayload(types.TypeRequest, rest).(types.RequestPayload)
	payload.Layout = rm.Keys()

	n := c.node(types.TypeRequest, payload, path)
	n.Children = children
	return n
}

// thinkTimeFrom decodes any of the think_time forms. siblings become extra
// attributes of the plain form.
func thinkTimeFrom(value any, siblings *document.Map) types.ThinkTimePayload {
	if m, ok := value.(*document.Map); ok {
		data := m.Clone()
		mergeAbsent(data, siblings)
		p := types.DecodePayload(types.TypeThinkTime, data).(types.ThinkTimePayload)
		if p.Shape == types.ThinkTimePlain {
			p.Shape = types.ThinkTimeObject
		}
		return p
	}
	data := document.MapOf("duration", document.Clone(value))
	data.Merge(siblings)
	p := types.DecodePayload(types.TypeThinkTime, data).(types.ThinkTimePayload)
	p.Shape = types.ThinkTimePlain
	return p
}

func buildThinkTime(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	v, _ := m.Get("think_time")
	return c.node(types.TypeThinkTime, thinkTimeFrom(v, m.Without("think_time")), path)
}

func matchAssertions(m *document.Map) bool {
	list, ok := m.GetSlice("assertions")
	return ok && len(list) > 0
}

// buildAssertions unwraps a single-entry list into a bare assertion, with the
// entry's sibling keys merged in where absent, and wraps longer lists in a
// synthesized group that remembers the original list.
func buildAssertions(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	list, _ := m.GetSlice("assertions")
	siblings := m.Without("assertions")
	lpath := path.Append("assertions")

	if len(list) == 1 {
		if entry, ok := list[0].(*document.Map); ok {
			data := entry.Clone()
			mergeAbsent(data, siblings)
			return c.node(types.TypeAssertion, types.AttrsPayload{Attrs: data}, lpath.Append(0))
		}
		if siblings.Len() == 0 {
			return c.attrsNode(types.TypeAssertion, list[0], lpath.Append(0))
		}
	}

	payload := types.GroupPayload{
		Assertions: document.Clone(list).([]any),
		Extra:      siblings,
	}
	group := c.node(types.TypeGroup, payload, path)
	for i, entry := range list {
		group.Children = append(group.Children, c.attrsNode(types.TypeAssertion, entry, lpath.Append(i)))
	}
	return group
}

func matchAssertion(m *document.Map) bool {
	for _, k := range []string{"assertion", "assert"} {
		if _, ok := m.GetMap(k); ok {
			return true
		}
	}
	return false
}

func buildAssertion(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	key := "assertion"
	if _, ok := m.GetMap(key); !ok {
		key = "assert"
	}
	return c.node(types.TypeAssertion, types.AttrsPayload{Attrs: absorb(m, key)}, path)
}

func matchExtractor(m *document.Map) bool {
	for _, k := range []string{"extractor", "extract"} {
		if _, ok := m.GetMap(k); ok {
			return true
		}
	}
	list, ok := m.GetSlice("extractors")
	if !ok || len(list) != 1 {
		return false
	}
	_, isMap := list[0].(*document.Map)
	return isMap
}

func buildExtractor(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	for _, k := range []string{"extractor", "extract"} {
		if _, ok := m.GetMap(k); ok {
			return c.node(types.TypeExtractor, types.AttrsPayload{Attrs: absorb(m, k)}, path)
		}
	}
	list, _ := m.GetSlice("extractors")
	data := list[0].(*document.Map).Clone()
	mergeAbsent(data, m.Without("extractors"))
	return c.node(types.TypeExtractor, types.AttrsPayload{Attrs: data}, path.Append("extractors", 0))
}

func matchSpark(m *document.Map) bool {
	_, ok := m.GetMap("spark")
	return ok
}

func buildSpark(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	return c.sparkNode(absorb(m, "spark"), path)
}

// sparkNode picks spark_before or spark_after from the script's when field.
func (c *buildCtx) sparkNode(data *document.Map, path types.Path) *types.Node {
	p := types.DecodePayload(types.TypeSparkBefore, data).(types.SparkPayload)
	t := types.TypeSparkBefore
	if p.Phase() == "after" {
		t = types.TypeSparkAfter
	}
	return c.node(t, p, path)
}

func buildGroup(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	v, _ := m.Get("group")
	siblings := m.Without("group", "steps")

	var (
		payload types.GroupPayload
		steps   any
		spath   types.Path
	)
	if gm, ok := v.(*document.Map); ok {
		data := gm.Without("steps")
		mergeAbsent(data, siblings)
		payload = types.DecodePayload(types.TypeGroup, data).(types.GroupPayload)
		steps, spath = gm.Value("steps"), path.Append("group", "steps")
		if steps == nil {
			steps, spath = m.Value("steps"), path.Append("steps")
		}
	} else {
		payload = types.DecodePayload(types.TypeGroup, siblings).(types.GroupPayload)
		payload.Name = document.Scalar(v)
		payload.Bare = true
		steps, spath = m.Value("steps"), path.Append("steps")
	}

	t := types.TypeGroup
	if payload.Simple {
		t = types.TypeSimple
	}
	n := c.node(t, payload, path)
	n.Children = c.buildSteps(steps, spath)
	return n
}

func buildIf(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	v, _ := m.Get("if")
	data, _ := controlData(v, "condition", m.Without("if", "steps"))
	payload := types.DecodePayload(types.TypeIf, data).(types.IfPayload)

	n := c.node(types.TypeIf, payload, path)
	n.Children = c.buildSteps(nestedSteps(v, m), path.Append("steps"))
	return n
}

func buildLoop(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	v, _ := m.Get("loop")
	data, bare := controlData(v, "count", m.Without("loop", "steps"))
	payload := types.DecodePayload(types.TypeLoop, data).(types.LoopPayload)
	payload.Bare = bare

	n := c.node(types.TypeLoop, payload, path)
	n.Children = c.buildSteps(nestedSteps(v, m), path.Append("steps"))
	return n
}

func buildRetry(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	v, _ := m.Get("retry")
	data, bare := controlData(v, "attempts", m.Without("retry", "steps"))
	payload := types.DecodePayload(types.TypeRetry, data).(types.RetryPayload)
	payload.Bare = bare

	n := c.node(types.TypeRetry, payload, path)
	n.Children = c.buildSteps(nestedSteps(v, m), path.Append("steps"))
	return n
}

func buildOnError(c *buildCtx, m *document.Map, path types.Path) *types.Node {
	v, _ := m.Get("on_error")
	return c.onErrorNode(v, m.Without("on_error", "steps"), nestedSteps(v, m), path)
}

func (c *buildCtx) onErrorNode(v any, siblings *document.Map, steps any, path types.Path) *types.Node {
	data, bare := controlData(v, "action", siblings)
	if bare {
		data.Set("action", document.Scalar(v))
	}
	payload := types.DecodePayload(types.TypeOnError, data).(types.OnErrorPayload)
	payload.Bare = bare

	n := c.node(types.TypeOnError, payload, path)
	n.Children = c.buildSteps(steps, path.Append("steps"))
	return n
}

// controlData turns a control-flow value into payload data. A scalar value is
// the bare form and lands under key; siblings are merged in either way.
func controlData(v any, key string, siblings *document.Map) (*document.Map, bool) {
	if cm, ok := v.(*document.Map); ok {
		data := cm.Without("steps")
		mergeAbsent(data, siblings)
		return data, false
	}
	data := document.MapOf(key, document.Clone(v))
	data.Merge(siblings)
	return data, true
}

// nestedSteps returns the steps of a control-flow entry: the object form may
// carry them inside, otherwise they sit beside the key.
func nestedSteps(v any, entry *document.Map) any {
	if cm, ok := v.(*document.Map); ok && cm.Has("steps") {
		return cm.Value("steps")
	}
	return entry.Value("steps")
}

// absorb returns a copy of the mapping stored under key with the entry's
// other keys merged in where absent.
func absorb(entry *document.Map, key string) *document.Map {
	inner, _ := entry.GetMap(key)
	data := inner.Clone()
	mergeAbsent(data, entry.Without(key))
	return data
}

func mergeAbsent(dst, src *document.Map) {
	src.Range(func(k string, v any) bool {
		if !dst.Has(k) {
			dst.Set(k, document.Clone(v))
		}
		return true
	})
}
