package parser

import (
	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// Request section keys that are decomposed into child nodes.
const (
	keyHeaders    = "headers"
	keySpark      = "spark"
	keyExtractors = "extractors"
	keyExtract    = "extract"
	keyAssertions = "assertions"
	keyAssert     = "assert"
	keyThinkTime  = "think_time"
	keyOnError    = "on_error"
	keyFiles      = "files"
)

// requestSections lists the child sections in the order they are written when
// the original layout does not say otherwise.
var requestSections = []string{
	keyHeaders, keySpark, keyExtractors, keyExtract, keyAssertions, keyAssert, keyThinkTime, keyOnError, keyFiles,
}

// decomposeRequest splits a request mapping into its own attributes and the
// child nodes built from its sections. Sections with a shape the builder does
// not understand stay in the attributes.
func (c *buildCtx) decomposeRequest(rm *document.Map, path types.Path) (*document.Map, []*types.Node) {
	rest := document.NewMap()
	children := []*types.Node{}

	if rm.Has(keyExtract) && rm.Has(keyExtractors) {
		c.warn(path, "both extract and extractors are set, both are kept")
	}
	if rm.Has(keyAssert) && rm.Has(keyAssertions) {
		c.warn(path, "both assert and assertions are set, both are kept")
	}

	rm.Range(func(key string, v any) bool {
		kpath := path.Append(key)
		built, ok := c.requestSection(key, v, kpath)
		if !ok {
			rest.Set(key, document.Clone(v))
			return true
		}
		children = append(children, built...)
		return true
	})
	return rest, children
}

// requestSection converts one request section. ok is false when key is not a
// section or its value has an unsupported shape.
func (c *buildCtx) requestSection(key string, v any, path types.Path) (nodes []*types.Node, ok bool) {
	switch key {
	case keyHeaders:
		m, isMap := v.(*document.Map)
		if !isMap {
			c.warn(path, "headers is a %s, kept in request data", kindOf(v))
			return nil, false
		}
		n := c.node(types.TypeHeaders, types.AttrsPayload{Attrs: m.Clone()}, path)
		return []*types.Node{n}, true

	case keySpark:
		list, isList := v.([]any)
		if !isList {
			c.warn(path, "spark is a %s, kept in request data", kindOf(v))
			return nil, false
		}
		for i, entry := range list {
			m, isMap := entry.(*document.Map)
			if !isMap {
				m = document.MapOf("script", document.Scalar(entry))
			}
			nodes = append(nodes, c.sparkNode(m.Clone(), path.Append(i)))
		}
		return nodes, true

	case keyExtractors, keyFiles:
		list, isList := v.([]any)
		if !isList {
			c.warn(path, "%s is a %s, kept in request data", key, kindOf(v))
			return nil, false
		}
		t := types.TypeExtractor
		if key == keyFiles {
			t = types.TypeFile
		}
		for i, entry := range list {
			nodes = append(nodes, c.attrsNode(t, entry, path.Append(i)))
		}
		return nodes, true

	case keyAssertions:
		list, isList := v.([]any)
		if !isList {
			c.warn(path, "assertions is a %s, kept in request data", kindOf(v))
			return nil, false
		}
		for i, entry := range list {
			nodes = append(nodes, c.attrsNode(types.TypeAssertion, entry, path.Append(i)))
		}
		return nodes, true

	case keyExtract, keyAssert:
		t := types.TypeExtract
		if key == keyAssert {
			t = types.TypeAssert
		}
		return c.keyedSection(t, v, path)

	case keyThinkTime:
		return []*types.Node{c.node(types.TypeThinkTime, thinkTimeFrom(v, nil), path)}, true

	case keyOnError:
		var steps any
		if m, isMap := v.(*document.Map); isMap {
			steps = m.Value(keySteps)
		}
		return []*types.Node{c.onErrorNode(v, nil, steps, path)}, true
	}
	return nil, false
}

// keyedSection handles extract and assert, which accept a sequence of objects
// (one child per entry) or a key to value object (one child per key).
func (c *buildCtx) keyedSection(t types.NodeType, v any, path types.Path) ([]*types.Node, bool) {
	var nodes []*types.Node
	switch sv := v.(type) {
	case []any:
		for i, entry := range sv {
			nodes = append(nodes, c.attrsNode(t, entry, path.Append(i)))
		}
		return nodes, true
	case *document.Map:
		sv.Range(func(k string, val any) bool {
			nodes = append(nodes, c.node(t, types.AttrsPayload{Attrs: document.MapOf(k, document.Clone(val))}, path.Append(k)))
			return true
		})
		return nodes, true
	}
	c.warn(path, "%s is a %s, kept in request data", t, kindOf(v))
	return nil, false
}
