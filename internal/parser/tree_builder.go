package parser

import (
	"fmt"
	"os"
	"strconv"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// Top-level document keys, in the order they are written for new documents.
const (
	keyTest         = "test"
	keyVariables    = "variables"
	keyDataSource   = "data_source"
	keyHTTPDefaults = "http_defaults"
	keyScenarios    = "scenarios"
	keyMetrics      = "metrics"
	keySteps        = "steps"
)

var topLevelOrder = []string{keyTest, keyVariables, keyDataSource, keyHTTPDefaults, keyScenarios, keyMetrics}

// scaffoldKeys maps the top-level sections attached verbatim under the root.
var scaffoldKeys = []struct {
	key string
	typ types.NodeType
}{
	{keyVariables, types.TypeVariables},
	{keyDataSource, types.TypeDataSource},
	{keyHTTPDefaults, types.TypeHTTPDefaults},
	{keyMetrics, types.TypeMetrics},
}

// scenarioConfigKeys maps the scenario sections attached as config children.
var scenarioConfigKeys = []struct {
	key string
	typ types.NodeType
}{
	{"load", types.TypeLoad},
	{"cookies", types.TypeCookies},
	{"cache_manager", types.TypeCacheManager},
	{"error_policy", types.TypeErrorPolicy},
}

// TreeBuilder implements the Parser interface for YAML test definitions.
type TreeBuilder struct {
	rules     []stepRule
	onWarning func(Warning)
	warnings  []Warning
}

// NewTreeBuilder creates a TreeBuilder with the default step rules.
func NewTreeBuilder() *TreeBuilder {
	return &TreeBuilder{rules: defaultStepRules()}
}

// WithWarningHandler registers a callback for non-fatal observations.
func (b *TreeBuilder) WithWarningHandler(fn func(Warning)) *TreeBuilder {
	b.onWarning = fn
	return b
}

// Warnings returns the warnings collected by the last Parse call.
func (b *TreeBuilder) Warnings() []Warning {
	out := make([]Warning, len(b.warnings))
	copy(out, b.warnings)
	return out
}

// RuleNames returns the step rules in the priority order they are tried.
func (b *TreeBuilder) RuleNames() []string {
	names := make([]string, len(b.rules))
	for i, r := range b.rules {
		names[i] = r.name
	}
	return names
}

// Parse builds a tree from YAML bytes.
func (b *TreeBuilder) Parse(data []byte) (*types.Node, error) {
	b.warnings = nil

	value, err := document.Decode(data)
	if err != nil {
		return nil, wrapDecodeError(err)
	}

	var doc *document.Map
	switch v := value.(type) {
	case nil:
		doc = document.NewMap()
	case *document.Map:
		doc = v
	default:
		return nil, NewParseError(0, 0, fmt.Sprintf("top-level value must be a mapping, got %s", kindOf(value)), nil)
	}

	ctx := &buildCtx{builder: b}
	return ctx.buildRoot(doc), nil
}

// ParseFile builds a tree from a YAML file.
func (b *TreeBuilder) ParseFile(path string) (*types.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewParseError(0, 0, fmt.Sprintf("failed to read file: %s", path), err)
	}
	return b.Parse(data)
}

func wrapDecodeError(err error) error {
	if de, ok := err.(*document.DecodeError); ok {
		return NewParseError(de.Line, de.Column, de.Message, err)
	}
	return NewParseError(0, 0, err.Error(), err)
}

// buildCtx carries the per-call state of one Parse: the id sequence and the
// collected warnings.
type buildCtx struct {
	builder *TreeBuilder
	seq     int
}

func (c *buildCtx) nextID() string {
	c.seq++
	return "n" + strconv.Itoa(c.seq)
}

func (c *buildCtx) warn(path types.Path, format string, args ...any) {
	w := Warning{Path: path.String(), Message: fmt.Sprintf(format, args...)}
	c.builder.warnings = append(c.builder.warnings, w)
	if c.builder.onWarning != nil {
		c.builder.onWarning(w)
	}
}

// node creates a node with a fresh id and its derived display name. Kinds that
// can hold children get an empty, non-nil children slice.
func (c *buildCtx) node(t types.NodeType, payload types.Payload, path types.Path) *types.Node {
	n := &types.Node{
		ID:       c.nextID(),
		Type:     t,
		Payload:  payload,
		Expanded: true,
		Path:     path,
	}
	n.Name = types.DefaultName(t, payload)
	if t.CanHaveChildren() {
		n.Children = []*types.Node{}
	}
	return n
}

// attrsNode creates a node whose data is an open table. Values that are not
// mappings are kept opaque so they serialize back unchanged.
func (c *buildCtx) attrsNode(t types.NodeType, value any, path types.Path) *types.Node {
	if m, ok := value.(*document.Map); ok {
		return c.node(t, types.AttrsPayload{Attrs: m.Clone()}, path)
	}
	c.warn(path, "%s is a %s, kept verbatim", t, kindOf(value))
	return c.node(t, types.OpaquePayload{Raw: document.Clone(value)}, path)
}

func (c *buildCtx) buildRoot(doc *document.Map) *types.Node {
	testData := document.NewMap()
	if v, ok := doc.Get(keyTest); ok {
		switch tv := v.(type) {
		case *document.Map:
			testData = tv
		case string:
			testData.Set("name", tv)
		case nil:
		default:
			c.warn(types.Path{keyTest}, "test is a %s, expected a mapping", kindOf(v))
		}
	}

	payload := types.DecodePayload(types.TypeTest, testData).(types.TestPayload)
	payload.Layout = doc.Keys()
	payload.Sections = document.NewMap()

	root := c.node(types.TypeTest, payload, types.Path{})

	for _, sk := range scaffoldKeys {
		if v, ok := doc.Get(sk.key); ok {
			root.Children = append(root.Children, c.attrsNode(sk.typ, v, types.Path{sk.key}))
		}
	}

	if v, ok := doc.Get(keyScenarios); ok {
		if list, isList := v.([]any); isList {
			root.Children = append(root.Children, c.buildScenarios(list))
		} else {
			c.warn(types.Path{keyScenarios}, "scenarios is a %s, expected a sequence", kindOf(v))
			payload.Sections.Set(keyScenarios, document.Clone(v))
		}
	}

	doc.Range(func(k string, v any) bool {
		if !isModeledTopLevel(k) {
			payload.Sections.Set(k, document.Clone(v))
		}
		return true
	})
	root.Payload = payload

	return root
}

func isModeledTopLevel(key string) bool {
	for _, k := range topLevelOrder {
		if k == key {
			return true
		}
	}
	return false
}

func (c *buildCtx) buildScenarios(list []any) *types.Node {
	path := types.Path{keyScenarios}
	container := c.node(types.TypeScenarios, types.ContainerPayload{}, path)
	for i, entry := range list {
		container.Children = append(container.Children, c.buildScenario(entry, path.Append(i)))
	}
	return container
}

func (c *buildCtx) buildScenario(entry any, path types.Path) *types.Node {
	m, ok := entry.(*document.Map)
	if !ok {
		c.warn(path, "scenario is a %s, expected a mapping", kindOf(entry))
		m = document.NewMap()
	}

	data := m.Without(keySteps)
	for _, ck := range scenarioConfigKeys {
		data.Delete(ck.key)
	}
	payload := types.DecodePayload(types.TypeScenario, data).(types.ScenarioPayload)
	payload.Layout = m.Keys()

	scenario := c.node(types.TypeScenario, payload, path)
	for _, ck := range scenarioConfigKeys {
		if v, ok := m.Get(ck.key); ok {
			scenario.Children = append(scenario.Children, c.attrsNode(ck.typ, v, path.Append(ck.key)))
		}
	}

	stepsPath := path.Append(keySteps)
	steps := c.node(types.TypeSteps, types.ContainerPayload{}, stepsPath)
	if v, ok := m.Get(keySteps); ok {
		steps.Children = c.buildSteps(v, stepsPath)
	}
	scenario.Children = append(scenario.Children, steps)

	return scenario
}

// buildSteps converts a steps sequence. It never returns nil.
func (c *buildCtx) buildSteps(value any, path types.Path) []*types.Node {
	out := []*types.Node{}
	if value == nil {
		return out
	}
	list, ok := value.([]any)
	if !ok {
		c.warn(path, "steps is a %s, expected a sequence", kindOf(value))
		return out
	}
	for i, entry := range list {
		out = append(out, c.buildStep(entry, path.Append(i)))
	}
	return out
}

// buildStep runs the step rules in priority order; the first match wins.
func (c *buildCtx) buildStep(entry any, path types.Path) *types.Node {
	m, ok := entry.(*document.Map)
	if ok {
		for _, rule := range c.builder.rules {
			if rule.match(m) {
				return rule.build(c, m, path)
			}
		}
	}
	return c.node(types.TypeStep, types.OpaquePayload{Raw: document.Clone(entry)}, path)
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case *document.Map:
		return "mapping"
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, uint64, float64:
		return "number"
	}
	return fmt.Sprintf("%T", v)
}
