package types

import (
	"fmt"

	"github.com/duke-git/lancet/v2/slice"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
)

// Payload is the typed data carried by a node. Data returns the generic
// ordered view used by the detail panel and by serialization.
type Payload interface {
	Data() *document.Map
}

// field is one typed attribute of a payload, rendered back into Data.
type field struct {
	key     string
	value   any
	present bool
}

// assemble rebuilds an ordered map from typed fields and extra attributes,
// following the key order recorded when the payload was decoded.
func assemble(order []string, fields []field, extra *document.Map) *document.Map {
	out := document.NewMap()
	byKey := make(map[string]field, len(fields))
	for _, f := range fields {
		byKey[f.key] = f
	}
	for _, k := range order {
		if f, ok := byKey[k]; ok {
			if f.present {
				out.Set(k, document.Clone(f.value))
			}
			continue
		}
		if v, ok := extra.Get(k); ok {
			out.Set(k, document.Clone(v))
		}
	}
	for _, f := range fields {
		if f.present && !out.Has(f.key) {
			out.Set(f.key, document.Clone(f.value))
		}
	}
	extra.Range(func(k string, v any) bool {
		if !out.Has(k) {
			out.Set(k, document.Clone(v))
		}
		return true
	})
	return out
}

// ContainerPayload is carried by pure containers (scenarios, steps).
type ContainerPayload struct{}

// Data implements Payload.
func (ContainerPayload) Data() *document.Map { return document.NewMap() }

// AttrsPayload is an open key/value table. Variables, http defaults, metrics,
// scenario config sections, headers, files, assertions and extractors use it.
type AttrsPayload struct {
	Attrs *document.Map
}

// Data implements Payload.
func (p AttrsPayload) Data() *document.Map { return p.Attrs.Clone() }

// OpaquePayload keeps a step that no rule recognized, verbatim.
type OpaquePayload struct {
	Raw any
}

// Data implements Payload. Non-mapping raw values are exposed under "value".
func (p OpaquePayload) Data() *document.Map {
	if m, ok := p.Raw.(*document.Map); ok {
		return m.Clone()
	}
	return document.MapOf("value", document.Clone(p.Raw))
}

// TestPayload is the root's own attributes (the top-level test mapping).
type TestPayload struct {
	Name        string
	Description string
	Extra       *document.Map

	// Layout is the order of the document's top-level keys and Sections holds
	// top-level keys the editor does not model. Neither is part of Data.
	Layout   []string
	Sections *document.Map

	order []string
}

// Data implements Payload.
func (p TestPayload) Data() *document.Map {
	return assemble(p.order, []field{
		{"name", p.Name, p.Name != ""},
		{"description", p.Description, p.Description != ""},
	}, p.Extra)
}

// ScenarioPayload holds a scenario's scalar attributes. Its load, cookies,
// cache manager, error policy and steps are children.
type ScenarioPayload struct {
	Name   string
	Extra  *document.Map
	Layout []string // key order of the scenario mapping, child sections included
	order  []string
}

// Data implements Payload.
func (p ScenarioPayload) Data() *document.Map {
	return assemble(p.order, []field{{"name", p.Name, p.Name != ""}}, p.Extra)
}

// RequestPayload holds a request's own attributes. Headers, scripts,
// extractors, assertions, think time, error handling and files are children.
type RequestPayload struct {
	Name   string
	Method string
	URL    string
	Extra  *document.Map
	Layout []string // key order of the request mapping, child sections included
	order  []string
}

// Data implements Payload.
func (p RequestPayload) Data() *document.Map {
	return assemble(p.order, []field{
		{"name", p.Name, p.Name != ""},
		{"method", p.Method, p.Method != ""},
		{"url", p.URL, p.URL != "" || slice.Contain(p.order, "url")},
	}, p.Extra)
}

// VerbPayload is the compact "get: /path" request form.
type VerbPayload struct {
	URL    any
	Extra  *document.Map
	Layout []string // key order of the step entry, verb key included
	order  []string
}

// Data implements Payload.
func (p VerbPayload) Data() *document.Map {
	return assemble(p.order, []field{{"url", p.URL, true}}, p.Extra)
}

// ThinkTimeShape records which of the accepted think_time forms was used.
type ThinkTimeShape int

const (
	ThinkTimePlain  ThinkTimeShape = iota // think_time: 2s
	ThinkTimeObject                       // think_time: {duration: 2s}
	ThinkTimeRange                        // think_time: {min: 1s, max: 3s}
)

// ThinkTimePayload is a pause between steps.
type ThinkTimePayload struct {
	Duration any
	Min      any
	Max      any
	Shape    ThinkTimeShape
	Extra    *document.Map
	order    []string
}

// Data implements Payload.
func (p ThinkTimePayload) Data() *document.Map {
	if p.Shape == ThinkTimeRange {
		return assemble(p.order, []field{
			{"min", p.Min, p.Min != nil},
			{"max", p.Max, p.Max != nil},
		}, p.Extra)
	}
	return assemble(p.order, []field{{"duration", p.Duration, p.Duration != nil}}, p.Extra)
}

// Display returns the literal duration, or "<min>-<max>" for ranges.
func (p ThinkTimePayload) Display() string {
	if p.Shape == ThinkTimeRange {
		return fmt.Sprintf("%s-%s", document.Scalar(p.Min), document.Scalar(p.Max))
	}
	return document.Scalar(p.Duration)
}

// LoopPayload repeats its children Count times.
type LoopPayload struct {
	Count any
	Bare  bool // loop: 3 instead of loop: {count: 3}
	Extra *document.Map
	order []string
}

// Data implements Payload.
func (p LoopPayload) Data() *document.Map {
	return assemble(p.order, []field{{"count", p.Count, p.Count != nil}}, p.Extra)
}

// RetryPayload retries its children.
type RetryPayload struct {
	Attempts any
	Backoff  string
	Delay    any
	Bare     bool // retry: 3 instead of retry: {attempts: 3}
	Extra    *document.Map
	order    []string
}

// Data implements Payload.
func (p RetryPayload) Data() *document.Map {
	return assemble(p.order, []field{
		{"attempts", p.Attempts, p.Attempts != nil},
		{"backoff", p.Backoff, p.Backoff != ""},
		{"delay", p.Delay, p.Delay != nil},
	}, p.Extra)
}

// IfPayload runs its children when Condition holds.
type IfPayload struct {
	Condition string
	Extra     *document.Map
	order     []string
}

// Data implements Payload.
func (p IfPayload) Data() *document.Map {
	return assemble(p.order, []field{{"condition", p.Condition, true}}, p.Extra)
}

// OnErrorPayload selects what happens when a step fails.
type OnErrorPayload struct {
	Action string
	Bare   bool // on_error: continue instead of on_error: {action: continue}
	Extra  *document.Map
	order  []string
}

// Data implements Payload.
func (p OnErrorPayload) Data() *document.Map {
	return assemble(p.order, []field{{"action", p.Action, p.Action != "" || p.Bare}}, p.Extra)
}

// GroupPayload groups steps. Assertions is set only on groups synthesized to
// wrap a bare multi-entry assertions list; it selects the serialization shape.
type GroupPayload struct {
	Name       string
	Simple     bool
	Assertions []any
	Bare       bool // group: Name instead of group: {name: Name, steps: [...]}
	Extra      *document.Map
	order      []string
}

// Data implements Payload.
func (p GroupPayload) Data() *document.Map {
	return assemble(p.order, []field{
		{"name", p.Name, p.Name != ""},
		{"simple", p.Simple, p.Simple},
		{"assertions", p.Assertions, p.Assertions != nil},
	}, p.Extra)
}

// IsAssertionWrapper reports whether the group only wraps a bare assertions list.
func (p GroupPayload) IsAssertionWrapper() bool {
	return p.Assertions != nil
}

// SparkPayload is a pre or post script.
type SparkPayload struct {
	When   string
	Script string
	Extra  *document.Map
	order  []string
}

// Data implements Payload.
func (p SparkPayload) Data() *document.Map {
	return assemble(p.order, []field{
		{"when", p.When, p.When != ""},
		{"script", p.Script, p.Script != ""},
	}, p.Extra)
}

// Phase returns "before" or "after"; scripts without a when run before.
func (p SparkPayload) Phase() string {
	if p.When == "after" {
		return "after"
	}
	return "before"
}
