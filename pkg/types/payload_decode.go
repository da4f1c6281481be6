package types

import (
	"fmt"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
)

// DecodePayload builds the typed payload for kind t from its generic view.
// The map is not retained; unknown keys are kept in the payload's Extra.
func DecodePayload(t NodeType, data *document.Map) Payload {
	if data == nil {
		data = document.NewMap()
	}
	order := data.Keys()

	switch {
	case t == TypeTest:
		return TestPayload{
			Name:        stringField(data, "name"),
			Description: stringField(data, "description"),
			Extra:       data.Without("name", "description"),
			order:       order,
		}
	case t == TypeScenario:
		return ScenarioPayload{
			Name:  stringField(data, "name"),
			Extra: data.Without("name"),
			order: order,
		}
	case t == TypeRequest:
		return RequestPayload{
			Name:   stringField(data, "name"),
			Method: stringField(data, "method"),
			URL:    stringField(data, "url"),
			Extra:  data.Without("name", "method", "url"),
			order:  order,
		}
	case t.IsVerb():
		url, _ := data.Get("url")
		return VerbPayload{URL: url, Extra: data.Without("url"), order: order}
	case t == TypeThinkTime:
		return decodeThinkTime(data, order)
	case t == TypeLoop:
		count, _ := data.Get("count")
		return LoopPayload{Count: count, Extra: data.Without("count"), order: order}
	case t == TypeRetry:
		attempts, _ := data.Get("attempts")
		delay, _ := data.Get("delay")
		return RetryPayload{
			Attempts: attempts,
			Backoff:  stringField(data, "backoff"),
			Delay:    delay,
			Extra:    data.Without("attempts", "backoff", "delay"),
			order:    order,
		}
	case t == TypeIf:
		return IfPayload{
			Condition: stringField(data, "condition"),
			Extra:     data.Without("condition"),
			order:     order,
		}
	case t == TypeOnError:
		return OnErrorPayload{
			Action: stringField(data, "action"),
			Extra:  data.Without("action"),
			order:  order,
		}
	case t == TypeGroup || t == TypeSimple:
		p := GroupPayload{
			Name:  stringField(data, "name"),
			Extra: data.Without("name", "simple", "assertions"),
			order: order,
		}
		if simple, ok := data.Get("simple"); ok {
			p.Simple, _ = simple.(bool)
		}
		if t == TypeSimple {
			p.Simple = true
		}
		if list, ok := data.GetSlice("assertions"); ok {
			p.Assertions = document.Clone(list).([]any)
		}
		return p
	case t.IsSpark():
		return SparkPayload{
			When:   stringField(data, "when"),
			Script: stringField(data, "script"),
			Extra:  data.Without("when", "script"),
			order:  order,
		}
	case t == TypeScenarios || t == TypeSteps:
		return ContainerPayload{}
	case t == TypeStep:
		if v, ok := data.Get("value"); ok && data.Len() == 1 {
			if _, isMap := v.(*document.Map); !isMap {
				return OpaquePayload{Raw: document.Clone(v)}
			}
		}
		return OpaquePayload{Raw: data.Clone()}
	default:
		return AttrsPayload{Attrs: data.Clone()}
	}
}

func decodeThinkTime(data *document.Map, order []string) ThinkTimePayload {
	if data.Has("min") || data.Has("max") {
		minV, _ := data.Get("min")
		maxV, _ := data.Get("max")
		return ThinkTimePayload{
			Min:   minV,
			Max:   maxV,
			Shape: ThinkTimeRange,
			Extra: data.Without("min", "max", "duration"),
			order: order,
		}
	}
	d, _ := data.Get("duration")
	shape := ThinkTimeObject
	if data.Len() == 1 {
		shape = ThinkTimePlain
	}
	return ThinkTimePayload{
		Duration: d,
		Shape:    shape,
		Extra:    data.Without("duration"),
		order:    order,
	}
}

// stringField renders a scalar field as text; missing keys yield "".
func stringField(m *document.Map, key string) string {
	v, ok := m.Get(key)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// WithName returns a copy of p whose own name attribute is set to name, for
// the kinds that carry one. Other payloads are returned unchanged.
func WithName(p Payload, name string) Payload {
	switch v := p.(type) {
	case TestPayload:
		v.Name = name
		return v
	case ScenarioPayload:
		v.Name = name
		return v
	case RequestPayload:
		v.Name = name
		return v
	case VerbPayload:
		v.Extra = v.Extra.Clone()
		v.Extra.Set("name", name)
		return v
	case GroupPayload:
		if v.IsAssertionWrapper() {
			return v
		}
		v.Name = name
		return v
	}
	return p
}

// ReplaceData decodes data as the new payload of a node of kind t, carrying
// over the shape hints of the previous payload so that a whole-object update
// does not change which YAML form the node serializes to.
func ReplaceData(prev Payload, t NodeType, data *document.Map) Payload {
	next := DecodePayload(t, data)
	switch n := next.(type) {
	case TestPayload:
		if p, ok := prev.(TestPayload); ok {
			n.Layout, n.Sections = p.Layout, p.Sections
		}
		return n
	case ScenarioPayload:
		if p, ok := prev.(ScenarioPayload); ok {
			n.Layout = p.Layout
		}
		return n
	case RequestPayload:
		if p, ok := prev.(RequestPayload); ok {
			n.Layout = p.Layout
		}
		return n
	case VerbPayload:
		if p, ok := prev.(VerbPayload); ok {
			n.Layout = p.Layout
		}
		return n
	case LoopPayload:
		if p, ok := prev.(LoopPayload); ok {
			n.Bare = p.Bare
		}
		return n
	case RetryPayload:
		if p, ok := prev.(RetryPayload); ok {
			n.Bare = p.Bare
		}
		return n
	case OnErrorPayload:
		if p, ok := prev.(OnErrorPayload); ok {
			n.Bare = p.Bare
		}
		return n
	case GroupPayload:
		if p, ok := prev.(GroupPayload); ok {
			n.Bare = p.Bare
		}
		return n
	case ThinkTimePayload:
		if p, ok := prev.(ThinkTimePayload); ok && p.Shape == ThinkTimeObject && n.Shape == ThinkTimePlain {
			n.Shape = ThinkTimeObject
		}
		return n
	}
	return next
}
