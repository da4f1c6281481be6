package types

import (
	"fmt"
	"strings"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
)

var staticNames = map[NodeType]string{
	TypeVariables:    "Variables",
	TypeDataSource:   "Data Source",
	TypeHTTPDefaults: "HTTP Defaults",
	TypeScenarios:    "Scenarios",
	TypeMetrics:      "Metrics",
	TypeSteps:        "Steps",
	TypeLoad:         "Load",
	TypeCookies:      "Cookies",
	TypeCacheManager: "Cache Manager",
	TypeErrorPolicy:  "Error Policy",
	TypeSparkBefore:  "Spark Before",
	TypeSparkAfter:   "Spark After",
	TypeStep:         "Unknown Step",
}

// DefaultName derives the display label of a node from its kind and payload.
// A node keeps this label until the user renames it.
func DefaultName(t NodeType, p Payload) string {
	if name, ok := staticNames[t]; ok {
		return name
	}

	switch v := p.(type) {
	case TestPayload:
		return orDefault(v.Name, "Test")
	case ScenarioPayload:
		return orDefault(v.Name, "Scenario")
	case RequestPayload:
		if v.Name != "" {
			return v.Name
		}
		method := strings.ToUpper(orDefault(v.Method, "GET"))
		return fmt.Sprintf("%s: %s", method, v.URL)
	case VerbPayload:
		if name, ok := v.Extra.GetString("name"); ok && name != "" {
			return name
		}
		return fmt.Sprintf("%s %s", t.Method(), document.Scalar(v.URL))
	case ThinkTimePayload:
		return fmt.Sprintf("Think Time (%s)", v.Display())
	case LoopPayload:
		return fmt.Sprintf("Loop (%sx)", document.Scalar(v.Count))
	case RetryPayload:
		return fmt.Sprintf("Retry (%sx)", document.Scalar(v.Attempts))
	case IfPayload:
		return "If: " + v.Condition
	case OnErrorPayload:
		if v.Action == "" {
			return "On Error"
		}
		return "On Error: " + v.Action
	case GroupPayload:
		if v.IsAssertionWrapper() {
			return fmt.Sprintf("Assertions (%d)", len(v.Assertions))
		}
		if t == TypeSimple || v.Simple {
			return orDefault(v.Name, "Simple Group")
		}
		return orDefault(v.Name, "Group")
	}

	data := document.NewMap()
	if p != nil {
		data = p.Data()
	}
	switch {
	case t.IsAssertion():
		return "Assert: " + describe(data)
	case t.IsExtractor():
		return "Extract: " + describe(data)
	case t == TypeHeaders:
		return fmt.Sprintf("Headers (%d)", data.Len())
	case t == TypeHeader:
		return "Header: " + document.Scalar(first(data, "name"))
	case t == TypeFile:
		return "File: " + describe(data)
	}
	return string(t)
}

// describe picks the most telling attribute of an open payload: var, name,
// type, or else the first key.
func describe(data *document.Map) string {
	for _, key := range []string{"var", "name", "type", "path"} {
		if v, ok := data.Get(key); ok {
			return document.Scalar(v)
		}
	}
	keys := data.Keys()
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

func first(data *document.Map, key string) any {
	v, _ := data.Get(key)
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
