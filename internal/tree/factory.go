package tree

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// DefaultData returns the data a freshly added node of kind t starts with.
func DefaultData(t types.NodeType) *document.Map {
	switch {
	case t == types.TypeRequest:
		return document.MapOf("method", "GET", "url", "https://api.example.com/endpoint")
	case t.IsVerb():
		return document.MapOf("url", "/endpoint")
	case t == types.TypeLoop:
		return document.MapOf("count", 3)
	case t == types.TypeRetry:
		return document.MapOf("attempts", 3, "backoff", "exponential", "delay", "1s")
	case t == types.TypeIf:
		return document.MapOf("condition", "${status} == 200")
	case t == types.TypeOnError:
		return document.MapOf("action", "continue")
	case t == types.TypeGroup:
		return document.MapOf("name", "New Group")
	case t == types.TypeSimple:
		return document.MapOf("name", "New Group", "simple", true)
	case t == types.TypeThinkTime:
		return document.MapOf("duration", "1s")
	case t.IsAssertion():
		return document.MapOf("type", "status", "value", 200)
	case t.IsExtractor():
		return document.MapOf("type", "jsonpath", "var", "value", "expression", "$.id")
	case t == types.TypeSparkBefore:
		return document.MapOf("when", "before", "script", "")
	case t == types.TypeSparkAfter:
		return document.MapOf("when", "after", "script", "")
	case t == types.TypeHeader:
		return document.MapOf("name", "X-Header", "value", "")
	case t == types.TypeFile:
		return document.MapOf("name", "file", "path", "./data.csv")
	case t == types.TypeLoad:
		return document.MapOf("type", "constant", "users", 10, "duration", "1m")
	case t == types.TypeCookies, t == types.TypeCacheManager:
		return document.MapOf("clear_each_iteration", false)
	case t == types.TypeErrorPolicy:
		return document.MapOf("on_error", "continue")
	case t == types.TypeScenario:
		return document.MapOf("name", "New Scenario")
	case t == types.TypeTest:
		return document.MapOf("name", "New Test")
	}
	return document.NewMap()
}

// NewNode creates a node of kind t with its default data and a fresh id.
// Scenarios come with an empty steps container.
func NewNode(t types.NodeType) (*types.Node, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown node type %q", t)
	}
	n := newNode(t, types.DecodePayload(t, DefaultData(t)))
	if t == types.TypeScenario {
		n.Children = append(n.Children, newNode(types.TypeSteps, types.ContainerPayload{}))
	}
	return n, nil
}

func newNode(t types.NodeType, payload types.Payload) *types.Node {
	n := &types.Node{
		ID:       uuid.NewString(),
		Type:     t,
		Payload:  payload,
		Expanded: true,
	}
	n.Name = types.DefaultName(t, payload)
	if t.CanHaveChildren() {
		n.Children = []*types.Node{}
	}
	return n
}
