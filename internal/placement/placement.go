// Package placement is the rule table deciding which node kinds may hold which
// children. It depends on node kinds only, never on node data.
package placement

import (
	"github.com/duke-git/lancet/v2/slice"

	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// Role groups node kinds that share an addable-children list.
type Role string

const (
	RoleRoot        Role = "root"
	RoleScenarios   Role = "scenarios"
	RoleScenario    Role = "scenario"
	RoleControlFlow Role = "control_flow" // steps containers and control-flow branches
	RoleRequest     Role = "request"
	RoleHeaders     Role = "headers"
	RoleLeaf        Role = "leaf"
)

// addable is the hand-curated list of child kinds per role. CanContain is
// derived from it.
var addable = map[Role][]types.NodeType{
	RoleRoot: {
		types.TypeVariables, types.TypeDataSource, types.TypeHTTPDefaults, types.TypeScenarios, types.TypeMetrics,
	},
	RoleScenarios: {
		types.TypeScenario,
	},
	RoleScenario: {
		types.TypeLoad, types.TypeCookies, types.TypeCacheManager, types.TypeErrorPolicy,
	},
	RoleControlFlow: {
		types.TypeRequest,
		types.TypeGet, types.TypePost, types.TypePut, types.TypeDelete, types.TypePatch, types.TypeHead, types.TypeOptions,
		types.TypeGroup, types.TypeSimple, types.TypeIf, types.TypeLoop, types.TypeRetry, types.TypeOnError,
		types.TypeThinkTime,
	},
	RoleRequest: {
		types.TypeHeaders, types.TypeHeader,
		types.TypeSparkBefore, types.TypeSparkAfter,
		types.TypeExtractor, types.TypeExtract,
		types.TypeAssertion, types.TypeAssert,
		types.TypeThinkTime, types.TypeOnError, types.TypeFile,
	},
	RoleHeaders: {
		types.TypeHeader,
	},
}

// RoleOf classifies a node kind.
func RoleOf(t types.NodeType) Role {
	switch {
	case t == types.TypeTest:
		return RoleRoot
	case t == types.TypeScenarios:
		return RoleScenarios
	case t == types.TypeScenario:
		return RoleScenario
	case t == types.TypeSteps || t.IsControlFlow():
		return RoleControlFlow
	case t.IsRequestLike():
		return RoleRequest
	case t == types.TypeHeaders:
		return RoleHeaders
	}
	return RoleLeaf
}

// AddableTypes returns the kinds that may be added under a node of kind parent.
func AddableTypes(parent types.NodeType) []types.NodeType {
	list := addable[RoleOf(parent)]
	out := make([]types.NodeType, len(list))
	copy(out, list)
	return out
}

// CanContain reports whether a node of kind parent may have a direct child of
// kind child.
func CanContain(parent, child types.NodeType) bool {
	return slice.Contain(addable[RoleOf(parent)], child)
}

// CanDrop reports whether dropping a node of kind dragged at pos relative to a
// node of kind target is legal. Before and after are legal when some parent
// kind may hold both target and dragged.
func CanDrop(dragged, target types.NodeType, pos types.Position) bool {
	if !Draggable(dragged) {
		return false
	}
	switch pos {
	case types.PositionInside:
		return CanContain(target, dragged)
	case types.PositionBefore, types.PositionAfter:
		for _, parent := range types.AllTypes() {
			if CanContain(parent, target) && CanContain(parent, dragged) {
				return true
			}
		}
	}
	return false
}

// Removable reports whether nodes of kind t may be removed by the user. The
// root and the scenarios and steps containers are structural.
func Removable(t types.NodeType) bool {
	switch t {
	case types.TypeTest, types.TypeScenarios, types.TypeSteps:
		return false
	}
	return true
}

// Draggable reports whether nodes of kind t may be picked up for a move.
func Draggable(t types.NodeType) bool {
	return Removable(t)
}
