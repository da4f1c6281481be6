package types

import "strings"

// NodeType tags a node with its semantic kind.
type NodeType string

// Document scaffolding.
const (
	TypeTest         NodeType = "test"
	TypeVariables    NodeType = "variables"
	TypeDataSource   NodeType = "data_source"
	TypeHTTPDefaults NodeType = "http_defaults"
	TypeScenarios    NodeType = "scenarios"
	TypeScenario     NodeType = "scenario"
	TypeMetrics      NodeType = "metrics"
	TypeSteps        NodeType = "steps"
)

// Requests and HTTP verb shorthands.
const (
	TypeRequest NodeType = "request"
	TypeGet     NodeType = "get"
	TypePost    NodeType = "post"
	TypePut     NodeType = "put"
	TypeDelete  NodeType = "delete"
	TypePatch   NodeType = "patch"
	TypeHead    NodeType = "head"
	TypeOptions NodeType = "options"
)

// Control flow.
const (
	TypeGroup   NodeType = "group"
	TypeSimple  NodeType = "simple"
	TypeIf      NodeType = "if"
	TypeLoop    NodeType = "loop"
	TypeRetry   NodeType = "retry"
	TypeOnError NodeType = "on_error"
)

// Request children.
const (
	TypeThinkTime   NodeType = "think_time"
	TypeAssertion   NodeType = "assertion"
	TypeAssert      NodeType = "assert"
	TypeExtractor   NodeType = "extractor"
	TypeExtract     NodeType = "extract"
	TypeSparkBefore NodeType = "spark_before"
	TypeSparkAfter  NodeType = "spark_after"
	TypeFile        NodeType = "file"
	TypeHeader      NodeType = "header"
	TypeHeaders     NodeType = "headers"
)

// Scenario children.
const (
	TypeLoad         NodeType = "load"
	TypeCookies      NodeType = "cookies"
	TypeCacheManager NodeType = "cache_manager"
	TypeErrorPolicy  NodeType = "error_policy"
)

// TypeStep is the fallback for step entries no rule recognizes.
const TypeStep NodeType = "step"

// Verbs lists the HTTP verb shorthand kinds in dispatch order.
var Verbs = []NodeType{TypeGet, TypePost, TypePut, TypeDelete, TypePatch, TypeHead, TypeOptions}

var allTypes = []NodeType{
	TypeTest, TypeVariables, TypeDataSource, TypeHTTPDefaults, TypeScenarios, TypeScenario, TypeMetrics, TypeSteps,
	TypeRequest, TypeGet, TypePost, TypePut, TypeDelete, TypePatch, TypeHead, TypeOptions,
	TypeGroup, TypeSimple, TypeIf, TypeLoop, TypeRetry, TypeOnError,
	TypeThinkTime, TypeAssertion, TypeAssert, TypeExtractor, TypeExtract, TypeSparkBefore, TypeSparkAfter,
	TypeFile, TypeHeader, TypeHeaders,
	TypeLoad, TypeCookies, TypeCacheManager, TypeErrorPolicy,
	TypeStep,
}

// AllTypes returns every member of the taxonomy.
func AllTypes() []NodeType {
	out := make([]NodeType, len(allTypes))
	copy(out, allTypes)
	return out
}

// Valid reports whether t belongs to the taxonomy.
func (t NodeType) Valid() bool {
	for _, known := range allTypes {
		if known == t {
			return true
		}
	}
	return false
}

// IsVerb reports whether t is an HTTP verb shorthand.
func (t NodeType) IsVerb() bool {
	for _, v := range Verbs {
		if v == t {
			return true
		}
	}
	return false
}

// IsRequestLike reports whether t is a request or a verb shorthand.
func (t NodeType) IsRequestLike() bool {
	return t == TypeRequest || t.IsVerb()
}

// IsControlFlow reports whether t is a control-flow branch.
func (t NodeType) IsControlFlow() bool {
	switch t {
	case TypeGroup, TypeSimple, TypeIf, TypeLoop, TypeRetry, TypeOnError:
		return true
	}
	return false
}

// IsScaffolding reports whether t is a top-level document section.
func (t NodeType) IsScaffolding() bool {
	switch t {
	case TypeVariables, TypeDataSource, TypeHTTPDefaults, TypeScenarios, TypeMetrics:
		return true
	}
	return false
}

// IsScenarioConfig reports whether t only lives directly under a scenario.
func (t NodeType) IsScenarioConfig() bool {
	switch t {
	case TypeLoad, TypeCookies, TypeCacheManager, TypeErrorPolicy:
		return true
	}
	return false
}

// IsSpark reports whether t is a pre or post script.
func (t NodeType) IsSpark() bool {
	return t == TypeSparkBefore || t == TypeSparkAfter
}

// IsAssertion reports whether t is one of the assertion kinds.
func (t NodeType) IsAssertion() bool {
	return t == TypeAssertion || t == TypeAssert
}

// IsExtractor reports whether t is one of the extractor kinds.
func (t NodeType) IsExtractor() bool {
	return t == TypeExtractor || t == TypeExtract
}

// CanHaveChildren reports whether nodes of kind t carry a children slice.
func (t NodeType) CanHaveChildren() bool {
	switch t {
	case TypeTest, TypeScenarios, TypeScenario, TypeSteps, TypeHeaders:
		return true
	}
	return t.IsRequestLike() || t.IsControlFlow()
}

// Method returns the upper-case HTTP method for a verb kind.
func (t NodeType) Method() string {
	if !t.IsVerb() {
		return ""
	}
	return strings.ToUpper(string(t))
}

// String implements fmt.Stringer.
func (t NodeType) String() string {
	return string(t)
}
