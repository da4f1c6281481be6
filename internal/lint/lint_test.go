package lint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/relampo/relampo-yml-editor-sub000/internal/parser"
	"github.com/relampo/relampo-yml-editor-sub000/internal/tree"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

func lintText(t *testing.T, text string, opts ...Option) []Diagnostic {
	t.Helper()
	root, err := parser.Parse(text)
	require.NoError(t, err)
	return New(append([]Option{WithLogger(zap.NewNop())}, opts...)...).Check(root)
}

func lintSteps(t *testing.T, steps string, opts ...Option) []Diagnostic {
	t.Helper()
	return lintText(t, "variables:\n  host: http://localhost\nscenarios:\n  - name: s\n    steps:\n"+steps, opts...)
}

func rules(diags []Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Rule)
	}
	return out
}

func TestCheck_CleanDocument(t *testing.T) {
	diags := lintSteps(t, `
      - get: ${host}/login
        extract:
          token: $.data.token
      - if: "${token} != null AND ${host} != ''"
        steps:
          - post: ${host}/orders
            headers:
              Authorization: Bearer ${token}
            spark:
              - when: after
                script: "vars.set('id', response.json().id);"
      - loop: 3
        steps:
          - think_time: {min: 1s, max: 2s}
      - retry: {attempts: 2, delay: 500}
        steps:
          - get: ${env:API}/ping
`)
	assert.Empty(t, diags)
}

func TestCheck_Condition(t *testing.T) {
	diags := lintSteps(t, `
      - if: "${host} =="
        steps:
          - get: /a
      - if: ""
        steps:
          - get: /b
`)
	require.Len(t, diags, 2)
	assert.Equal(t, []string{"condition", "condition"}, rules(diags))
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "expected operand")
	assert.Contains(t, diags[1].Message, "empty")
}

func TestCheck_URL(t *testing.T) {
	diags := lintSteps(t, `
      - get: ""
      - request:
          method: POST
          url: "  "
      - request:
          method: GET
          url: /ok
`)
	require.Len(t, diags, 2)
	assert.Equal(t, []string{"url", "url"}, rules(diags))
	assert.Equal(t, "scenarios[0].steps[0]", diags[0].Path)
}

func TestCheck_Counts(t *testing.T) {
	diags := lintSteps(t, `
      - loop: 0
        steps:
          - get: /a
      - loop: many
        steps:
          - get: /b
      - loop: ${iterations}
        steps:
          - get: /c
      - retry: {attempts: -1}
        steps:
          - get: /d
      - retry: {attempts: 2, delay: later}
        steps:
          - get: /e
`, WithKnownVariables("iterations"))

	require.Len(t, diags, 4)
	assert.Equal(t, []string{"loop-count", "loop-count", "retry-attempts", "retry-attempts"}, rules(diags))
	assert.Contains(t, diags[0].Message, "must be positive")
	assert.Contains(t, diags[1].Message, "not an integer")
	assert.Contains(t, diags[2].Message, "got -1")
	assert.Equal(t, SeverityWarning, diags[3].Severity)
}

func TestCheck_ThinkTime(t *testing.T) {
	diags := lintSteps(t, `
      - think_time: soon
      - think_time: {min: 3s, max: 1s}
      - think_time: 250
      - think_time: -1s
`)
	require.Len(t, diags, 3)
	assert.Equal(t, "think-time", diags[0].Rule)
	assert.Contains(t, diags[0].Message, "not a duration")
	assert.Contains(t, diags[1].Message, "greater than max")
	assert.Equal(t, SeverityError, diags[2].Severity)
}

func TestCheck_Extractors(t *testing.T) {
	diags := lintSteps(t, `
      - get: /a
        extract:
          ok: $.items[0].id
          broken: $.items[
      - get: /b
        extractors:
          - type: regex
            var: code
            expression: "([a-z"
          - type: jsonpath
            var: total
            expression: ${path}
          - var: nothing
`, WithKnownVariables("path"))

	require.Len(t, diags, 3)
	assert.Equal(t, []string{"extractor", "extractor", "extractor"}, rules(diags))
	assert.Contains(t, diags[0].Message, "invalid JSONPath")
	assert.Contains(t, diags[1].Message, "invalid regular expression")
	assert.Equal(t, SeverityWarning, diags[2].Severity)
}

func TestCheck_Spark(t *testing.T) {
	diags := lintSteps(t, `
      - get: /a
        spark:
          - when: before
            script: "let x = ;"
          - when: after
            script: ""
`)
	require.Len(t, diags, 2)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "does not compile")
	assert.Equal(t, SeverityWarning, diags[1].Severity)
}

func TestCheck_UndefinedVariables(t *testing.T) {
	diags := lintSteps(t, `
      - get: ${base_url}/a?x=${base_url}&t=${__timestamp}
      - get: ${var:missing}/b
      - get: ${host}/c
        headers:
          X-Trace: ${trace.id}
      - get: ${secret:KEY}/d
`)
	require.Len(t, diags, 3)
	assert.Equal(t, []string{"undefined-variable", "undefined-variable", "undefined-variable"}, rules(diags))
	assert.Contains(t, diags[0].Message, `"base_url"`)
	assert.Contains(t, diags[1].Message, `"missing"`)
	assert.Contains(t, diags[2].Message, `"trace"`)
}

func TestCheck_ExtractedVariablesAreDeclared(t *testing.T) {
	diags := lintSteps(t, `
      - get: /login
        extractors:
          - type: jsonpath
            var: session
            expression: $.session
      - get: /me?s=${session}
`)
	assert.Empty(t, diags)
}

func TestCheck_EmptySteps(t *testing.T) {
	diags := lintSteps(t, `
      - group:
          name: empty
          steps: []
`)
	require.Len(t, diags, 1)
	assert.Equal(t, "empty-steps", diags[0].Rule)
}

func TestCheck_DocumentOrder(t *testing.T) {
	diags := lintSteps(t, `
      - loop: 0
        steps:
          - get: ""
      - get: ${nope}
`)
	require.Len(t, diags, 3)
	assert.Equal(t, []string{"loop-count", "url", "undefined-variable"}, rules(diags))
}

func TestCheck_AfterTreeEdit(t *testing.T) {
	root, err := parser.Parse("scenarios:\n  - name: s\n    steps:\n      - get: /a\n")
	require.NoError(t, err)

	var get *types.Node
	tree.Walk(root, func(n *types.Node, _ int) bool {
		if n.Type == types.TypeGet {
			get = n
		}
		return get == nil
	})
	require.NotNil(t, get)

	loop, err := tree.NewNode(types.TypeLoop)
	require.NoError(t, err)
	steps := tree.FindParent(root, get.ID)
	edited := tree.AddChild(root, steps.ID, loop)

	diags := Check(edited)
	assert.Equal(t, []string{"empty-steps"}, rules(diags))
}

func TestLinter_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	root, err := parser.Parse("scenarios:\n  - name: s\n    steps:\n      - loop: 0\n        steps:\n          - get: /a\n")
	require.NoError(t, err)

	diags := New(WithLogger(zap.New(core))).Check(root)
	require.Len(t, diags, 1)

	entries := logs.FilterMessage("lint finished").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].ContextMap()["errors"])
}

func TestRuleNamesAndCount(t *testing.T) {
	assert.Equal(t, "condition", New().RuleNames()[0])
	assert.Nil(t, New().Check(nil))

	diags := []Diagnostic{{Severity: SeverityError}, {Severity: SeverityWarning}, {Severity: SeverityError}}
	assert.Equal(t, 2, Count(diags, SeverityError))
	assert.Equal(t, "warning [x] n1: m", Diagnostic{Severity: SeverityWarning, Rule: "x", NodeID: "n1", Message: "m"}.String())
}
