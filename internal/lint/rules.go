package lint

import (
	"regexp"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/ohler55/ojg/jp"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/internal/expression"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// rule is one check. Rules run in slice order on every node they apply to.
type rule struct {
	name    string
	applies func(n *types.Node) bool
	check   func(p *pass, n *types.Node)
}

func defaultRules() []rule {
	return []rule{
		{name: "condition", applies: isType(types.TypeIf), check: checkCondition},
		{name: "url", applies: func(n *types.Node) bool { return n.Type.IsRequestLike() }, check: checkURL},
		{name: "loop-count", applies: isType(types.TypeLoop), check: checkLoopCount},
		{name: "retry-attempts", applies: isType(types.TypeRetry), check: checkRetry},
		{name: "think-time", applies: isType(types.TypeThinkTime), check: checkThinkTime},
		{name: "extractor", applies: func(n *types.Node) bool { return n.Type.IsExtractor() }, check: checkExtractor},
		{name: "spark", applies: func(n *types.Node) bool { return n.Type.IsSpark() }, check: checkSpark},
		{name: "empty-steps", applies: hasStepList, check: checkEmptySteps},
		{name: "undefined-variable", applies: func(*types.Node) bool { return true }, check: checkReferences},
	}
}

func isType(t types.NodeType) func(*types.Node) bool {
	return func(n *types.Node) bool { return n.Type == t }
}

func hasStepList(n *types.Node) bool {
	return n.Type.IsControlFlow() && n.Type != types.TypeOnError
}

func templated(v any) bool {
	s, ok := v.(string)
	return ok && strings.Contains(s, "${")
}

func checkCondition(p *pass, n *types.Node) {
	ip, _ := n.Payload.(types.IfPayload)
	if strings.TrimSpace(ip.Condition) == "" {
		p.report(n, SeverityError, "condition", "condition is empty")
		return
	}
	if _, err := expression.Parse(ip.Condition); err != nil {
		p.report(n, SeverityError, "condition", "%v", err)
	}
}

func checkURL(p *pass, n *types.Node) {
	var url string
	switch pl := n.Payload.(type) {
	case types.RequestPayload:
		url = pl.URL
	case types.VerbPayload:
		url = document.Scalar(pl.URL)
	}
	if strings.TrimSpace(url) == "" {
		p.report(n, SeverityError, "url", "request has no URL")
	}
}

// checkPositive reports a missing, non-integer or non-positive count.
// Templated values are resolved at run time and pass.
func checkPositive(p *pass, n *types.Node, ruleName, field string, v any) {
	if v == nil {
		p.report(n, SeverityError, ruleName, "%s is missing", field)
		return
	}
	if templated(v) {
		return
	}
	i, ok := document.ToInt(v)
	if !ok {
		p.report(n, SeverityError, ruleName, "%s %q is not an integer", field, document.Scalar(v))
		return
	}
	if i <= 0 {
		p.report(n, SeverityError, ruleName, "%s must be positive, got %d", field, i)
	}
}

func checkLoopCount(p *pass, n *types.Node) {
	lp, _ := n.Payload.(types.LoopPayload)
	checkPositive(p, n, "loop-count", "count", lp.Count)
}

func checkRetry(p *pass, n *types.Node) {
	rp, _ := n.Payload.(types.RetryPayload)
	checkPositive(p, n, "retry-attempts", "attempts", rp.Attempts)
	if rp.Delay != nil {
		checkDuration(p, n, "retry-attempts", "delay", rp.Delay)
	}
}

// parseDuration accepts Go duration strings and bare numbers of
// milliseconds.
func parseDuration(v any) (time.Duration, bool) {
	if ms, ok := document.ToInt(v); ok {
		return time.Duration(ms) * time.Millisecond, true
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	return d, err == nil
}

func checkDuration(p *pass, n *types.Node, ruleName, field string, v any) (time.Duration, bool) {
	if templated(v) {
		return 0, false
	}
	d, ok := parseDuration(v)
	if !ok {
		p.report(n, SeverityWarning, ruleName, "%s %q is not a duration", field, document.Scalar(v))
		return 0, false
	}
	if d < 0 {
		p.report(n, SeverityError, ruleName, "%s must not be negative", field)
		return d, false
	}
	return d, true
}

func checkThinkTime(p *pass, n *types.Node) {
	tp, _ := n.Payload.(types.ThinkTimePayload)
	if tp.Shape != types.ThinkTimeRange {
		if tp.Duration == nil {
			p.report(n, SeverityError, "think-time", "duration is missing")
			return
		}
		checkDuration(p, n, "think-time", "duration", tp.Duration)
		return
	}
	lo, okLo := checkDuration(p, n, "think-time", "min", tp.Min)
	hi, okHi := checkDuration(p, n, "think-time", "max", tp.Max)
	if okLo && okHi && lo > hi {
		p.report(n, SeverityWarning, "think-time", "min %s is greater than max %s", lo, hi)
	}
}

// extractorExpression returns the extraction kind and expression of an
// extractor node. Keyed extract entries hold {target: expression}.
func extractorExpression(n *types.Node) (kind, expr string) {
	data := n.Data()
	kind = strings.ToLower(strings.TrimSpace(document.Scalar(data.Value("type"))))
	for _, key := range []string{"expression", "path", "jsonpath", "expr"} {
		if s, ok := data.GetString(key); ok {
			expr = s
			break
		}
	}
	if expr == "" {
		for _, key := range []string{"regex", "pattern"} {
			if s, ok := data.GetString(key); ok {
				expr = s
				if kind == "" {
					kind = "regex"
				}
				break
			}
		}
	}
	if expr == "" && n.Type == types.TypeExtract && data.Len() == 1 {
		expr, _ = data.GetString(data.Keys()[0])
	}
	if kind == "" && strings.HasPrefix(strings.TrimSpace(expr), "$") {
		kind = "jsonpath"
	}
	return kind, strings.TrimSpace(expr)
}

func checkExtractor(p *pass, n *types.Node) {
	kind, expr := extractorExpression(n)
	if expr == "" {
		p.report(n, SeverityWarning, "extractor", "extractor has no expression")
		return
	}
	if templated(expr) {
		return
	}
	switch kind {
	case "jsonpath", "json":
		if _, err := jp.ParseString(expr); err != nil {
			p.report(n, SeverityError, "extractor", "invalid JSONPath %q: %v", expr, err)
		}
	case "regex", "regexp":
		if _, err := regexp.Compile(expr); err != nil {
			p.report(n, SeverityError, "extractor", "invalid regular expression %q: %v", expr, err)
		}
	}
}

func checkSpark(p *pass, n *types.Node) {
	sp, _ := n.Payload.(types.SparkPayload)
	if strings.TrimSpace(sp.Script) == "" {
		p.report(n, SeverityWarning, "spark", "script is empty")
		return
	}
	if _, err := goja.Compile(string(n.Type), sp.Script, false); err != nil {
		p.report(n, SeverityError, "spark", "script does not compile: %v", err)
	}
}

func checkEmptySteps(p *pass, n *types.Node) {
	if len(n.Children) == 0 {
		p.report(n, SeverityWarning, "empty-steps", "%s has no steps", n.Type)
	}
}

// checkReferences reports `${name}` placeholders whose root variable is
// never declared. Namespaced references other than var: and names starting
// with a double underscore are runner built-ins and pass.
func checkReferences(p *pass, n *types.Node) {
	seen := map[string]bool{}
	expression.CollectReferences(n.Data(), func(ref string) {
		if ns := expression.Namespace(ref); ns != "" {
			if ns != "var" {
				return
			}
			ref = ref[len(ns)+1:]
		}
		name := expression.RootName(ref)
		if name == "" || strings.HasPrefix(name, "__") || strings.ContainsAny(name, "(${") {
			return
		}
		if p.declared[name] || seen[name] {
			return
		}
		seen[name] = true
		p.report(n, SeverityWarning, "undefined-variable", "variable %q is not declared", name)
	})
}
