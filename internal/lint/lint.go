// Package lint reports problems in an editor tree that the parser accepts
// but a load test run would trip over: broken conditions, unknown variables,
// invalid extractor paths, scripts that do not compile and nonsensical
// counts.
package lint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/duke-git/lancet/v2/slice"
	"go.uber.org/zap"

	"github.com/relampo/relampo-yml-editor-sub000/internal/tree"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/logger"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// Severity ranks a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one finding attached to a node.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Rule     string   `json:"rule"`
	NodeID   string   `json:"node_id"`
	Path     string   `json:"path,omitempty"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	loc := d.Path
	if loc == "" {
		loc = d.NodeID
	}
	return fmt.Sprintf("%s [%s] %s: %s", d.Severity, d.Rule, loc, d.Message)
}

// Linter runs an ordered set of rules over a tree.
type Linter struct {
	rules  []rule
	known  []string
	logger *zap.Logger
}

// Option configures a Linter.
type Option func(*Linter)

// WithKnownVariables declares names provided outside the document, such as
// variables injected by the runner.
func WithKnownVariables(names ...string) Option {
	return func(l *Linter) {
		l.known = append(l.known, names...)
	}
}

// WithLogger sets the logger used for run summaries.
func WithLogger(log *zap.Logger) Option {
	return func(l *Linter) {
		l.logger = log
	}
}

// New creates a Linter with the default rules.
func New(opts ...Option) *Linter {
	l := &Linter{rules: defaultRules()}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = logger.Named("lint")
	}
	return l
}

// RuleNames lists the rules in the order they run.
func (l *Linter) RuleNames() []string {
	return slice.Map(l.rules, func(_ int, r rule) string { return r.name })
}

// Check lints the tree rooted at root. Diagnostics come back in document
// order, errors before warnings for the same node.
func (l *Linter) Check(root *types.Node) []Diagnostic {
	if root == nil {
		return nil
	}
	p := &pass{declared: declaredVariables(root)}
	for _, name := range l.known {
		p.declared[name] = true
	}

	order := map[string]int{}
	tree.Walk(root, func(n *types.Node, _ int) bool {
		order[n.ID] = len(order)
		for _, r := range l.rules {
			if r.applies(n) {
				r.check(p, n)
			}
		}
		return true
	})

	sort.SliceStable(p.out, func(i, j int) bool {
		a, b := p.out[i], p.out[j]
		if order[a.NodeID] != order[b.NodeID] {
			return order[a.NodeID] < order[b.NodeID]
		}
		return a.Severity == SeverityError && b.Severity != SeverityError
	})

	l.logger.Debug("lint finished",
		zap.Int("nodes", len(order)),
		zap.Int("diagnostics", len(p.out)),
		zap.Int("errors", Count(p.out, SeverityError)))
	return p.out
}

// Check lints root with the default rules.
func Check(root *types.Node) []Diagnostic {
	return New().Check(root)
}

// Count returns how many diagnostics have severity s.
func Count(diags []Diagnostic, s Severity) int {
	return len(slice.Filter(diags, func(_ int, d Diagnostic) bool { return d.Severity == s }))
}

// pass is the state of one Check run.
type pass struct {
	declared map[string]bool
	out      []Diagnostic
}

func (p *pass) report(n *types.Node, sev Severity, ruleName, format string, args ...any) {
	p.out = append(p.out, Diagnostic{
		Severity: sev,
		Rule:     ruleName,
		NodeID:   n.ID,
		Path:     n.Path.String(),
		Message:  fmt.Sprintf(format, args...),
	})
}

// declaredVariables gathers the names a document defines: keys of the
// variables table and every extractor target.
func declaredVariables(root *types.Node) map[string]bool {
	names := map[string]bool{}
	tree.Walk(root, func(n *types.Node, _ int) bool {
		switch {
		case n.Type == types.TypeVariables:
			for _, k := range n.Data().Keys() {
				names[k] = true
			}
		case n.Type.IsExtractor():
			for _, name := range extractorTargets(n) {
				names[name] = true
			}
		}
		return true
	})
	return names
}

// extractorTargets returns the variable names an extractor node assigns.
// Keyed extract entries are {target: expression}; others name the target
// with var or name.
func extractorTargets(n *types.Node) []string {
	data := n.Data()
	if n.Type == types.TypeExtract && data.Len() == 1 {
		return data.Keys()
	}
	for _, key := range []string{"var", "variable", "name", "as"} {
		if s, ok := data.GetString(key); ok && strings.TrimSpace(s) != "" {
			return []string{s}
		}
	}
	return nil
}
