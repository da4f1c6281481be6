package parser

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
)

// TestTreeRoundTrip checks that parse(serialize(parse(text))) is equivalent to
// parse(text) and that serializing again yields the same text.
func TestTreeRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 8

	properties := gopter.NewProperties(parameters)

	properties.Property("tree round-trip preserves structure", prop.ForAll(
		func(steps []*document.Map) bool {
			text, err := documentText(steps)
			if err != nil {
				t.Logf("Encode error: %v", err)
				return false
			}

			first, err := Parse(text)
			if err != nil {
				t.Logf("Parse error: %v, YAML:\n%s", err, text)
				return false
			}
			out, err := Serialize(first)
			if err != nil {
				t.Logf("Serialize error: %v", err)
				return false
			}
			second, err := Parse(out)
			if err != nil {
				t.Logf("Reparse error: %v, YAML:\n%s", err, out)
				return false
			}
			again, err := Serialize(second)
			if err != nil {
				return false
			}

			return equivalent(t, first, second) && again == out
		},
		gen.SliceOf(genStepEntry()),
	))

	properties.TestingRun(t)
}

func documentText(steps []*document.Map) (string, error) {
	list := make([]any, len(steps))
	for i, s := range steps {
		list[i] = s
	}
	doc := document.MapOf(
		"test", document.MapOf("name", "Generated"),
		"scenarios", []any{document.MapOf("name", "S", "steps", list)},
	)
	out, err := document.Encode(doc, document.DefaultIndent)
	return string(out), err
}

func genStepEntry() gopter.Gen {
	return gen.OneGenOf(
		genVerbStep(),
		genThinkTimeStep(),
		genAssertionsStep(),
		genRequestStep(),
		genLoopStep(),
		genRetryStep(),
		genGroupStep(),
		genUnknownStep(),
	)
}

func genPath() gopter.Gen {
	return gen.Identifier().Map(func(s string) string { return "/" + s })
}

func genVerbStep() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("get", "post", "put", "delete", "patch", "head", "options"),
		genPath(),
	).Map(func(vals []any) *document.Map {
		return document.MapOf(vals[0].(string), vals[1].(string))
	})
}

func genThinkTimeStep() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 9),
		gen.IntRange(0, 2),
	).Map(func(vals []any) *document.Map {
		d := fmt.Sprintf("%ds", vals[0].(int))
		switch vals[1].(int) {
		case 0:
			return document.MapOf("think_time", d)
		case 1:
			return document.MapOf("think_time", document.MapOf("duration", d))
		default:
			return document.MapOf("think_time", document.MapOf("min", d, "max", "10s"))
		}
	})
}

func genAssertionsStep() gopter.Gen {
	return gen.IntRange(1, 3).Map(func(n int) *document.Map {
		list := make([]any, n)
		for i := range list {
			list[i] = document.MapOf("type", "status", "value", 200+i)
		}
		return document.MapOf("assertions", list)
	})
}

func genRequestStep() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("GET", "POST"),
		genPath(),
		gen.Bool(),
		gen.Bool(),
	).Map(func(vals []any) *document.Map {
		req := document.MapOf("method", vals[0].(string), "url", vals[1].(string))
		if vals[2].(bool) {
			req.Set("extract", document.MapOf("token", "$.token"))
		} else {
			req.Set("extract", []any{document.MapOf("var", "id", "type", "jsonpath", "expression", "$.id")})
		}
		if vals[3].(bool) {
			req.Set("assert", document.MapOf("status", 200))
			req.Set("headers", document.MapOf("Accept", "application/json"))
		} else {
			req.Set("assertions", []any{document.MapOf("type", "status", "value", 200)})
			req.Set("think_time", "1s")
		}
		return document.MapOf("request", req)
	})
}

func genLoopStep() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1, 5),
		gen.Bool(),
		genPath(),
	).Map(func(vals []any) *document.Map {
		var head any = vals[0].(int)
		if vals[1].(bool) {
			head = document.MapOf("count", vals[0].(int))
		}
		return document.MapOf("loop", head, "steps", []any{document.MapOf("get", vals[2].(string))})
	})
}

func genRetryStep() gopter.Gen {
	return gen.IntRange(1, 5).Map(func(n int) *document.Map {
		return document.MapOf("retry", n, "steps", []any{document.MapOf("on_error", "continue")})
	})
}

func genGroupStep() gopter.Gen {
	return gopter.CombineGens(
		gen.Identifier(),
		gen.Bool(),
	).Map(func(vals []any) *document.Map {
		name := vals[0].(string)
		if vals[1].(bool) {
			return document.MapOf("group", name, "steps", []any{document.MapOf("think_time", "1s")})
		}
		return document.MapOf("group", document.MapOf("name", name, "steps", []any{document.MapOf("post", "/x")}))
	})
}

func genUnknownStep() gopter.Gen {
	return gen.Identifier().Map(func(s string) *document.Map {
		return document.MapOf("custom_"+s, true)
	})
}
