package expression

import "strings"

// ScanReferences finds every `${...}` placeholder in free text such as a
// URL or header value and returns the trimmed names in first-use order,
// without duplicates. Unterminated and empty placeholders are skipped.
func ScanReferences(text string) []string {
	var out []string
	seen := map[string]bool{}
	for i := 0; i < len(text); {
		start := strings.Index(text[i:], "${")
		if start < 0 {
			break
		}
		start += i
		end, ok := closingBrace(text, start+2)
		if !ok {
			break
		}
		name := strings.TrimSpace(text[start+2 : end])
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
		i = end + 1
	}
	return out
}

func closingBrace(text string, from int) (int, bool) {
	depth := 1
	for j := from; j < len(text); j++ {
		switch text[j] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return j, true
			}
		}
	}
	return 0, false
}

// CollectReferences scans every string inside a decoded document value.
func CollectReferences(v any, fn func(name string)) {
	switch x := v.(type) {
	case string:
		for _, name := range ScanReferences(x) {
			fn(name)
		}
	case []any:
		for _, item := range x {
			CollectReferences(item, fn)
		}
	case interface {
		Keys() []string
		Value(string) any
	}:
		for _, k := range x.Keys() {
			CollectReferences(x.Value(k), fn)
		}
	case map[string]any:
		for _, item := range x {
			CollectReferences(item, fn)
		}
	}
}
