package document

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultIndent is the number of spaces used when encoding.
const DefaultIndent = 2

// DecodeError is returned when text is not well-formed YAML.
type DecodeError struct {
	Line    int
	Column  int
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("yaml: line %d: %s", e.Line, e.Message)
	}
	return "yaml: " + e.Message
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Decode parses YAML text into a generic value. Only the first document of a
// stream is read. Empty input decodes to nil.
func Decode(data []byte) (any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, wrapYAMLError(err)
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return newDecoder().fromNode(&doc)
}

// Encode renders a generic value as YAML text.
func Encode(v any, indent int) ([]byte, error) {
	if indent <= 0 {
		indent = DefaultIndent
	}
	node, err := toNode(v)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(indent)
	if err := encoder.Encode(node); err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("close yaml encoder: %w", err)
	}
	return buf.Bytes(), nil
}

// decoder turns a yaml.Node tree into generic values for one Decode call.
// Aliases are expanded by hand, so it guards against alias cycles and
// against documents that multiply through aliases. expanding holds the
// anchored collections currently being decoded.
type decoder struct {
	expanding   map[*yaml.Node]bool
	aliasDepth  int
	decodeCount int
	aliasCount  int
}

func newDecoder() *decoder {
	return &decoder{expanding: make(map[*yaml.Node]bool)}
}

// allowedAliasRatio mirrors the limit yaml.v3 applies when decoding into Go
// values: small documents may be almost all alias, large ones may not.
func allowedAliasRatio(decodeCount int) float64 {
	switch {
	case decodeCount <= 400000:
		return 0.99
	case decodeCount >= 4000000:
		return 0.10
	default:
		return 0.99 - 0.89*(float64(decodeCount-400000)/3600000)
	}
}

func (d *decoder) fromNode(n *yaml.Node) (any, error) {
	d.decodeCount++
	if d.aliasDepth > 0 {
		d.aliasCount++
	}
	if d.aliasCount > 100 && d.decodeCount > 1000 &&
		float64(d.aliasCount)/float64(d.decodeCount) > allowedAliasRatio(d.decodeCount) {
		return nil, &DecodeError{Line: n.Line, Column: n.Column, Message: "document contains excessive aliasing"}
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return d.fromNode(n.Content[0])

	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		if d.expanding[n.Alias] {
			return nil, &DecodeError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf("alias cycle on anchor %q", n.Value)}
		}
		d.aliasDepth++
		v, err := d.fromNode(n.Alias)
		d.aliasDepth--
		return v, err

	case yaml.MappingNode:
		if n.Anchor != "" {
			if d.expanding[n] {
				return nil, &DecodeError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf("alias cycle on anchor %q", n.Anchor)}
			}
			d.expanding[n] = true
			defer delete(d.expanding, n)
		}
		m := NewMap()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			val, err := d.fromNode(value)
			if err != nil {
				return nil, err
			}
			// merge keys copy entries that are not already defined
			if key.ShortTag() == "!!merge" {
				mergeInto(m, val)
				continue
			}
			m.Set(key.Value, val)
		}
		return m, nil

	case yaml.SequenceNode:
		if n.Anchor != "" {
			if d.expanding[n] {
				return nil, &DecodeError{Line: n.Line, Column: n.Column, Message: fmt.Sprintf("alias cycle on anchor %q", n.Anchor)}
			}
			d.expanding[n] = true
			defer delete(d.expanding, n)
		}
		out := make([]any, 0, len(n.Content))
		for _, item := range n.Content {
			val, err := d.fromNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
		return out, nil

	case yaml.ScalarNode:
		return scalarValue(n)
	}
	return nil, &DecodeError{Line: n.Line, Column: n.Column, Message: "unsupported node kind"}
}

func mergeInto(m *Map, v any) {
	switch val := v.(type) {
	case *Map:
		val.Range(func(k string, item any) bool {
			if !m.Has(k) {
				m.Set(k, item)
			}
			return true
		})
	case []any:
		for _, item := range val {
			mergeInto(m, item)
		}
	}
}

func scalarValue(n *yaml.Node) (any, error) {
	switch n.ShortTag() {
	case "!!timestamp", "!!binary":
		// keep the literal text so it survives a round trip unchanged
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, &DecodeError{Line: n.Line, Column: n.Column, Message: err.Error(), Cause: err}
	}
	return v, nil
}

func toNode(v any) (*yaml.Node, error) {
	switch val := v.(type) {
	case *Map:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		var err error
		val.Range(func(k string, item any) bool {
			var child *yaml.Node
			child, err = toNode(item)
			if err != nil {
				return false
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
				child,
			)
			return true
		})
		if err != nil {
			return nil, err
		}
		return node, nil

	case map[string]any:
		return toNode(FromPlain(val))

	case []any:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range val {
			child, err := toNode(item)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil

	default:
		node := &yaml.Node{}
		if err := node.Encode(val); err != nil {
			return nil, fmt.Errorf("encode scalar %v: %w", val, err)
		}
		return node, nil
	}
}

// wrapYAMLError converts a yaml.v3 error into a DecodeError with line information.
func wrapYAMLError(err error) error {
	errStr := err.Error()
	line := 0
	if idx := strings.Index(errStr, "line "); idx != -1 {
		fmt.Sscanf(errStr[idx:], "line %d", &line)
	}
	message := strings.TrimPrefix(errStr, "yaml: ")
	if idx := strings.Index(message, ": "); idx != -1 && strings.HasPrefix(message, "line ") {
		message = message[idx+2:]
	}
	return &DecodeError{Line: line, Message: message, Cause: err}
}
