package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanReferences(t *testing.T) {
	tests := []struct {
		text     string
		expected []string
	}{
		{"${base_url}/users/${ user_id }", []string{"base_url", "user_id"}},
		{"Bearer ${token} ${token}", []string{"token"}},
		{"${items[${i}]}", []string{"items[${i}]"}},
		{"no refs $here {or} here", nil},
		{"${} ${ok} ${broken", []string{"ok"}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, ScanReferences(tt.text))
		})
	}
}

type orderedMap struct {
	keys   []string
	values map[string]any
}

func (m orderedMap) Keys() []string { return m.keys }
func (m orderedMap) Value(k string) any { return m.values[k] }

func TestCollectReferences(t *testing.T) {
	doc := orderedMap{
		keys: []string{"url", "headers", "steps"},
		values: map[string]any{
			"url":     "${host}/a",
			"headers": map[string]any{"Authorization": "Bearer ${token}"},
			"steps":   []any{"${host}", 3, nil, []any{"${id}"}},
		},
	}

	var names []string
	CollectReferences(doc, func(name string) { names = append(names, name) })
	assert.Equal(t, []string{"host", "token", "host", "id"}, names)
}
