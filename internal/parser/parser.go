// Package parser converts between YAML test definitions and editor trees.
package parser

import (
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

// Parser defines the interface for building a tree from a test definition.
type Parser interface {
	// Parse builds a tree from YAML bytes.
	Parse(data []byte) (*types.Node, error)

	// ParseFile builds a tree from a YAML file.
	ParseFile(path string) (*types.Node, error)
}

// Printer defines the interface for serializing a tree back to YAML.
type Printer interface {
	// Print serializes a tree to bytes.
	Print(root *types.Node) ([]byte, error)

	// PrintToFile serializes a tree to a file.
	PrintToFile(root *types.Node, path string) error
}

// Parse builds a tree from YAML text with the default builder.
func Parse(text string) (*types.Node, error) {
	return NewTreeBuilder().Parse([]byte(text))
}

// Serialize renders a tree as YAML text with the default printer.
func Serialize(root *types.Node) (string, error) {
	data, err := NewTreePrinter().Print(root)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
