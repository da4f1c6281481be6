// Package types defines the editor's tree model.
//
// This package contains the fundamental types shared by the parser, the tree
// mutator, the placement rules and the editor shell, including:
//   - the closed node type taxonomy
//   - the Node structure
//   - typed payload variants for each node kind
//   - path breadcrumbs recorded at parse time
package types
