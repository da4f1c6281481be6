package parser

import (
	"fmt"
)

// ParseError represents a failure to turn text into a tree.
type ParseError struct {
	Line    int    // Line number where the error occurred (1-based, 0 if unknown)
	Column  int    // Column number where the error occurred (1-based, 0 if unknown)
	Message string // Error message
	Cause   error  // Underlying error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new ParseError.
func NewParseError(line, column int, message string, cause error) *ParseError {
	return &ParseError{
		Line:    line,
		Column:  column,
		Message: message,
		Cause:   cause,
	}
}

// SerializeError represents a failure to turn a tree back into text.
type SerializeError struct {
	NodeID  string // Node being serialized when the failure happened, if known
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SerializeError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("serialize error at node %s: %s", e.NodeID, e.Message)
	}
	return fmt.Sprintf("serialize error: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *SerializeError) Unwrap() error {
	return e.Cause
}

// NewSerializeError creates a new SerializeError.
func NewSerializeError(nodeID, message string, cause error) *SerializeError {
	return &SerializeError{
		NodeID:  nodeID,
		Message: message,
		Cause:   cause,
	}
}

// Warning is a non-fatal observation made while building a tree, such as an
// ambiguous or malformed section that was kept verbatim.
type Warning struct {
	Path    string
	Message string
}

// String implements fmt.Stringer.
func (w Warning) String() string {
	if w.Path == "" {
		return w.Message
	}
	return w.Path + ": " + w.Message
}
