package expression

import "fmt"

// ParseError reports where a condition stopped making sense.
type ParseError struct {
	Input    string
	Position int
	Expected string
	Got      string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("condition %q: expected %s at position %d, got %s", e.Input, e.Expected, e.Position, e.Got)
}

// NewParseError creates a new ParseError.
func NewParseError(input string, pos int, expected, got string) *ParseError {
	return &ParseError{
		Input:    input,
		Position: pos,
		Expected: expected,
		Got:      got,
	}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return "end of input"
	case TokenIllegal:
		return fmt.Sprintf("illegal %q", tok.Literal)
	}
	return fmt.Sprintf("%q", tok.Literal)
}
