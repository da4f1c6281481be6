// Package expression parses the condition language used by `if` steps, such
// as `${status} == 200 AND NOT ${retried}`, and finds `${...}` variable
// references in arbitrary document strings.
package expression

// TokenType represents the type of a token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	TokenIdent
	TokenInt
	TokenFloat
	TokenString
	TokenBool
	TokenNull

	TokenVarRef // ${...}

	TokenEQ // ==
	TokenNE // !=
	TokenLT // <
	TokenGT // >
	TokenLE // <=
	TokenGE // >=

	TokenAND // AND, &&
	TokenOR  // OR, ||
	TokenNOT // NOT, !

	TokenLParen
	TokenRParen
)

var tokenNames = map[TokenType]string{
	TokenEOF:     "EOF",
	TokenIllegal: "ILLEGAL",
	TokenIdent:   "IDENT",
	TokenInt:     "INT",
	TokenFloat:   "FLOAT",
	TokenString:  "STRING",
	TokenBool:    "BOOL",
	TokenNull:    "NULL",
	TokenVarRef:  "VARREF",
	TokenEQ:      "==",
	TokenNE:      "!=",
	TokenLT:      "<",
	TokenGT:      ">",
	TokenLE:      "<=",
	TokenGE:      ">=",
	TokenAND:     "AND",
	TokenOR:      "OR",
	TokenNOT:     "NOT",
	TokenLParen:  "(",
	TokenRParen:  ")",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Token is a lexical token with its byte offset in the input.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}
