package expression

import "strings"

// Lexer tokenizes a condition string.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // position after ch
	ch      byte // 0 at end of input
}

// NewLexer creates a Lexer for input.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
}

func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// Tokens returns every token up to and including EOF or the first illegal
// token.
func (l *Lexer) Tokens() []Token {
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		if tok.Type == TokenEOF || tok.Type == TokenIllegal {
			return out
		}
	}
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	pos := l.pos
	two := func(t TokenType, lit string) Token {
		l.readChar()
		l.readChar()
		return Token{Type: t, Literal: lit, Pos: pos}
	}
	one := func(t TokenType) Token {
		lit := string(l.ch)
		l.readChar()
		return Token{Type: t, Literal: lit, Pos: pos}
	}

	switch l.ch {
	case 0:
		return Token{Type: TokenEOF, Pos: pos}
	case '=':
		if l.peekChar() == '=' {
			return two(TokenEQ, "==")
		}
		return one(TokenIllegal)
	case '!':
		if l.peekChar() == '=' {
			return two(TokenNE, "!=")
		}
		return one(TokenNOT)
	case '<':
		if l.peekChar() == '=' {
			return two(TokenLE, "<=")
		}
		return one(TokenLT)
	case '>':
		if l.peekChar() == '=' {
			return two(TokenGE, ">=")
		}
		return one(TokenGT)
	case '&':
		if l.peekChar() == '&' {
			return two(TokenAND, "&&")
		}
		return one(TokenIllegal)
	case '|':
		if l.peekChar() == '|' {
			return two(TokenOR, "||")
		}
		return one(TokenIllegal)
	case '(':
		return one(TokenLParen)
	case ')':
		return one(TokenRParen)
	case '$':
		if l.peekChar() == '{' {
			return l.readVarRef()
		}
		return one(TokenIllegal)
	case '"', '\'':
		return l.readString()
	}

	if isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())) {
		return l.readNumber()
	}
	if isLetter(l.ch) {
		return l.readIdentifier()
	}
	return one(TokenIllegal)
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() Token {
	pos := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '.' {
		l.readChar()
	}
	literal := l.input[pos:l.pos]
	return Token{Type: lookupIdent(literal), Literal: literal, Pos: pos}
}

func (l *Lexer) readNumber() Token {
	pos := l.pos
	isFloat := false
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	literal := l.input[pos:l.pos]
	if isFloat {
		return Token{Type: TokenFloat, Literal: literal, Pos: pos}
	}
	return Token{Type: TokenInt, Literal: literal, Pos: pos}
}

// readString reads a quoted literal. A backslash escapes the next byte.
func (l *Lexer) readString() Token {
	pos := l.pos
	quote := l.ch
	l.readChar()

	var sb strings.Builder
	for l.ch != quote {
		if l.ch == 0 {
			return Token{Type: TokenIllegal, Literal: l.input[pos:], Pos: pos}
		}
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar()
		}
		sb.WriteByte(l.ch)
		l.readChar()
	}
	l.readChar()
	return Token{Type: TokenString, Literal: sb.String(), Pos: pos}
}

// readVarRef reads ${...}, allowing nested braces inside.
func (l *Lexer) readVarRef() Token {
	pos := l.pos
	l.readChar() // $
	l.readChar() // {

	start := l.pos
	depth := 1
	for {
		switch l.ch {
		case 0:
			return Token{Type: TokenIllegal, Literal: l.input[pos:], Pos: pos}
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			break
		}
		l.readChar()
	}

	literal := strings.TrimSpace(l.input[start:l.pos])
	l.readChar()
	if literal == "" {
		return Token{Type: TokenIllegal, Literal: "${}", Pos: pos}
	}
	return Token{Type: TokenVarRef, Literal: literal, Pos: pos}
}

func lookupIdent(ident string) TokenType {
	switch strings.ToUpper(ident) {
	case "AND":
		return TokenAND
	case "OR":
		return TokenOR
	case "NOT":
		return TokenNOT
	case "TRUE", "FALSE":
		return TokenBool
	case "NULL", "NIL":
		return TokenNull
	}
	return TokenIdent
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
