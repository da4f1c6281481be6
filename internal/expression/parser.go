package expression

import (
	"strconv"
	"strings"
)

// Parser builds an Expression from a condition string. Precedence from
// lowest: OR, AND, NOT, comparison.
type Parser struct {
	input     string
	lexer     *Lexer
	curToken  Token
	peekToken Token
}

// NewParser creates a Parser for input.
func NewParser(input string) *Parser {
	p := &Parser{input: input, lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

func (p *Parser) fail(expected string) error {
	return NewParseError(p.input, p.curToken.Pos, expected, describe(p.curToken))
}

// Parse parses the whole input.
func (p *Parser) Parse() (*Expression, error) {
	if strings.TrimSpace(p.input) == "" {
		return nil, p.fail("condition")
	}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.curToken.Type != TokenEOF {
		return nil, p.fail("end of condition")
	}
	return &Expression{Source: p.input, Root: root}, nil
}

func (p *Parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == TokenOR {
		p.nextToken()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &LogicalNode{Left: left, Operator: "OR", Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.curToken.Type == TokenAND {
		p.nextToken()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &LogicalNode{Left: left, Operator: "AND", Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Node, error) {
	if p.curToken.Type == TokenNOT {
		p.nextToken()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &NotNode{Operand: operand}, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if !isComparisonOperator(p.curToken.Type) {
		return left, nil
	}
	op := p.curToken.Literal
	p.nextToken()
	right, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if isComparisonOperator(p.curToken.Type) {
		return nil, p.fail("AND, OR or end of condition")
	}
	return &ComparisonNode{Left: left, Operator: op, Right: right}, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.curToken
	switch tok.Type {
	case TokenLParen:
		p.nextToken()
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.curToken.Type != TokenRParen {
			return nil, p.fail(")")
		}
		p.nextToken()
		return expr, nil

	case TokenVarRef:
		p.nextToken()
		return &VariableNode{Name: tok.Literal}, nil

	case TokenIdent:
		p.nextToken()
		return &VariableNode{Name: tok.Literal, Bare: true}, nil

	case TokenInt:
		val, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			return nil, p.fail("integer in range")
		}
		p.nextToken()
		return &LiteralNode{Value: val}, nil

	case TokenFloat:
		val, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return nil, p.fail("number")
		}
		p.nextToken()
		return &LiteralNode{Value: val}, nil

	case TokenString:
		p.nextToken()
		return &LiteralNode{Value: tok.Literal}, nil

	case TokenBool:
		p.nextToken()
		return &LiteralNode{Value: strings.EqualFold(tok.Literal, "true")}, nil

	case TokenNull:
		p.nextToken()
		return &LiteralNode{Value: nil}, nil
	}
	return nil, p.fail("operand")
}

func isComparisonOperator(t TokenType) bool {
	switch t {
	case TokenEQ, TokenNE, TokenLT, TokenGT, TokenLE, TokenGE:
		return true
	}
	return false
}

// Parse parses a condition string.
func Parse(input string) (*Expression, error) {
	return NewParser(input).Parse()
}
