package formula

import (
	"fmt"
	"strconv"
)

// maxNesting bounds expression nesting so hostile input cannot exhaust the
// stack.
const maxNesting = 256

// Parser parses tokens into an AST by recursive descent, one function per
// precedence level.
type Parser struct {
	tokens []Token
	pos    int
	depth  int
}

// NewParser creates a parser over tokens produced by a Lexer.
func NewParser(tokens []Token) *Parser {
	return &Parser{tokens: tokens}
}

// ParseExpression lexes and parses source into an AST.
func ParseExpression(source string) (Node, error) {
	tokens, err := NewLexer(source).Tokenize()
	if err != nil {
		return nil, err
	}
	return NewParser(tokens).Parse()
}

// Parse parses a complete expression and requires that all tokens are
// consumed.
func (p *Parser) Parse() (Node, error) {
	if p.peek().Type == TokenEOF {
		return nil, &SyntaxError{Pos: p.peek().Pos, Msg: "empty formula"}
	}

	node, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.Type != TokenEOF {
		return nil, p.unexpected(tok)
	}
	return node, nil
}

func (p *Parser) peek() Token {
	return p.peekAt(0)
}

func (p *Parser) peekAt(offset int) Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		end := 0
		if len(p.tokens) > 0 {
			end = p.tokens[len(p.tokens)-1].Pos
		}
		return Token{Type: TokenEOF, Pos: end}
	}
	return p.tokens[idx]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) isOperator(values ...string) bool {
	tok := p.peek()
	if tok.Type != TokenOperator {
		return false
	}
	for _, v := range values {
		if tok.Value == v {
			return true
		}
	}
	return false
}

func (p *Parser) expect(typ TokenType) (Token, error) {
	tok := p.peek()
	if tok.Type != typ {
		return Token{}, &SyntaxError{Pos: tok.Pos, Msg: fmt.Sprintf("expected %s, found %s", typ, describe(tok))}
	}
	return p.advance(), nil
}

func (p *Parser) unexpected(tok Token) error {
	return &SyntaxError{Pos: tok.Pos, Msg: "unexpected " + describe(tok)}
}

func describe(tok Token) string {
	switch tok.Type {
	case TokenEOF:
		return tok.Type.String()
	case TokenString:
		return "string " + strconv.Quote(tok.Value)
	default:
		return strconv.Quote(tok.Value)
	}
}

// tokenEnd returns the byte offset just past the previously consumed token.
func (p *Parser) tokenEnd() int {
	if p.pos == 0 {
		return 0
	}
	tok := p.tokens[p.pos-1]
	if tok.Type == TokenString {
		// Value is unescaped; the end is the start of the next token at the
		// latest.
		return p.peek().Pos
	}
	return tok.Pos + len(tok.Value)
}

// parseExpr handles lambdas and the ternary operator.
func (p *Parser) parseExpr() (Node, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNesting {
		return nil, &SyntaxError{Pos: p.peek().Pos, Msg: "expression nested too deeply"}
	}

	if params, ok := p.lambdaParams(); ok {
		return p.parseLambda(params)
	}
	return p.parseTernary()
}

// lambdaParams looks ahead for "x =>" or "(a, b) =>" without consuming.
func (p *Parser) lambdaParams() ([]string, bool) {
	tok := p.peek()
	if tok.Type == TokenIdentifier && p.peekAt(1).Type == TokenArrow {
		return []string{tok.Value}, true
	}
	if tok.Type != TokenLeftParen {
		return nil, false
	}

	var params []string
	offset := 1
	for {
		tok := p.peekAt(offset)
		switch {
		case tok.Type == TokenRightParen && (len(params) == 0 || p.peekAt(offset-1).Type == TokenIdentifier):
			return params, p.peekAt(offset+1).Type == TokenArrow
		case tok.Type == TokenIdentifier && (len(params) == 0 || p.peekAt(offset-1).Type == TokenComma):
			params = append(params, tok.Value)
		case tok.Type == TokenComma && len(params) > 0 && p.peekAt(offset-1).Type == TokenIdentifier:
		default:
			return nil, false
		}
		offset++
	}
}

func (p *Parser) parseLambda(params []string) (Node, error) {
	start := p.peek().Pos
	for p.peek().Type != TokenArrow {
		p.advance()
	}
	p.advance()

	body, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &LambdaNode{Params: params, Body: body, Pos: Position{Start: start, End: body.Position().End}}, nil
}

func (p *Parser) parseTernary() (Node, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().Type != TokenQuestion {
		return cond, nil
	}
	p.advance()

	then, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TokenColon); err != nil {
		return nil, err
	}
	otherwise, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	return &TernaryNode{
		Cond: cond,
		Then: then,
		Else: otherwise,
		Pos:  Position{Start: cond.Position().Start, End: otherwise.Position().End},
	}, nil
}

func (p *Parser) parseOr() (Node, error) {
	return p.parseLogical("||", p.parseAnd)
}

func (p *Parser) parseAnd() (Node, error) {
	return p.parseLogical("&&", p.parseEquality)
}

func (p *Parser) parseLogical(op string, next func() (Node, error)) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.isOperator(op) {
		p.advance()
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &LogicalNode{
			Op:    op,
			Left:  left,
			Right: right,
			Pos:   Position{Start: left.Position().Start, End: right.Position().End},
		}
	}
	return left, nil
}

func (p *Parser) parseEquality() (Node, error) {
	return p.parseBinary(p.parseComparison, "==", "!=", "===", "!==")
}

func (p *Parser) parseComparison() (Node, error) {
	return p.parseBinary(p.parseAddition, "<", "<=", ">", ">=")
}

func (p *Parser) parseAddition() (Node, error) {
	return p.parseBinary(p.parseMultiplication, "+", "-")
}

func (p *Parser) parseMultiplication() (Node, error) {
	return p.parseBinary(p.parseUnary, "*", "/", "%")
}

// parseBinary parses a left-associative chain of the given operators.
func (p *Parser) parseBinary(next func() (Node, error), ops ...string) (Node, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}
	for p.isOperator(ops...) {
		op := p.advance().Value
		right, err := next()
		if err != nil {
			return nil, err
		}
		left = &BinaryNode{
			Op:    op,
			Left:  left,
			Right: right,
			Pos:   Position{Start: left.Position().Start, End: right.Position().End},
		}
	}
	return left, nil
}

func (p *Parser) parseUnary() (Node, error) {
	if !p.isOperator("!", "-", "+") {
		return p.parsePostfix()
	}

	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNesting {
		return nil, &SyntaxError{Pos: p.peek().Pos, Msg: "expression nested too deeply"}
	}

	tok := p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &UnaryNode{
		Op:      tok.Value,
		Operand: operand,
		Pos:     Position{Start: tok.Pos, End: operand.Position().End},
	}, nil
}

func (p *Parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for {
		switch p.peek().Type {
		case TokenDot:
			p.advance()
			name, err := p.expect(TokenIdentifier)
			if err != nil {
				return nil, err
			}
			node = &MemberNode{
				Object: node,
				Name:   name.Value,
				Pos:    Position{Start: node.Position().Start, End: name.Pos + len(name.Value)},
			}

		case TokenLeftBracket:
			p.advance()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			closing, err := p.expect(TokenRightBracket)
			if err != nil {
				return nil, err
			}
			node = &IndexNode{
				Object: node,
				Index:  index,
				Pos:    Position{Start: node.Position().Start, End: closing.Pos + 1},
			}

		case TokenLeftParen:
			p.advance()
			args, closing, err := p.parseList(TokenRightParen)
			if err != nil {
				return nil, err
			}
			node = &CallNode{
				Callee: node,
				Args:   args,
				Pos:    Position{Start: node.Position().Start, End: closing.Pos + 1},
			}

		default:
			return node, nil
		}
	}
}

// parseList parses comma-separated expressions up to and including the
// closing token.
func (p *Parser) parseList(closing TokenType) ([]Node, Token, error) {
	var items []Node
	if p.peek().Type == closing {
		return items, p.advance(), nil
	}

	for {
		item, err := p.parseExpr()
		if err != nil {
			return nil, Token{}, err
		}
		items = append(items, item)

		if p.peek().Type != TokenComma {
			break
		}
		p.advance()
	}

	end, err := p.expect(closing)
	if err != nil {
		return nil, Token{}, err
	}
	return items, end, nil
}

func (p *Parser) parsePrimary() (Node, error) {
	tok := p.peek()

	switch tok.Type {
	case TokenNumber:
		p.advance()
		value, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return nil, &SyntaxError{Pos: tok.Pos, Msg: "invalid number " + strconv.Quote(tok.Value)}
		}
		return &NumberNode{Value: value, Pos: Position{Start: tok.Pos, End: tok.Pos + len(tok.Value)}}, nil

	case TokenString:
		p.advance()
		return &StringNode{Value: tok.Value, Pos: Position{Start: tok.Pos, End: p.tokenEnd()}}, nil

	case TokenIdentifier:
		p.advance()
		pos := Position{Start: tok.Pos, End: tok.Pos + len(tok.Value)}
		switch tok.Value {
		case "true", "false":
			return &BoolNode{Value: tok.Value == "true", Pos: pos}, nil
		case "null", "undefined":
			return &NullNode{Pos: pos}, nil
		default:
			return &IdentNode{Name: tok.Value, Pos: pos}, nil
		}

	case TokenLeftBracket:
		p.advance()
		elements, closing, err := p.parseList(TokenRightBracket)
		if err != nil {
			return nil, err
		}
		return &ArrayNode{Elements: elements, Pos: Position{Start: tok.Pos, End: closing.Pos + 1}}, nil

	case TokenLeftParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRightParen); err != nil {
			return nil, err
		}
		return inner, nil

	default:
		return nil, p.unexpected(tok)
	}
}
