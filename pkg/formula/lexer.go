package formula

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// character classification constants.
const (
	charQuote      = '"'
	charApostrophe = '\''
	charBackslash  = '\\'
	charPeriod     = '.'
	charUnderscore = '_'
	charDollar     = '$'
)

var punctuation = map[byte]TokenType{
	'(': TokenLeftParen,
	')': TokenRightParen,
	'[': TokenLeftBracket,
	']': TokenRightBracket,
	',': TokenComma,
	'.': TokenDot,
	'?': TokenQuestion,
	':': TokenColon,
}

// Lexer tokenizes formula source.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a lexer for input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize splits the input into tokens, ending with a TokenEOF.
// It stops at the first malformed token.
func (l *Lexer) Tokenize() ([]Token, error) {
	for {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			l.tokens = append(l.tokens, Token{Type: TokenEOF, Pos: l.pos})
			return l.tokens, nil
		}

		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		l.tokens = append(l.tokens, tok)
	}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		l.pos += size
	}
}

func (l *Lexer) next() (Token, error) {
	start := l.pos
	ch := l.input[l.pos]

	switch {
	case isDigit(ch) || (ch == charPeriod && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1])):
		return l.lexNumber()
	case ch == charQuote || ch == charApostrophe:
		return l.lexString(ch)
	case isIdentStart(l.input[l.pos:]):
		return l.lexIdentifier(), nil
	}

	if typ, ok := punctuation[ch]; ok {
		l.pos++
		return Token{Type: typ, Value: string(ch), Pos: start}, nil
	}

	if strings.HasPrefix(l.input[l.pos:], "=>") {
		l.pos += 2
		return Token{Type: TokenArrow, Value: "=>", Pos: start}, nil
	}

	for _, op := range operators {
		if strings.HasPrefix(l.input[l.pos:], op) {
			l.pos += len(op)
			return Token{Type: TokenOperator, Value: op, Pos: start}, nil
		}
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.pos:])
	return Token{}, &SyntaxError{Pos: start, Msg: "unexpected character " + strconv.QuoteRune(r)}
}

func (l *Lexer) lexNumber() (Token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == charPeriod {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		mark := l.pos
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			// Not an exponent; "2e" lexes as 2 followed by identifier e.
			l.pos = mark
		} else {
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.pos++
			}
		}
	}

	text := l.input[start:l.pos]
	if _, err := strconv.ParseFloat(text, 64); err != nil {
		return Token{}, &SyntaxError{Pos: start, Msg: "invalid number " + strconv.Quote(text)}
	}
	return Token{Type: TokenNumber, Value: text, Pos: start}, nil
}

func (l *Lexer) lexString(quote byte) (Token, error) {
	start := l.pos
	l.pos++

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case quote:
			l.pos++
			return Token{Type: TokenString, Value: sb.String(), Pos: start}, nil
		case charBackslash:
			if err := l.lexEscape(&sb); err != nil {
				return Token{}, err
			}
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}

	return Token{}, &SyntaxError{Pos: start, Msg: "unterminated string"}
}

// lexEscape consumes one backslash escape sequence at l.pos.
func (l *Lexer) lexEscape(sb *strings.Builder) error {
	start := l.pos
	l.pos++
	if l.pos >= len(l.input) {
		return &SyntaxError{Pos: start, Msg: "unterminated escape sequence"}
	}

	ch := l.input[l.pos]
	l.pos++
	switch ch {
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case 'u':
		if l.pos+4 > len(l.input) {
			return &SyntaxError{Pos: start, Msg: "invalid unicode escape"}
		}
		code, err := strconv.ParseUint(l.input[l.pos:l.pos+4], 16, 32)
		if err != nil {
			return &SyntaxError{Pos: start, Msg: "invalid unicode escape"}
		}
		sb.WriteRune(rune(code))
		l.pos += 4
	default:
		// \\, \", \' and any other character stand for themselves.
		sb.WriteByte(ch)
	}
	return nil
}

func (l *Lexer) lexIdentifier() Token {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isIdentRune(r) {
			break
		}
		l.pos += size
	}
	return Token{Type: TokenIdentifier, Value: l.input[start:l.pos], Pos: start}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r == charUnderscore || r == charDollar || unicode.IsLetter(r)
}

func isIdentRune(r rune) bool {
	return r == charUnderscore || r == charDollar || unicode.IsLetter(r) || unicode.IsDigit(r)
}
