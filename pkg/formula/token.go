package formula

// TokenType represents the kinds of tokens in a formula.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenIdentifier
	TokenOperator
	TokenArrow
	TokenLeftParen
	TokenRightParen
	TokenLeftBracket
	TokenRightBracket
	TokenComma
	TokenDot
	TokenQuestion
	TokenColon
)

var tokenNames = [...]string{
	TokenEOF:          "end of formula",
	TokenNumber:       "number",
	TokenString:       "string",
	TokenIdentifier:   "identifier",
	TokenOperator:     "operator",
	TokenArrow:        "'=>'",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenLeftBracket:  "'['",
	TokenRightBracket: "']'",
	TokenComma:        "','",
	TokenDot:          "'.'",
	TokenQuestion:     "'?'",
	TokenColon:        "':'",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "unknown"
}

// Token is a lexical token with its byte position in the formula source.
// String tokens hold the unescaped value.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// operators lists multi-character operators longest first so the lexer can
// match greedily.
var operators = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||",
	"<", ">", "+", "-", "*", "/", "%", "!",
}
