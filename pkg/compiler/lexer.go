package compiler

// TokenType represents the type of a token.
type TokenType uint8

const (
	TokenEOF     TokenType = iota
	TokenIdent             // Alphanumeric word with at least one letter
	TokenInt               // Run of decimal digits
	TokenLParen            // (
	TokenRParen            // )
	TokenComma             // ,
	TokenInvalid           // Anything else
)

// String returns the string representation of a token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenIdent:
		return "IDENT"
	case TokenInt:
		return "INT"
	case TokenLParen:
		return "LPAREN"
	case TokenRParen:
		return "RPAREN"
	case TokenComma:
		return "COMMA"
	case TokenInvalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Type  TokenType
	Value string
	Pos   int // Byte offset in the command text
}

// Lexer tokenizes the command part of a single normalized statement,
// e.g. "add(0,1)" or "jump(loop)". Input is expected to be lower-case with
// whitespace already removed.
type Lexer struct {
	input  string
	pos    int
	tokens []Token
}

// NewLexer creates a new lexer for the given command text.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input:  input,
		pos:    0,
		tokens: []Token{},
	}
}

// Tokenize tokenizes the entire input and returns the tokens. The last
// token is always TokenEOF.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		switch {
		case ch == '(':
			l.emit(TokenLParen, l.pos, l.pos+1)
			l.pos++

		case ch == ')':
			l.emit(TokenRParen, l.pos, l.pos+1)
			l.pos++

		case ch == ',':
			l.emit(TokenComma, l.pos, l.pos+1)
			l.pos++

		case isAlnum(ch):
			l.scanWord()

		default:
			l.emit(TokenInvalid, l.pos, l.pos+1)
			l.pos++
		}
	}

	l.tokens = append(l.tokens, Token{Type: TokenEOF, Pos: l.pos})
	return l.tokens
}

func (l *Lexer) emit(t TokenType, start, end int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: l.input[start:end], Pos: start})
}

func (l *Lexer) scanWord() {
	start := l.pos
	digitsOnly := true

	for l.pos < len(l.input) && isAlnum(l.input[l.pos]) {
		if !isDigit(l.input[l.pos]) {
			digitsOnly = false
		}
		l.pos++
	}

	if digitsOnly {
		l.emit(TokenInt, start, l.pos)
	} else {
		l.emit(TokenIdent, start, l.pos)
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlnum(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'z')
}

// IsLabel reports whether s is a valid label: one or more lower-case
// ASCII letters or digits.
func IsLabel(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAlnum(s[i]) {
			return false
		}
	}
	return true
}
