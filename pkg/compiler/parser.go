package compiler

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	statementTerminator = ';'
	labelSeparator      = ":"
)

// AsmStatement is one parsed statement before lowering to a vm.Command.
type AsmStatement struct {
	Index    int     // Instruction index
	Label    string  // Optional label annotating this instruction
	Name     string  // Command name, lower-case
	Operands []Token // TokenInt arguments, or one label token for jump
}

// AsmProgram represents a parsed program.
type AsmProgram struct {
	Statements []AsmStatement
	Labels     map[string]int // label -> instruction index, last definition wins
	Redefined  []string       // labels defined more than once, in order of redefinition
}

// Parser splits normalized program text into statements.
type Parser struct {
	source  string
	program *AsmProgram
}

// NewParser creates a new parser for the given program text.
func NewParser(input string) *Parser {
	return &Parser{
		source: Normalize(input),
		program: &AsmProgram{
			Statements: []AsmStatement{},
			Labels:     make(map[string]int),
		},
	}
}

// Normalize folds text to lower case and removes all whitespace.
func Normalize(text string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.ToLower(text))
}

// Parse parses the entire input. Any malformed statement fails the whole
// program.
func (p *Parser) Parse() (*AsmProgram, error) {
	src := p.source
	if src == "" {
		return nil, fmt.Errorf("%w: empty program", ErrRejected)
	}
	if src[len(src)-1] != statementTerminator {
		return nil, fmt.Errorf("%w: missing final %q", ErrRejected, statementTerminator)
	}

	raw := strings.Split(src[:len(src)-1], string(statementTerminator))
	for i, text := range raw {
		stmt, err := p.parseStatement(i, text)
		if err != nil {
			return nil, fmt.Errorf("%w: statement %d: %v", ErrRejected, i, err)
		}
		p.program.Statements = append(p.program.Statements, stmt)
	}

	return p.program, nil
}

func (p *Parser) parseStatement(index int, text string) (AsmStatement, error) {
	stmt := AsmStatement{Index: index}

	if label, rest, ok := strings.Cut(text, labelSeparator); ok {
		if !IsLabel(label) {
			return stmt, fmt.Errorf("invalid label %q", label)
		}
		if _, seen := p.program.Labels[label]; seen {
			p.program.Redefined = append(p.program.Redefined, label)
		}
		p.program.Labels[label] = index
		stmt.Label = label
		text = rest
	}

	tokens := NewLexer(text).Tokenize()
	return p.parseCommand(stmt, tokens)
}

// parseCommand checks tokens against
//
//	name "(" [ arg { "," arg } ] ")"
//
// where arg is an integer, or a single label for jump.
func (p *Parser) parseCommand(stmt AsmStatement, tokens []Token) (AsmStatement, error) {
	pos := 0
	next := func() Token {
		tok := tokens[pos]
		if tok.Type != TokenEOF {
			pos++
		}
		return tok
	}

	name := next()
	if name.Type != TokenIdent {
		return stmt, fmt.Errorf("expected command name, got %s %q", name.Type, name.Value)
	}
	stmt.Name = name.Value
	isJump := name.Value == jumpName

	if tok := next(); tok.Type != TokenLParen {
		return stmt, fmt.Errorf("expected '(' after %s", name.Value)
	}

	stmt.Operands = []Token{}
	tok := next()
	if tok.Type != TokenRParen {
		for {
			if !acceptsOperand(tok, isJump) {
				return stmt, fmt.Errorf("invalid argument %q", tok.Value)
			}
			stmt.Operands = append(stmt.Operands, tok)

			tok = next()
			if tok.Type == TokenRParen {
				break
			}
			if tok.Type != TokenComma {
				return stmt, fmt.Errorf("expected ',' or ')', got %q", tok.Value)
			}
			tok = next()
		}
	}

	if tok := next(); tok.Type != TokenEOF {
		return stmt, fmt.Errorf("unexpected %q after ')'", tok.Value)
	}
	if isJump && len(stmt.Operands) != 1 {
		return stmt, fmt.Errorf("jump takes exactly one label")
	}
	return stmt, nil
}

func acceptsOperand(tok Token, isJump bool) bool {
	if isJump {
		return tok.Type == TokenIdent || tok.Type == TokenInt
	}
	return tok.Type == TokenInt
}
