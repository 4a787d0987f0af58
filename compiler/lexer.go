package compiler

import (
	"fmt"
	"unicode/utf8"

	"github.com/chazu/sol25/pkg/ast"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for SOL25 syntax
// ---------------------------------------------------------------------------

// Lexer tokenizes SOL25 source code.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)

	comments []string // comment bodies in source order
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		l.col++
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() ast.Position {
	return ast.Position{Line: l.line, Column: l.col}
}

// atEOF reports whether the whole input has been consumed.
func (l *Lexer) atEOF() bool {
	return l.ch == 0 && l.pos >= len(l.input)
}

// Comments returns the bodies of the comments skipped so far.
func (l *Lexer) Comments() []string {
	return l.comments
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	if tok, ok := l.skipWhitespaceAndComments(); !ok {
		return tok
	}

	pos := l.position()

	switch {
	case l.atEOF():
		return Token{Type: TokenEOF, Literal: "", Pos: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}

	case l.ch == '[':
		l.readChar()
		return Token{Type: TokenLBracket, Literal: "[", Pos: pos}

	case l.ch == ']':
		l.readChar()
		return Token{Type: TokenRBracket, Literal: "]", Pos: pos}

	case l.ch == '{':
		l.readChar()
		return Token{Type: TokenLBrace, Literal: "{", Pos: pos}

	case l.ch == '}':
		l.readChar()
		return Token{Type: TokenRBrace, Literal: "}", Pos: pos}

	case l.ch == '.':
		l.readChar()
		return Token{Type: TokenPeriod, Literal: ".", Pos: pos}

	case l.ch == '|':
		l.readChar()
		return Token{Type: TokenBar, Literal: "|", Pos: pos}

	case l.ch == ':':
		l.readChar()
		if l.ch == '=' {
			l.readChar()
			return Token{Type: TokenAssign, Literal: ":=", Pos: pos}
		}
		if isIdentStart(l.ch) {
			name := l.readWord()
			return Token{Type: TokenBlockParam, Literal: name, Pos: pos}
		}
		return Token{Type: TokenColon, Literal: ":", Pos: pos}

	case l.ch == '\'':
		return l.readString(pos)

	case isDigit(l.ch):
		return l.readNumber(pos)

	case (l.ch == '-' || l.ch == '+') && isDigit(l.peekChar()):
		return l.readNumber(pos)

	case isUpper(l.ch):
		start := l.pos
		for isLetter(l.ch) || isDigit(l.ch) {
			l.readChar()
		}
		return Token{Type: TokenClassName, Literal: l.input[start:l.pos], Pos: pos}

	case isIdentStart(l.ch):
		return l.readIdentifierOrKeyword(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character %q", ch), Pos: pos}
	}
}

// skipWhitespaceAndComments skips whitespace and "..." comments. It
// returns an error token for an unterminated comment.
func (l *Lexer) skipWhitespaceAndComments() (Token, bool) {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' || l.ch == '\v' {
			l.readChar()
		}

		if l.ch != '"' {
			return Token{}, true
		}

		pos := l.position()
		l.readChar()
		start := l.pos
		for l.ch != '"' && !l.atEOF() {
			l.readChar()
		}
		if l.ch != '"' {
			return Token{Type: TokenError, Literal: "unterminated comment", Pos: pos}, false
		}
		l.comments = append(l.comments, l.input[start:l.pos])
		l.readChar()
	}
}

// readString reads a quoted string. The literal keeps escape sequences as
// written; only \n, \' and \\ are accepted.
func (l *Lexer) readString(pos ast.Position) Token {
	l.readChar() // consume opening '
	start := l.pos

	for !l.atEOF() && l.ch != '\'' {
		if l.ch == '\\' {
			switch l.peekChar() {
			case 'n', '\'', '\\':
				l.readChar()
			default:
				return Token{Type: TokenError, Literal: fmt.Sprintf("invalid escape sequence \\%c", l.peekChar()), Pos: pos}
			}
		}
		l.readChar()
	}

	if l.ch != '\'' {
		return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
	}
	literal := l.input[start:l.pos]
	l.readChar() // consume closing '
	return Token{Type: TokenString, Literal: literal, Pos: pos}
}

// readNumber reads an optionally signed decimal integer.
func (l *Lexer) readNumber(pos ast.Position) Token {
	start := l.pos
	if l.ch == '-' || l.ch == '+' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	return Token{Type: TokenInteger, Literal: l.input[start:l.pos], Pos: pos}
}

// readWord reads the rest of an identifier.
func (l *Lexer) readWord() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readIdentifierOrKeyword reads an identifier, a reserved word or a
// keyword selector part.
func (l *Lexer) readIdentifierOrKeyword(pos ast.Position) Token {
	literal := l.readWord()

	// Keyword part: identifier immediately followed by ':' (but not ':=')
	if l.ch == ':' && l.peekChar() != '=' {
		l.readChar() // consume :
		return Token{Type: TokenKeyword, Literal: literal + ":", Pos: pos}
	}

	if tokType, ok := reservedWords[literal]; ok {
		return Token{Type: tokType, Literal: literal, Pos: pos}
	}

	return Token{Type: TokenIdentifier, Literal: literal, Pos: pos}
}

// Helper functions

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isUpper(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isIdentStart(r rune) bool {
	return (r >= 'a' && r <= 'z') || r == '_'
}

// Tokenize returns all tokens from the input.
func Tokenize(input string) []Token {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == TokenEOF || tok.Type == TokenError {
			break
		}
	}
	return tokens
}

// Description returns the body of the first comment in source, which
// becomes the program description.
func Description(source string) string {
	l := NewLexer(source)
	for {
		tok := l.NextToken()
		if len(l.comments) > 0 {
			return l.comments[0]
		}
		if tok.Type == TokenEOF || tok.Type == TokenError {
			return ""
		}
	}
}
