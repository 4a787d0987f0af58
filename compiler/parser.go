package compiler

import (
	"fmt"

	"github.com/chazu/sol25/pkg/ast"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for SOL25 syntax
// ---------------------------------------------------------------------------

// Parser parses SOL25 source code into an AST.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	errors    []*Error
	input     string
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
		input: input,
	}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// failed reports whether an error has been recorded. Parsing stops at the
// first error.
func (p *Parser) failed() bool {
	return len(p.errors) > 0
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) (Token, bool) {
	tok := p.curToken
	if p.curTokenIs(t) {
		p.nextToken()
		return tok, true
	}
	p.errorf("expected %s, got %s", t, p.curToken)
	return tok, false
}

// errorf records a parse error at the current token. An error token from
// the lexer turns the error into a lexical one.
func (p *Parser) errorf(format string, args ...interface{}) {
	if p.failed() {
		return
	}
	if p.curTokenIs(TokenError) {
		p.errors = append(p.errors, newError(CodeLexical, p.curToken.Pos, "%s", p.curToken.Literal))
		return
	}
	p.errors = append(p.errors, newError(CodeSyntax, p.curToken.Pos, format, args...))
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []*Error {
	return p.errors
}

// Err returns the first parse error, or nil.
func (p *Parser) Err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return p.errors[0]
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// ParseProgram parses a whole source file. The first comment becomes the
// program description.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{Language: ast.Language}

	for !p.curTokenIs(TokenEOF) && !p.failed() {
		class := p.parseClass()
		if class == nil {
			break
		}
		prog.Classes = append(prog.Classes, class)
	}

	if comments := p.lexer.Comments(); len(comments) > 0 {
		prog.Description = comments[0]
	}
	return prog
}

// parseClass parses: class Name : Parent { methods }
func (p *Parser) parseClass() *ast.Class {
	start := p.curToken.Pos
	if _, ok := p.expect(TokenClass); !ok {
		return nil
	}
	name, ok := p.expect(TokenClassName)
	if !ok {
		return nil
	}
	if _, ok := p.expect(TokenColon); !ok {
		return nil
	}
	parent, ok := p.expect(TokenClassName)
	if !ok {
		return nil
	}
	if _, ok := p.expect(TokenLBrace); !ok {
		return nil
	}

	class := &ast.Class{Name: name.Literal, Parent: parent.Literal, Location: start}
	for !p.curTokenIs(TokenRBrace) && !p.failed() {
		m := p.parseMethod()
		if m == nil {
			return nil
		}
		class.Methods = append(class.Methods, m)
	}
	if _, ok := p.expect(TokenRBrace); !ok {
		return nil
	}
	return class
}

// parseMethod parses a selector followed by its body block.
func (p *Parser) parseMethod() *ast.Method {
	start := p.curToken.Pos
	var selector string

	switch p.curToken.Type {
	case TokenIdentifier:
		selector = p.curToken.Literal
		p.nextToken()
	case TokenKeyword:
		for p.curTokenIs(TokenKeyword) {
			selector += p.curToken.Literal
			p.nextToken()
		}
	default:
		p.errorf("expected method selector, got %s", p.curToken)
		return nil
	}

	if !p.curTokenIs(TokenLBracket) {
		p.errorf("expected method body for %s, got %s", selector, p.curToken)
		return nil
	}
	body := p.parseBlock()
	if body == nil {
		return nil
	}
	return &ast.Method{Selector: selector, Body: body, Location: start}
}

// parseBlock parses: [ :p1 :p2 | stmt. stmt. ]
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Location: p.curToken.Pos}
	if _, ok := p.expect(TokenLBracket); !ok {
		return nil
	}

	for p.curTokenIs(TokenBlockParam) {
		block.Params = append(block.Params, &ast.Param{
			Order:    len(block.Params) + 1,
			Name:     p.curToken.Literal,
			Location: p.curToken.Pos,
		})
		p.nextToken()
	}
	block.Arity = len(block.Params)

	if _, ok := p.expect(TokenBar); !ok {
		return nil
	}

	for !p.curTokenIs(TokenRBracket) && !p.failed() {
		stmt := p.parseAssign(len(block.Assigns) + 1)
		if stmt == nil {
			return nil
		}
		block.Assigns = append(block.Assigns, stmt)
	}

	if _, ok := p.expect(TokenRBracket); !ok {
		return nil
	}
	return block
}

// parseAssign parses: name := expr .
func (p *Parser) parseAssign(order int) *ast.Assign {
	start := p.curToken.Pos
	switch p.curToken.Type {
	case TokenIdentifier:
	case TokenSelf, TokenSuper, TokenNil, TokenTrue, TokenFalse, TokenClass:
		p.errorf("cannot assign to reserved word %s", p.curToken.Literal)
		return nil
	default:
		p.errorf("expected assignment, got %s", p.curToken)
		return nil
	}
	target := &ast.Var{Name: p.curToken.Literal, Location: start}
	p.nextToken()

	if _, ok := p.expect(TokenAssign); !ok {
		return nil
	}
	expr := p.parseExpr()
	if expr == nil {
		return nil
	}
	if _, ok := p.expect(TokenPeriod); !ok {
		return nil
	}
	return &ast.Assign{Order: order, Var: target, Expr: expr, Location: start}
}

// ---------------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------------

// parseExpr parses an operand followed by at most one unary selector or by
// a sequence of keyword parts. Sends are located at their first selector
// token.
func (p *Parser) parseExpr() *ast.Expr {
	receiver := p.parseOperand()
	if receiver == nil {
		return nil
	}

	switch p.curToken.Type {
	case TokenIdentifier:
		send := &ast.Send{Selector: p.curToken.Literal, Receiver: receiver, Location: p.curToken.Pos}
		p.nextToken()
		return &ast.Expr{Send: send}

	case TokenKeyword:
		send := &ast.Send{Receiver: receiver, Location: p.curToken.Pos}
		for p.curTokenIs(TokenKeyword) && !p.failed() {
			send.Selector += p.curToken.Literal
			p.nextToken()
			arg := p.parseOperand()
			if arg == nil {
				return nil
			}
			send.Args = append(send.Args, &ast.Arg{Order: len(send.Args) + 1, Expr: arg})
		}
		return &ast.Expr{Send: send}
	}
	return receiver
}

// parseOperand parses a literal, a variable, a block or a parenthesized
// expression.
func (p *Parser) parseOperand() *ast.Expr {
	tok := p.curToken

	switch tok.Type {
	case TokenInteger:
		p.nextToken()
		return &ast.Expr{Literal: &ast.Literal{Class: ast.LiteralInteger, Value: tok.Literal, Location: tok.Pos}}

	case TokenString:
		p.nextToken()
		return &ast.Expr{Literal: &ast.Literal{Class: ast.LiteralString, Value: tok.Literal, Location: tok.Pos}}

	case TokenNil:
		p.nextToken()
		return &ast.Expr{Literal: &ast.Literal{Class: ast.LiteralNil, Value: "nil", Location: tok.Pos}}

	case TokenTrue:
		p.nextToken()
		return &ast.Expr{Literal: &ast.Literal{Class: ast.LiteralTrue, Value: "true", Location: tok.Pos}}

	case TokenFalse:
		p.nextToken()
		return &ast.Expr{Literal: &ast.Literal{Class: ast.LiteralFalse, Value: "false", Location: tok.Pos}}

	case TokenClassName:
		p.nextToken()
		return &ast.Expr{Literal: &ast.Literal{Class: ast.LiteralClass, Value: tok.Literal, Location: tok.Pos}}

	case TokenIdentifier, TokenSelf, TokenSuper:
		p.nextToken()
		return &ast.Expr{Var: &ast.Var{Name: tok.Literal, Location: tok.Pos}}

	case TokenLBracket:
		block := p.parseBlock()
		if block == nil {
			return nil
		}
		return &ast.Expr{Block: block}

	case TokenLParen:
		p.nextToken()
		inner := p.parseExpr()
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(TokenRParen); !ok {
			return nil
		}
		return inner
	}

	p.errorf("unexpected %s in expression", tok)
	return nil
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// Parse parses source into a program without semantic checks.
func Parse(source string) (*ast.Program, error) {
	p := NewParser(source)
	prog := p.ParseProgram()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}

// Compile parses and analyzes source. The returned error is an *Error
// carrying the diagnostic code.
func Compile(source string) (*ast.Program, error) {
	prog, err := Parse(source)
	if err != nil {
		return nil, err
	}
	if err := Analyze(prog); err != nil {
		return nil, err
	}
	return prog, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string) *ast.Program {
	prog, err := Compile(source)
	if err != nil {
		panic(fmt.Sprintf("compile: %v", err))
	}
	return prog
}
