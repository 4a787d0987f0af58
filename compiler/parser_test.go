package compiler

import (
	"testing"

	"github.com/chazu/sol25/pkg/ast"
)

func parseMain(t *testing.T, body string) *ast.Block {
	t.Helper()
	prog, err := Parse("class Main : Object { run [|" + body + "] }")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return prog.Classes[0].Methods[0].Body
}

func TestParserClassStructure(t *testing.T) {
	src := `"Demo"
class Main : Object {
  run [| x := 1. ]
  plus:with: [ :a :b | r := a. ]
}
class Other : Main {}`

	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if prog.Language != "SOL25" {
		t.Errorf("Language = %q, want SOL25", prog.Language)
	}
	if prog.Description != "Demo" {
		t.Errorf("Description = %q, want Demo", prog.Description)
	}
	if len(prog.Classes) != 2 {
		t.Fatalf("got %d classes, want 2", len(prog.Classes))
	}

	main := prog.Classes[0]
	if main.Name != "Main" || main.Parent != "Object" {
		t.Errorf("class = %s : %s, want Main : Object", main.Name, main.Parent)
	}
	if len(main.Methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(main.Methods))
	}
	m := main.Methods[1]
	if m.Selector != "plus:with:" {
		t.Errorf("selector = %q, want plus:with:", m.Selector)
	}
	if m.Body.Arity != 2 || m.Body.Params[0].Name != "a" || m.Body.Params[1].Order != 2 {
		t.Errorf("params = %+v", m.Body.Params)
	}
	if prog.Classes[1].Parent != "Main" || len(prog.Classes[1].Methods) != 0 {
		t.Errorf("second class = %+v", prog.Classes[1])
	}
}

func TestParserLiterals(t *testing.T) {
	tests := []struct {
		src   string
		class string
		value string
	}{
		{"42", ast.LiteralInteger, "42"},
		{"-5", ast.LiteralInteger, "-5"},
		{`'a\nb'`, ast.LiteralString, `a\nb`},
		{"nil", ast.LiteralNil, "nil"},
		{"true", ast.LiteralTrue, "true"},
		{"false", ast.LiteralFalse, "false"},
		{"Integer", ast.LiteralClass, "Integer"},
	}

	for _, tc := range tests {
		body := parseMain(t, " x := "+tc.src+". ")
		lit := body.Assigns[0].Expr.Literal
		if lit == nil {
			t.Errorf("%s: not a literal: %+v", tc.src, body.Assigns[0].Expr)
			continue
		}
		if lit.Class != tc.class || lit.Value != tc.value {
			t.Errorf("%s: literal = %s/%q, want %s/%q", tc.src, lit.Class, lit.Value, tc.class, tc.value)
		}
	}
}

func TestParserSends(t *testing.T) {
	body := parseMain(t, ` a := 1. b := a plus: 2. c := a asString. d := (a plus: 1) multiplyBy: (b minus: 3) . e := self foo: 1 bar: 'x'.`)
	if len(body.Assigns) != 5 {
		t.Fatalf("got %d statements, want 5", len(body.Assigns))
	}
	for i, a := range body.Assigns {
		if a.Order != i+1 {
			t.Errorf("statement %d has order %d", i, a.Order)
		}
	}

	s := body.Assigns[1].Expr.Send
	if s == nil || s.Selector != "plus:" || s.Receiver.Var.Name != "a" || len(s.Args) != 1 {
		t.Errorf("b := a plus: 2 parsed as %+v", s)
	}

	s = body.Assigns[2].Expr.Send
	if s == nil || s.Selector != "asString" || len(s.Args) != 0 {
		t.Errorf("c := a asString parsed as %+v", s)
	}

	s = body.Assigns[3].Expr.Send
	if s == nil || s.Selector != "multiplyBy:" {
		t.Fatalf("d parsed as %+v", s)
	}
	if inner := s.Receiver.Send; inner == nil || inner.Selector != "plus:" {
		t.Errorf("parenthesized receiver = %+v", s.Receiver)
	}
	if arg := s.Args[0].Expr.Send; arg == nil || arg.Selector != "minus:" {
		t.Errorf("parenthesized argument = %+v", s.Args[0].Expr)
	}

	s = body.Assigns[4].Expr.Send
	if s == nil || s.Selector != "foo:bar:" || len(s.Args) != 2 || s.Args[1].Order != 2 {
		t.Errorf("e parsed as %+v", s)
	}
	if s.Receiver.Var == nil || s.Receiver.Var.Name != "self" {
		t.Errorf("receiver = %+v, want self", s.Receiver)
	}
}

func TestParserNestedBlock(t *testing.T) {
	body := parseMain(t, ` b := [:x :y | z := x plus: y. ]. `)
	blk := body.Assigns[0].Expr.Block
	if blk == nil {
		t.Fatalf("not a block: %+v", body.Assigns[0].Expr)
	}
	if blk.Arity != 2 || len(blk.Assigns) != 1 {
		t.Errorf("block = %+v", blk)
	}
}

func TestParserSyntaxErrors(t *testing.T) {
	tests := []string{
		`class Main Object { }`,
		`class Main : Object { run [ x := 1. ] }`,
		`class Main : Object { run [| x := 1 ] }`,
		`class Main : Object { run [| x := a foo bar. ] }`,
		`class Main : Object { run [| self := 1. ] }`,
		`class Main : Object { self [| ] }`,
		`class Main : Object { run [| x := . ] }`,
		`class main : Object { }`,
		`class Main : Object { run [| x := (1 plus: 2. ] }`,
	}

	for _, src := range tests {
		_, err := Parse(src)
		if err == nil {
			t.Errorf("%q: expected error", src)
			continue
		}
		if code := CodeOf(err); code != CodeSyntax {
			t.Errorf("%q: code = %d, want %d (%v)", src, code, CodeSyntax, err)
		}
	}
}

func TestParserLexicalErrors(t *testing.T) {
	tests := []string{
		`class Main : Object { run [| x := 'abc. ] }`,
		`class Main : Object { run [| x := 'a\qb'. ] }`,
		`class Main : Object { run [| x := 1 # 2. ] }`,
		`"unterminated class Main : Object {}`,
	}

	for _, src := range tests {
		_, err := Parse(src)
		if code := CodeOf(err); code != CodeLexical {
			t.Errorf("%q: code = %d, want %d (%v)", src, code, CodeLexical, err)
		}
	}
}

func TestParserErrorPosition(t *testing.T) {
	_, err := Parse("class Main : Object {\n  run [| x := 1 ]\n}")
	var perr *Error
	if e, ok := err.(*Error); ok {
		perr = e
	}
	if perr == nil {
		t.Fatalf("error = %v, want *Error", err)
	}
	if perr.Pos.Line != 2 {
		t.Errorf("error line = %d, want 2", perr.Pos.Line)
	}
}
