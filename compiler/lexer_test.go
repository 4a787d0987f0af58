package compiler

import (
	"testing"
)

func TestLexerBasicTokens(t *testing.T) {
	input := `( ) [ ] { } . := : |`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenLParen, "("},
		{TokenRParen, ")"},
		{TokenLBracket, "["},
		{TokenRBracket, "]"},
		{TokenLBrace, "{"},
		{TokenRBrace, "}"},
		{TokenPeriod, "."},
		{TokenAssign, ":="},
		{TokenColon, ":"},
		{TokenBar, "|"},
		{TokenEOF, ""},
	}

	l := NewLexer(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Errorf("token[%d] type = %v, want %v", i, tok.Type, exp.typ)
		}
		if tok.Literal != exp.lit {
			t.Errorf("token[%d] literal = %q, want %q", i, tok.Literal, exp.lit)
		}
	}
}

func TestLexerIntegers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"42", "42"},
		{"0", "0"},
		{"-123", "-123"},
		{"+7", "+7"},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input).NextToken()
		if tok.Type != TokenInteger {
			t.Errorf("%q: type = %v, want INTEGER", tc.input, tok.Type)
			continue
		}
		if tok.Literal != tc.want {
			t.Errorf("%q: literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerStringsKeepEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`'hello'`, "hello"},
		{`''`, ""},
		{`'a\nb'`, `a\nb`},
		{`'it\'s'`, `it\'s`},
		{`'back\\slash'`, `back\\slash`},
		{`'héllo'`, "héllo"},
	}

	for _, tc := range tests {
		tok := NewLexer(tc.input).NextToken()
		if tok.Type != TokenString {
			t.Errorf("%s: type = %v, want STRING", tc.input, tok.Type)
			continue
		}
		if tok.Literal != tc.want {
			t.Errorf("%s: literal = %q, want %q", tc.input, tok.Literal, tc.want)
		}
	}
}

func TestLexerIdentifiersAndKeywords(t *testing.T) {
	input := `foo _tmp Main plus: x := :arg self super nil true false class`
	expected := []struct {
		typ TokenType
		lit string
	}{
		{TokenIdentifier, "foo"},
		{TokenIdentifier, "_tmp"},
		{TokenClassName, "Main"},
		{TokenKeyword, "plus:"},
		{TokenIdentifier, "x"},
		{TokenAssign, ":="},
		{TokenBlockParam, "arg"},
		{TokenSelf, "self"},
		{TokenSuper, "super"},
		{TokenNil, "nil"},
		{TokenTrue, "true"},
		{TokenFalse, "false"},
		{TokenClass, "class"},
		{TokenEOF, ""},
	}

	tokens := Tokenize(input)
	if len(tokens) != len(expected) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(expected), tokens)
	}
	for i, exp := range expected {
		if tokens[i].Type != exp.typ || tokens[i].Literal != exp.lit {
			t.Errorf("token[%d] = %v, want %v(%q)", i, tokens[i], exp.typ, exp.lit)
		}
	}
}

func TestLexerClassHeader(t *testing.T) {
	tokens := Tokenize(`class Main : Object {`)
	want := []TokenType{TokenClass, TokenClassName, TokenColon, TokenClassName, TokenLBrace, TokenEOF}
	if len(tokens) != len(want) {
		t.Fatalf("got %v", tokens)
	}
	for i, typ := range want {
		if tokens[i].Type != typ {
			t.Errorf("token[%d] = %v, want %v", i, tokens[i], typ)
		}
	}
}

func TestLexerComments(t *testing.T) {
	l := NewLexer("\"first\" foo \"second\" bar")
	var idents []string
	for tok := l.NextToken(); tok.Type != TokenEOF; tok = l.NextToken() {
		idents = append(idents, tok.Literal)
	}
	if len(idents) != 2 || idents[0] != "foo" || idents[1] != "bar" {
		t.Errorf("identifiers = %v, want [foo bar]", idents)
	}
	comments := l.Comments()
	if len(comments) != 2 || comments[0] != "first" {
		t.Errorf("comments = %q", comments)
	}
}

func TestLexerPositions(t *testing.T) {
	tokens := Tokenize("foo\n  bar")
	if tokens[0].Pos.Line != 1 || tokens[0].Pos.Column != 1 {
		t.Errorf("foo at %+v, want 1:1", tokens[0].Pos)
	}
	if tokens[1].Pos.Line != 2 || tokens[1].Pos.Column != 3 {
		t.Errorf("bar at %+v, want 2:3", tokens[1].Pos)
	}
}

func TestLexerErrors(t *testing.T) {
	inputs := []string{
		`'unterminated`,
		`"unterminated comment`,
		`'bad \t escape'`,
		`#`,
		`@`,
	}
	for _, input := range inputs {
		tokens := Tokenize(input)
		last := tokens[len(tokens)-1]
		if last.Type != TokenError {
			t.Errorf("%q: last token = %v, want ERROR", input, last)
		}
	}
}

func TestDescription(t *testing.T) {
	src := "\"A program\"\nclass Main : Object { run [|] }"
	if got := Description(src); got != "A program" {
		t.Errorf("Description = %q, want %q", got, "A program")
	}
	if got := Description("class Main : Object {}"); got != "" {
		t.Errorf("Description = %q, want empty", got)
	}
}
