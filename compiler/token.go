package compiler

import (
	"fmt"

	"github.com/chazu/sol25/pkg/ast"
)

// ---------------------------------------------------------------------------
// Token types for the SOL25 lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenInteger    // 42, -7, +3
	TokenString     // 'hello\n'
	TokenIdentifier // foo, _tmp
	TokenClassName  // Main, Integer

	// Selectors and parameters
	TokenKeyword    // plus:, ifTrue:
	TokenBlockParam // :x

	// Delimiters
	TokenLParen   // (
	TokenRParen   // )
	TokenLBracket // [
	TokenRBracket // ]
	TokenLBrace   // {
	TokenRBrace   // }
	TokenPeriod   // .
	TokenAssign   // :=
	TokenColon    // :
	TokenBar      // |

	// Reserved identifiers
	TokenClass
	TokenSelf
	TokenSuper
	TokenNil
	TokenTrue
	TokenFalse
)

var tokenNames = map[TokenType]string{
	TokenEOF:        "EOF",
	TokenError:      "ERROR",
	TokenInteger:    "INTEGER",
	TokenString:     "STRING",
	TokenIdentifier: "IDENTIFIER",
	TokenClassName:  "CLASSNAME",
	TokenKeyword:    "KEYWORD",
	TokenBlockParam: "PARAMETER",
	TokenLParen:     "(",
	TokenRParen:     ")",
	TokenLBracket:   "[",
	TokenRBracket:   "]",
	TokenLBrace:     "{",
	TokenRBrace:     "}",
	TokenPeriod:     ".",
	TokenAssign:     ":=",
	TokenColon:      ":",
	TokenBar:        "|",
	TokenClass:      "class",
	TokenSelf:       "self",
	TokenSuper:      "super",
	TokenNil:        "nil",
	TokenTrue:       "true",
	TokenFalse:      "false",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string       // the raw text; string contents without quotes
	Pos     ast.Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"class": TokenClass,
	"self":  TokenSelf,
	"super": TokenSuper,
	"nil":   TokenNil,
	"true":  TokenTrue,
	"false": TokenFalse,
}

// IsReserved reports whether name is a reserved word.
func IsReserved(name string) bool {
	_, ok := reservedWords[name]
	return ok
}
