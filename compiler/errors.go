package compiler

import (
	"errors"
	"fmt"

	"github.com/chazu/sol25/pkg/ast"
)

// Error codes reported by the front end. They double as process exit codes.
const (
	CodeLexical      = 21
	CodeSyntax       = 22
	CodeMissingMain  = 31
	CodeUndefined    = 32
	CodeArity        = 33
	CodeAssignParam  = 34
	CodeSemantic     = 35
	CodeXMLFormat    = 41
	CodeXMLStructure = 42
)

// Error is a diagnostic produced while reading a program.
type Error struct {
	Code int
	Pos  ast.Position
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("line %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	}
	return e.Msg
}

func newError(code int, pos ast.Position, format string, args ...any) *Error {
	return &Error{Code: code, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// CodeOf returns the diagnostic code carried by err, or 0.
func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 0
}
