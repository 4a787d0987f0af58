package runtime

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a runtime failure.
type ErrorKind int

const (
	// ErrDoesNotUnderstand: no method or attribute matched a selector.
	ErrDoesNotUnderstand ErrorKind = iota + 1
	// ErrOtherRuntime: structural violations such as wrong argument counts,
	// undefined variables or a missing entry point.
	ErrOtherRuntime
	// ErrWrongArgument: a value failed a type or range check.
	ErrWrongArgument
	// ErrInternal: interpreter invariants were broken.
	ErrInternal
)

var kindNames = map[ErrorKind]string{
	ErrDoesNotUnderstand: "does not understand",
	ErrOtherRuntime:      "runtime error",
	ErrWrongArgument:     "wrong argument",
	ErrInternal:          "internal error",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ExitCode returns the process status reported for the kind.
func (k ErrorKind) ExitCode() int {
	switch k {
	case ErrDoesNotUnderstand:
		return 51
	case ErrOtherRuntime:
		return 52
	case ErrWrongArgument:
		return 53
	}
	return 99
}

// Error is a runtime failure raised while executing a program.
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string {
	return e.Kind.String() + ": " + e.Msg
}

func errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Store and registry failures. These indicate broken interpreter
// invariants and map to ErrInternal unless wrapped in an *Error.
var (
	ErrRetired       = errors.New("object retired")
	ErrNoObject      = errors.New("no such object")
	ErrClassExists   = errors.New("class already exists")
	ErrUnknownParent = errors.New("unknown parent class")
	ErrMissingBody   = errors.New("user method has no body")
)

// KindOf returns the kind of err. Errors that are not *Error values are
// internal.
func KindOf(err error) ErrorKind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return ErrInternal
}

// IsKind reports whether err is a runtime error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
