package runtime

import (
	"strconv"
	"strings"

	"github.com/chazu/sol25/pkg/ast"
)

// ---------------------------------------------------------------------------
// Evaluator
// ---------------------------------------------------------------------------

// Eval evaluates a node and returns the identity of its value.
func (r *Runtime) Eval(node ast.Node) (ID, error) {
	switch n := node.(type) {
	case *ast.Expr:
		inner := n.Inner()
		if inner == nil {
			return NoID, errorf(ErrOtherRuntime, "empty expression")
		}
		return r.Eval(inner)
	case *ast.Block:
		return r.newClosure(n)
	case *ast.Assign:
		return r.evalAssign(n)
	case *ast.Literal:
		return r.evalLiteral(n)
	case *ast.Var:
		return r.evalVar(n)
	case *ast.Send:
		return r.evalSend(n)
	case nil:
		return NoID, errorf(ErrOtherRuntime, "missing node")
	}
	return NoID, errorf(ErrInternal, "cannot evaluate %T", node)
}

// evalSequence runs statements in order and returns the last result, or
// NoID when there are none.
func (r *Runtime) evalSequence(stmts []*ast.Assign) (ID, error) {
	result := NoID
	for _, stmt := range stmts {
		id, err := r.evalAssign(stmt)
		if err != nil {
			return NoID, err
		}
		result = id
	}
	return result, nil
}

func (r *Runtime) evalAssign(n *ast.Assign) (ID, error) {
	if n.Var == nil || n.Expr == nil {
		return NoID, errorf(ErrOtherRuntime, "malformed assignment at order %d", n.Order)
	}
	id, err := r.Eval(n.Expr)
	if err != nil {
		return NoID, err
	}
	if n.Var.Name != Discard {
		if err := r.Scopes.Bind(n.Var.Name, id); err != nil {
			return NoID, err
		}
	}
	return id, nil
}

func (r *Runtime) evalLiteral(n *ast.Literal) (ID, error) {
	switch n.Class {
	case ast.LiteralTrue:
		return TrueID, nil
	case ast.LiteralFalse:
		return FalseID, nil
	case ast.LiteralNil:
		return NilID, nil
	case ast.LiteralClass:
		return r.instantiate(n.Value)
	case ast.LiteralInteger:
		v, err := strconv.ParseInt(strings.TrimSpace(n.Value), 10, 64)
		if err != nil {
			return NoID, errorf(ErrOtherRuntime, "invalid integer literal %q", n.Value)
		}
		return r.Objects.Allocate(ClassInteger, Int{V: v}), nil
	case ast.LiteralString:
		return r.Objects.Allocate(ClassString, Text{V: n.Value}), nil
	}
	if r.Registry.Lookup(n.Class) == nil {
		return NoID, errorf(ErrOtherRuntime, "literal of unknown class %s", n.Class)
	}
	return r.Objects.Allocate(n.Class, Text{V: n.Value}), nil
}

// instantiate evaluates a class literal: the singleton for True, False and
// Nil, otherwise a fresh instance carrying the class's default payload.
func (r *Runtime) instantiate(className string) (ID, error) {
	switch className {
	case ClassTrue:
		return TrueID, nil
	case ClassFalse:
		return FalseID, nil
	case ClassNil:
		return NilID, nil
	}
	if r.Registry.Lookup(className) == nil {
		return NoID, errorf(ErrOtherRuntime, "class %s not found", className)
	}
	return r.Objects.Allocate(className, r.defaultPayload(className)), nil
}

func (r *Runtime) defaultPayload(className string) Payload {
	switch {
	case r.Registry.IsSubclassOf(className, ClassInteger):
		return Int{}
	case r.Registry.IsSubclassOf(className, ClassString):
		return Text{}
	}
	return Opaque{}
}

func (r *Runtime) evalVar(n *ast.Var) (ID, error) {
	if id, ok := r.Scopes.Lookup(n.Name); ok {
		return id, nil
	}
	switch n.Name {
	case "self", "super":
		return r.Context.Current()
	}
	return NoID, errorf(ErrOtherRuntime, "undefined variable %s", n.Name)
}

func (r *Runtime) evalSend(n *ast.Send) (ID, error) {
	if n.Receiver.Inner() == nil {
		return NoID, errorf(ErrOtherRuntime, "send of %s has no receiver", n.Selector)
	}

	mode := LookupNormal
	if v := n.Receiver.Var; v != nil && v.Name == "super" {
		if _, shadowed := r.Scopes.Lookup("super"); !shadowed {
			mode = LookupSuper
		}
	}

	receiver, err := r.Eval(n.Receiver)
	if err != nil {
		return NoID, err
	}

	args := make([]ID, 0, len(n.Args))
	for _, arg := range n.SortedArgs() {
		if arg.Expr == nil {
			return NoID, errorf(ErrOtherRuntime, "send of %s has an empty argument", n.Selector)
		}
		id, err := r.Eval(arg.Expr)
		if err != nil {
			return NoID, err
		}
		args = append(args, id)
	}

	return r.Send(receiver, n.Selector, args, mode)
}
