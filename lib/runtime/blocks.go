package runtime

import (
	"github.com/chazu/sol25/pkg/ast"
)

// ---------------------------------------------------------------------------
// Blocks: closure creation and activation
// ---------------------------------------------------------------------------

// newClosure reifies a block capturing the current self.
func (r *Runtime) newClosure(n *ast.Block) (ID, error) {
	self, err := r.Context.Current()
	if err != nil {
		return NoID, err
	}
	params := n.ParamNames()
	if n.Arity != len(params) {
		return NoID, errorf(ErrOtherRuntime, "block declares arity %d but has %d parameters", n.Arity, len(params))
	}
	return r.Objects.AllocateClosure(Closure{
		Arity:  n.Arity,
		Params: params,
		Body:   n,
		Self:   self,
	}), nil
}

// activate runs a block body with self as the current context and a fresh
// scope frame binding the parameters to args.
func (r *Runtime) activate(body *ast.Block, self ID, args []ID) (ID, error) {
	if body == nil {
		return NoID, errorf(ErrOtherRuntime, "block has no body")
	}
	params := body.ParamNames()
	if body.Arity != len(params) {
		return NoID, errorf(ErrOtherRuntime, "block declares arity %d but has %d parameters", body.Arity, len(params))
	}
	if len(args) != len(params) {
		return NoID, errorf(ErrOtherRuntime, "block expects %d arguments, got %d", len(params), len(args))
	}

	r.Context.Push(self)
	defer r.Context.Pop()
	r.Scopes.Push()
	defer r.Scopes.Pop()

	for i, name := range params {
		if err := r.Scopes.Bind(name, args[i]); err != nil {
			return NoID, err
		}
	}
	return r.evalSequence(body.SortedAssigns())
}
