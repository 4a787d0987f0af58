package ast

// Inspect traverses the tree rooted at n in depth-first order, calling f
// for each node. If f returns false the children of that node are skipped.
// Nil nodes are ignored.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) || !f(n) {
		return
	}

	switch n := n.(type) {
	case *Block:
		for _, a := range n.Assigns {
			Inspect(a, f)
		}
	case *Assign:
		if n.Var != nil {
			Inspect(n.Var, f)
		}
		if n.Expr != nil {
			Inspect(n.Expr, f)
		}
	case *Expr:
		if inner := n.Inner(); inner != nil {
			Inspect(inner, f)
		}
	case *Send:
		if n.Receiver != nil {
			Inspect(n.Receiver, f)
		}
		for _, a := range n.Args {
			if a.Expr != nil {
				Inspect(a.Expr, f)
			}
		}
	}
}

// InspectProgram calls Inspect on every method body of p.
func InspectProgram(p *Program, f func(Node) bool) {
	for _, c := range p.Classes {
		for _, m := range c.Methods {
			if m.Body != nil {
				Inspect(m.Body, f)
			}
		}
	}
}

func isNil(n Node) bool {
	switch n := n.(type) {
	case nil:
		return true
	case *Block:
		return n == nil
	case *Assign:
		return n == nil
	case *Expr:
		return n == nil
	case *Send:
		return n == nil
	case *Literal:
		return n == nil
	case *Var:
		return n == nil
	}
	return false
}
