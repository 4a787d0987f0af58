// Package ast defines the SOL25 abstract syntax tree shared by the front
// end, the XML loader, the program image and the interpreter.
package ast

import (
	"sort"
	"strings"
)

// Position is a 1-based source location. Trees loaded from XML carry the
// zero Position.
type Position struct {
	Line   int `json:"line,omitempty"`
	Column int `json:"column,omitempty"`
}

// IsValid reports whether the position points into a source file.
func (p Position) IsValid() bool {
	return p.Line > 0
}

// Node is implemented by every node the evaluator visits.
type Node interface {
	Pos() Position
	node() // marker method
}

// ---------------------------------------------------------------------------
// Program structure
// ---------------------------------------------------------------------------

// Language is the value of the program's language attribute.
const Language = "SOL25"

// Program is a complete SOL25 program.
type Program struct {
	Language    string   `json:"language"`
	Description string   `json:"description,omitempty"`
	Classes     []*Class `json:"classes"`
}

// Class is a user class definition.
type Class struct {
	Name     string    `json:"name"`
	Parent   string    `json:"parent"`
	Methods  []*Method `json:"methods"`
	Location Position  `json:"location"`
}

// Method binds a selector to a body block.
type Method struct {
	Selector string   `json:"selector"`
	Body     *Block   `json:"body"`
	Location Position `json:"location"`
}

// Class returns the class with the given name, or nil.
func (p *Program) Class(name string) *Class {
	for _, c := range p.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Method returns the method with the given selector defined directly on c.
func (c *Class) Method(selector string) *Method {
	for _, m := range c.Methods {
		if m.Selector == selector {
			return m
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Nodes
// ---------------------------------------------------------------------------

// Block is a parameterized sequence of assignments. Method bodies are
// blocks too; they are executed directly rather than reified.
type Block struct {
	Arity    int       `json:"arity"`
	Params   []*Param  `json:"params,omitempty"`
	Assigns  []*Assign `json:"assigns,omitempty"`
	Location Position  `json:"location"`
}

// Param is a formal block parameter.
type Param struct {
	Order    int      `json:"order"`
	Name     string   `json:"name"`
	Location Position `json:"location"`
}

// Assign is a single `name := expr.` statement.
type Assign struct {
	Order    int      `json:"order"`
	Var      *Var     `json:"var"`
	Expr     *Expr    `json:"expr"`
	Location Position `json:"location"`
}

// Expr wraps exactly one of its fields.
type Expr struct {
	Literal *Literal `json:"literal,omitempty"`
	Var     *Var     `json:"var,omitempty"`
	Block   *Block   `json:"block,omitempty"`
	Send    *Send    `json:"send,omitempty"`
}

// Literal classes with special meaning.
const (
	LiteralInteger = "Integer"
	LiteralString  = "String"
	LiteralNil     = "Nil"
	LiteralTrue    = "True"
	LiteralFalse   = "False"
	LiteralClass   = "class"
)

// Literal is a constant. For class literals Class is "class" and Value
// names the class.
type Literal struct {
	Class    string   `json:"class"`
	Value    string   `json:"value"`
	Location Position `json:"location"`
}

// Var is a variable reference or assignment target.
type Var struct {
	Name     string   `json:"name"`
	Location Position `json:"location"`
}

// Send is a message send.
type Send struct {
	Selector string   `json:"selector"`
	Receiver *Expr    `json:"receiver"`
	Args     []*Arg   `json:"args,omitempty"`
	Location Position `json:"location"`
}

// Arg is an ordered send argument.
type Arg struct {
	Order int   `json:"order"`
	Expr  *Expr `json:"expr"`
}

func (n *Block) Pos() Position   { return n.Location }
func (n *Assign) Pos() Position  { return n.Location }
func (n *Literal) Pos() Position { return n.Location }
func (n *Var) Pos() Position     { return n.Location }
func (n *Send) Pos() Position    { return n.Location }

// Pos returns the position of the wrapped node.
func (n *Expr) Pos() Position {
	if inner := n.Inner(); inner != nil {
		return inner.Pos()
	}
	return Position{}
}

func (n *Block) node()   {}
func (n *Assign) node()  {}
func (n *Literal) node() {}
func (n *Var) node()     {}
func (n *Send) node()    {}
func (n *Expr) node()    {}

// Inner returns the node wrapped by the expression, or nil when empty.
func (n *Expr) Inner() Node {
	switch {
	case n == nil:
		return nil
	case n.Literal != nil:
		return n.Literal
	case n.Var != nil:
		return n.Var
	case n.Block != nil:
		return n.Block
	case n.Send != nil:
		return n.Send
	}
	return nil
}

// ---------------------------------------------------------------------------
// Ordering helpers
// ---------------------------------------------------------------------------

// SortedParams returns the parameters ordered by their order attribute.
func (n *Block) SortedParams() []*Param {
	out := append([]*Param(nil), n.Params...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// ParamNames returns the parameter names ordered by their order attribute.
func (n *Block) ParamNames() []string {
	params := n.SortedParams()
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	return names
}

// SortedAssigns returns the statements ordered by their order attribute.
func (n *Block) SortedAssigns() []*Assign {
	out := append([]*Assign(nil), n.Assigns...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// SortedArgs returns the arguments ordered by their order attribute.
func (n *Send) SortedArgs() []*Arg {
	out := append([]*Arg(nil), n.Args...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// ---------------------------------------------------------------------------
// Selectors
// ---------------------------------------------------------------------------

// Arity returns the number of arguments a selector takes.
func Arity(selector string) int {
	return strings.Count(selector, ":")
}

// ValueSelector returns the selector that invokes a block of the given
// arity: "value", "value:", "value:value:", ...
func ValueSelector(arity int) string {
	if arity <= 0 {
		return "value"
	}
	return strings.Repeat("value:", arity)
}

// IsValueSelector reports whether selector is a block invocation selector
// of any arity.
func IsValueSelector(selector string) bool {
	if selector == "value" {
		return true
	}
	n := strings.Count(selector, ":")
	return n > 0 && selector == strings.Repeat("value:", n)
}

// Keywords splits a keyword selector into its parts, each keeping its
// trailing colon. Unary selectors yield a single part.
func Keywords(selector string) []string {
	if !strings.Contains(selector, ":") {
		return []string{selector}
	}
	var parts []string
	for _, p := range strings.SplitAfter(selector, ":") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
