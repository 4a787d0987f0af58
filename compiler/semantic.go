package compiler

import (
	"sort"

	"github.com/tliron/commonlog"

	"github.com/chazu/sol25/lib/runtime"
	"github.com/chazu/sol25/pkg/ast"
)

var log = commonlog.GetLogger("sol.compiler")

// ---------------------------------------------------------------------------
// Analyzer: Static checks over a parsed program
// ---------------------------------------------------------------------------

// Analyzer performs semantic analysis on a parsed program. It checks class
// and variable definitions, selector arities and the program entry point.
type Analyzer struct {
	errors []*Error

	// Built-in and user classes, used for literal receiver checks
	registry *runtime.Registry
	classes  map[string]*ast.Class

	// Scope tracking. Blocks do not see the names of enclosing blocks.
	scopes []*scopeFrame
}

// scopeFrame holds the names visible inside one block.
type scopeFrame struct {
	params map[string]bool
	vars   map[string]bool
}

func (f *scopeFrame) defines(name string) bool {
	return f.params[name] || f.vars[name]
}

// NewAnalyzer creates an analyzer seeded with the built-in classes.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		registry: runtime.NewRegistry(),
		classes:  make(map[string]*ast.Class),
	}
}

// Analyze runs every check on p and returns the first diagnostic.
func Analyze(p *ast.Program) error {
	a := NewAnalyzer()
	a.Check(p)
	if len(a.errors) > 0 {
		return a.errors[0]
	}
	return nil
}

// Errors returns the diagnostics collected so far.
func (a *Analyzer) Errors() []*Error {
	return a.errors
}

// Registry returns the class registry the analyzer built. User classes are
// present once class checks have passed.
func (a *Analyzer) Registry() *runtime.Registry {
	return a.registry
}

func (a *Analyzer) errorf(code int, pos ast.Position, format string, args ...interface{}) {
	a.errors = append(a.errors, newError(code, pos, format, args...))
}

// Check analyzes p, collecting diagnostics.
func (a *Analyzer) Check(p *ast.Program) {
	if !a.checkClasses(p) {
		return
	}

	for _, c := range p.Classes {
		for _, m := range c.Methods {
			a.checkMethod(c, m)
		}
	}

	main := a.classes[runtime.EntryClass]
	switch {
	case main == nil:
		a.errorf(CodeMissingMain, ast.Position{}, "missing class %s", runtime.EntryClass)
	case main.Method(runtime.EntrySelector) == nil:
		a.errorf(CodeMissingMain, main.Location, "class %s has no method %s", runtime.EntryClass, runtime.EntrySelector)
	}

	if len(a.errors) > 0 {
		log.Debugf("analysis found %d problems", len(a.errors))
	}
}

// checkClasses validates class names and parents and registers the user
// classes. It reports whether analysis can continue.
func (a *Analyzer) checkClasses(p *ast.Program) bool {
	before := len(a.errors)

	for _, c := range p.Classes {
		if a.classes[c.Name] != nil || a.registry.Lookup(c.Name) != nil {
			a.errorf(CodeSemantic, c.Location, "class %s already defined", c.Name)
			continue
		}
		a.classes[c.Name] = c
	}
	for _, c := range p.Classes {
		if a.classes[c.Parent] == nil && a.registry.Lookup(c.Parent) == nil {
			a.errorf(CodeUndefined, c.Location, "undefined parent class %s of %s", c.Parent, c.Name)
		}
	}
	if len(a.errors) > before {
		return false
	}

	for _, c := range p.Classes {
		seen := map[string]bool{c.Name: true}
		for parent := a.classes[c.Parent]; parent != nil; parent = a.classes[parent.Parent] {
			if seen[parent.Name] {
				a.errorf(CodeSemantic, c.Location, "class %s inherits from itself", c.Name)
				return false
			}
			seen[parent.Name] = true
		}
	}

	if err := a.registry.LoadProgram(p); err != nil {
		a.errorf(CodeSemantic, ast.Position{}, "%v", err)
		return false
	}
	return true
}

func (a *Analyzer) checkMethod(c *ast.Class, m *ast.Method) {
	if IsReserved(m.Selector) {
		a.errorf(CodeSyntax, m.Location, "reserved word %s used as a selector", m.Selector)
		return
	}
	if m.Body == nil {
		a.errorf(CodeSyntax, m.Location, "method %s>>%s has no body", c.Name, m.Selector)
		return
	}
	if want := ast.Arity(m.Selector); want != len(m.Body.Params) {
		a.errorf(CodeArity, m.Location, "method %s>>%s takes %d arguments but its block has %d parameters",
			c.Name, m.Selector, want, len(m.Body.Params))
	}
	a.checkBlock(m.Body)
}

// ---------------------------------------------------------------------------
// Blocks and expressions
// ---------------------------------------------------------------------------

func (a *Analyzer) checkBlock(b *ast.Block) {
	frame := &scopeFrame{params: make(map[string]bool), vars: make(map[string]bool)}
	a.scopes = append(a.scopes, frame)
	defer func() { a.scopes = a.scopes[:len(a.scopes)-1] }()

	if b.Arity != len(b.Params) {
		a.errorf(CodeArity, b.Location, "block arity %d does not match %d parameters", b.Arity, len(b.Params))
	}

	for _, p := range b.SortedParams() {
		switch {
		case IsReserved(p.Name):
			a.errorf(CodeSyntax, p.Location, "reserved word %s used as a parameter", p.Name)
		case frame.params[p.Name]:
			a.errorf(CodeSemantic, p.Location, "duplicate parameter %s", p.Name)
		}
		frame.params[p.Name] = true
	}

	for _, stmt := range b.SortedAssigns() {
		if stmt.Var == nil {
			a.errorf(CodeSyntax, stmt.Location, "assignment without a target")
			continue
		}
		name := stmt.Var.Name
		switch {
		case IsReserved(name):
			a.errorf(CodeSyntax, stmt.Var.Location, "cannot assign to reserved word %s", name)
		case frame.params[name]:
			a.errorf(CodeAssignParam, stmt.Var.Location, "cannot assign to parameter %s", name)
		}
		frame.vars[name] = true
		a.checkExpr(stmt.Expr)
	}
}

func (a *Analyzer) currentScope() *scopeFrame {
	if len(a.scopes) == 0 {
		return nil
	}
	return a.scopes[len(a.scopes)-1]
}

func (a *Analyzer) checkExpr(e *ast.Expr) {
	switch {
	case e == nil:
		return

	case e.Literal != nil:
		if e.Literal.Class == ast.LiteralClass && a.registry.Lookup(e.Literal.Value) == nil {
			a.errorf(CodeUndefined, e.Literal.Location, "undefined class %s", e.Literal.Value)
		}

	case e.Var != nil:
		name := e.Var.Name
		if name == "self" || name == "super" {
			return
		}
		if scope := a.currentScope(); scope == nil || !scope.defines(name) {
			a.errorf(CodeUndefined, e.Var.Location, "undefined variable %s", name)
		}

	case e.Block != nil:
		a.checkBlock(e.Block)

	case e.Send != nil:
		a.checkSend(e.Send)
	}
}

func (a *Analyzer) checkSend(s *ast.Send) {
	a.checkExpr(s.Receiver)
	for _, arg := range s.SortedArgs() {
		a.checkExpr(arg.Expr)
	}

	if s.Receiver == nil || s.Receiver.Literal == nil {
		return
	}
	lit := s.Receiver.Literal
	var className string
	switch lit.Class {
	case ast.LiteralInteger, ast.LiteralString:
		className = lit.Class
	case ast.LiteralClass:
		className = lit.Value
	default:
		return
	}
	if a.registry.Lookup(className) == nil {
		return
	}

	selectors := a.registry.AllInheritedSelectors(className)
	sort.Strings(selectors)
	i := sort.SearchStrings(selectors, s.Selector)
	if i == len(selectors) || selectors[i] != s.Selector {
		a.errorf(CodeUndefined, s.Location, "%s does not understand %s", className, s.Selector)
	}
}
